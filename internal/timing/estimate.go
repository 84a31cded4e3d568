package timing

import (
	"strings"
	"unicode"

	"github.com/dgnsrekt/lipcue/internal/viseme"
)

// SecondsPerCharacter is the speaking rate assumed when no audio duration is
// known.
const SecondsPerCharacter = 0.15

// EstimateDuration guesses how long text takes to say.
func EstimateDuration(text string) float64 {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return float64(n) * SecondsPerCharacter
}

// Estimate spreads duration over the words of text. Each word gets time in
// proportion to its length and words are separated by a pause worth half a
// character. The first word starts at 0 and the last one ends at duration.
func Estimate(text string, duration float64) []viseme.WordTiming {
	words := strings.Fields(text)
	if len(words) == 0 || duration <= 0 {
		return []viseme.WordTiming{}
	}

	letters := 0
	for _, w := range words {
		letters += len([]rune(w))
	}
	units := float64(letters) + 0.5*float64(len(words)-1)
	perUnit := duration / units

	out := make([]viseme.WordTiming, len(words))
	cursor := 0.0
	for i, w := range words {
		if i > 0 {
			cursor += 0.5 * perUnit
		}
		d := float64(len([]rune(w))) * perUnit
		out[i] = viseme.WordTiming{Text: w, Start: cursor, Duration: d}
		cursor += d
	}
	last := &out[len(out)-1]
	last.Duration = duration - last.Start
	return out
}
