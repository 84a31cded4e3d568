package g2p

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters approximates pronunciation from spelling with longest-match
// grapheme rules. It never fails; words without letters yield no phonemes.
type Letters struct{}

// NewLetters returns the rule-based adapter.
func NewLetters() *Letters {
	return &Letters{}
}

// Name implements Adapter.
func (Letters) Name() string {
	return BackendLetters
}

// Phonemes implements Adapter.
func (Letters) Phonemes(ctx context.Context, word string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return spell(word), nil
}

// longestRule is the length of the longest key in letterRules.
const longestRule = 4

// letterRules maps lowercase grapheme sequences to ARPAbet.
var letterRules = map[string]string{
	"tion": "SH AH N",
	"sion": "ZH AH N",
	"ough": "AH F",
	"ight": "AY T",
	"ture": "CH ER",
	"sure": "SH ER",
	"ould": "UH D",
	"ound": "AW N D",
	"ment": "M AH N T",
	"ness": "N AH S",
	"able": "AH B AH L",
	"ally": "AH L IY",

	"ing": "IH NG",
	"ght": "T",
	"tch": "CH",
	"dge": "JH",
	"sch": "S K",
	"chr": "K R",
	"que": "K",
	"ful": "F AH L",

	"ph": "F",
	"th": "TH",
	"sh": "SH",
	"ch": "CH",
	"wh": "W",
	"wr": "R",
	"kn": "N",
	"gn": "N",
	"ck": "K",
	"ng": "NG",
	"gh": "",
	"qu": "K W",
	"ee": "IY",
	"ea": "IY",
	"oo": "UW",
	"ou": "AW",
	"ow": "OW",
	"ai": "EY",
	"ay": "EY",
	"oi": "OY",
	"oy": "OY",
	"au": "AO",
	"aw": "AO",
	"er": "ER",
	"ir": "ER",
	"ur": "ER",
	"ar": "AA R",
	"or": "AO R",
	"le": "AH L",

	"a": "AE",
	"b": "B",
	"c": "K",
	"d": "D",
	"e": "EH",
	"f": "F",
	"g": "G",
	"h": "HH",
	"i": "IH",
	"j": "JH",
	"k": "K",
	"l": "L",
	"m": "M",
	"n": "N",
	"o": "AA",
	"p": "P",
	"q": "K",
	"r": "R",
	"s": "S",
	"t": "T",
	"u": "AH",
	"v": "V",
	"w": "W",
	"x": "K S",
	"y": "Y",
	"z": "Z",
}

// stripMarks returns a transformer removing diacritics so "café" spells like
// "cafe". Transformers hold state and must not be shared between lookups.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func spell(word string) []string {
	folded, _, err := transform.String(stripMarks(), word)
	if err != nil {
		folded = word
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	w := b.String()

	// Silent final e ("make", "cafe"), but not "free" or "table".
	if len(w) > 2 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "ee") && !strings.HasSuffix(w, "le") {
		w = w[:len(w)-1]
	}

	out := []string{}
	for i := 0; i < len(w); {
		matched := false
		for length := longestRule; length >= 2; length-- {
			if i+length > len(w) {
				continue
			}
			if ph, ok := letterRules[w[i:i+length]]; ok {
				out = append(out, strings.Fields(ph)...)
				i += length
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		ch := w[i]
		switch {
		case i > 0 && ch == w[i-1] && !isVowelLetter(ch):
			// Doubled consonants are said once.
		case ch == 'y' && i > 0 && i == len(w)-1:
			out = append(out, "IY")
		default:
			out = append(out, strings.Fields(letterRules[string(ch)])...)
		}
		i++
	}
	return out
}

func isVowelLetter(ch byte) bool {
	return strings.IndexByte("aeiou", ch) >= 0
}
