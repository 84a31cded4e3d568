package viseme

import "math"

const (
	// MergeTolerance is how far apart (in seconds) two same-shape cues may
	// be and still be merged into one.
	MergeTolerance = 0.001

	// RestDuration is the length of the closing rest cue.
	RestDuration = 0.1
)

// WordTiming describes one spoken word. Times are in seconds.
type WordTiming struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns the time the word stops.
func (w WordTiming) End() float64 {
	return w.Start + w.Duration
}

// Cue is one mouth shape held over [Start, End).
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Value Shape   `json:"value"`
}

// Duration returns End - Start.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// Timeline is the result of a synthesis run.
type Timeline struct {
	Cues []Cue

	// Duration is the end of the last cue, or 0 for an empty timeline.
	Duration float64

	// Fallbacks lists the words that did not go through the regular
	// phoneme path, in input order.
	Fallbacks []Fallback
}

// Empty reports whether the timeline has no cues.
func (t *Timeline) Empty() bool {
	return len(t.Cues) == 0
}

// Round3 rounds seconds to millisecond precision.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
