package viseme

import "math"

// Merger accumulates cues in emission order and folds a new cue into the
// previous one when both carry the same shape and touch in time. The zero
// value is ready to use.
//
// Merging depends on order: callers must feed cues chronologically, word by
// word and phoneme by phoneme.
type Merger struct {
	cues []Cue
}

// Add feeds the next cue. Start and end are rounded to the millisecond when
// stored; a cue that rounds to zero length is dropped unless it extends the
// previous one.
func (m *Merger) Add(start, end float64, value Shape) {
	if n := len(m.cues); n > 0 {
		last := &m.cues[n-1]
		if last.Value == value && math.Abs(last.End-start) < MergeTolerance {
			last.End = Round3(end)
			return
		}
	}
	if Round3(end) <= Round3(start) {
		return
	}
	m.cues = append(m.cues, Cue{
		Start: Round3(start),
		End:   Round3(end),
		Value: value,
	})
}

// Last returns the most recently emitted cue.
func (m *Merger) Last() (Cue, bool) {
	if len(m.cues) == 0 {
		return Cue{}, false
	}
	return m.cues[len(m.cues)-1], true
}

// Len returns the number of cues emitted so far.
func (m *Merger) Len() int {
	return len(m.cues)
}

// Cues returns the accumulated cues. The slice is owned by the Merger until
// the caller stops adding.
func (m *Merger) Cues() []Cue {
	return m.cues
}

// Merge runs an already built cue list through a fresh Merger. Applying it
// to its own output changes nothing.
func Merge(cues []Cue) []Cue {
	var m Merger
	for _, c := range cues {
		m.Add(c.Start, c.End, c.Value)
	}
	if m.cues == nil {
		return []Cue{}
	}
	return m.cues
}
