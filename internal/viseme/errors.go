package viseme

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidTiming marks a word timing that cannot be synthesized.
	ErrInvalidTiming = errors.New("invalid word timing")

	// ErrNoPhonemes indicates the adapter answered without any phoneme the
	// table recognises.
	ErrNoPhonemes = errors.New("no recognizable phonemes")

	// ErrOverlap marks a word that starts before the previous cue ends.
	ErrOverlap = errors.New("word overlaps the previous word")
)

// ValidationError reports a malformed input record.
type ValidationError struct {
	Index  int    // position of the record in the input
	Field  string // offending field, empty when the record itself is bad
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("word %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("word %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidTiming).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidTiming
}

// Validate checks the numeric fields of a word timing.
func (w WordTiming) Validate(index int) error {
	switch {
	case math.IsNaN(w.Start) || math.IsInf(w.Start, 0):
		return &ValidationError{Index: index, Field: "start", Reason: "must be a finite number"}
	case w.Start < 0:
		return &ValidationError{Index: index, Field: "start", Reason: "must not be negative"}
	case math.IsNaN(w.Duration) || math.IsInf(w.Duration, 0):
		return &ValidationError{Index: index, Field: "duration", Reason: "must be a finite number"}
	case w.Duration < 0:
		return &ValidationError{Index: index, Field: "duration", Reason: "must not be negative"}
	}
	return nil
}

// ValidateOrder checks that the word at index does not start before prev.
func ValidateOrder(index int, prev, w WordTiming) error {
	if w.Start < prev.Start {
		return &ValidationError{Index: index, Field: "start", Reason: "out of order"}
	}
	return nil
}

// ValidateWords validates every timing and their order, returning the first
// failure.
func ValidateWords(words []WordTiming) error {
	for i, w := range words {
		if err := w.Validate(i); err != nil {
			return err
		}
		if i > 0 {
			if err := ValidateOrder(i, words[i-1], w); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reason explains why a word left the regular phoneme path.
type Reason string

const (
	// ReasonAdapterFailure: the phonemizer returned an error. The word is
	// rendered as a single DefaultShape cue.
	ReasonAdapterFailure Reason = "adapter-failure"

	// ReasonNoPhonemes: the phonemizer answered but nothing survived
	// normalization. The word is rendered as a single DefaultShape cue.
	ReasonNoPhonemes Reason = "no-phonemes"

	// ReasonZeroDuration: the word is shorter than a millisecond once
	// rounded and is skipped.
	ReasonZeroDuration Reason = "zero-duration"

	// ReasonOverlap: the word starts before the previous cue ends. Its start
	// is moved to that end, or the word is skipped when nothing is left.
	ReasonOverlap Reason = "overlap"
)

// Fallback records one word handled by a fallback policy.
type Fallback struct {
	Index  int
	Text   string
	Reason Reason
	Err    error
}

// String formats the fallback for logs.
func (f Fallback) String() string {
	if f.Err != nil {
		return fmt.Sprintf("word %d %q: %s: %v", f.Index, f.Text, f.Reason, f.Err)
	}
	return fmt.Sprintf("word %d %q: %s", f.Index, f.Text, f.Reason)
}
