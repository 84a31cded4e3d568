// Package g2p turns words into ARPAbet phonemes. Adapters cover a
// pronunciation dictionary, an external phonemizer process and a built-in
// letter-rule approximation; they can be chained and cached.
package g2p

import (
	"context"
	"errors"
	"fmt"
)

// Adapter looks up the phonemes of a single word. Implementations are safe
// for concurrent use and satisfy viseme.Phonemizer.
type Adapter interface {
	Name() string
	Phonemes(ctx context.Context, word string) ([]string, error)
}

// Common errors for g2p adapters.
var (
	ErrUnknownWord    = errors.New("word not found")
	ErrUnavailable    = errors.New("backend unavailable")
	ErrInvalidBackend = errors.New("invalid g2p backend")
	ErrInvalidConfig  = errors.New("invalid g2p configuration")
)

// ErrorCode classifies adapter failures.
type ErrorCode int

const (
	CodeUnknown ErrorCode = iota
	CodeUnknownWord
	CodeUnavailable
	CodeTimeout
	CodeBadOutput
)

// String returns the string representation of the code.
func (c ErrorCode) String() string {
	switch c {
	case CodeUnknownWord:
		return "unknown-word"
	case CodeUnavailable:
		return "unavailable"
	case CodeTimeout:
		return "timeout"
	case CodeBadOutput:
		return "bad-output"
	default:
		return "unknown"
	}
}

// Error describes a failed lookup.
type Error struct {
	Backend string
	Word    string
	Code    ErrorCode
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %q: %s", e.Backend, e.Word, e.Code)
	}
	return fmt.Sprintf("%s: %q: %v", e.Backend, e.Word, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Recoverable reports whether another backend may still answer the word.
// Only a missing backend is treated as permanent.
func (e *Error) Recoverable() bool {
	return e.Code != CodeUnavailable
}

// IsUnknownWord reports whether err means the backend works but has no
// answer for the word.
func IsUnknownWord(err error) bool {
	var gerr *Error
	if errors.As(err, &gerr) && gerr.Code == CodeUnknownWord {
		return true
	}
	return errors.Is(err, ErrUnknownWord)
}

func unknownWord(backend, word string) error {
	return &Error{Backend: backend, Word: word, Code: CodeUnknownWord, Err: ErrUnknownWord}
}
