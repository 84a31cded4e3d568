// Package timing reads word timings produced by speech services and
// estimates them when only text is available.
package timing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgnsrekt/lipcue/internal/viseme"
)

// Format identifies the layout of a timings file.
type Format string

const (
	// FormatSeconds is a JSON array of {text, start, duration} in seconds.
	FormatSeconds Format = "seconds"

	// FormatTicks is a JSON array of edge-tts WordBoundary records:
	// {text, offset, duration} in 100 ns ticks.
	FormatTicks Format = "ticks"
)

// ticksPerSecond converts edge-tts offsets to seconds.
const ticksPerSecond = 10_000_000

// ErrUnknownFormat is returned for an unsupported Format.
var ErrUnknownFormat = errors.New("unknown timings format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatSeconds, "":
		return FormatSeconds, nil
	case FormatTicks:
		return FormatTicks, nil
	default:
		return "", fmt.Errorf("%w: %q (use %q or %q)", ErrUnknownFormat, s, FormatSeconds, FormatTicks)
	}
}

// record mirrors one input object. Pointers tell a missing field apart from
// a zero value.
type record struct {
	Text     *string          `json:"text"`
	Start    *json.RawMessage `json:"start"`
	Offset   *json.RawMessage `json:"offset"`
	Duration *json.RawMessage `json:"duration"`
}

// Parse decodes a timings array. Any malformed record fails the whole input
// with a *viseme.ValidationError naming the record and field.
func Parse(r io.Reader, format Format) ([]viseme.WordTiming, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &viseme.ValidationError{Index: -1, Reason: fmt.Sprintf("timings must be a JSON array of objects: %v", err)}
	}

	words := make([]viseme.WordTiming, 0, len(raw))
	for i, msg := range raw {
		w, err := parseRecord(i, msg, format)
		if err != nil {
			return nil, err
		}
		if err := w.Validate(i); err != nil {
			return nil, err
		}
		if i > 0 && w.Start < words[i-1].Start {
			field := "start"
			if format == FormatTicks {
				field = "offset"
			}
			return nil, &viseme.ValidationError{Index: i, Field: field, Reason: "out of order"}
		}
		words = append(words, w)
	}
	return words, nil
}

// ParseFile reads and parses a timings file.
func ParseFile(path string, format Format) ([]viseme.WordTiming, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return Parse(f, format)
}

func parseRecord(index int, msg json.RawMessage, format Format) (viseme.WordTiming, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return viseme.WordTiming{}, &viseme.ValidationError{Index: index, Reason: "must be an object"}
	}

	var rec record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return viseme.WordTiming{}, &viseme.ValidationError{Index: index, Field: "text", Reason: "must be a string"}
	}
	if rec.Text == nil {
		return viseme.WordTiming{}, &viseme.ValidationError{Index: index, Field: "text", Reason: "is required"}
	}

	startField, startRaw := "start", rec.Start
	if format == FormatTicks {
		startField, startRaw = "offset", rec.Offset
	}

	start, err := number(index, startField, startRaw)
	if err != nil {
		return viseme.WordTiming{}, err
	}
	duration, err := number(index, "duration", rec.Duration)
	if err != nil {
		return viseme.WordTiming{}, err
	}

	if format == FormatTicks {
		start /= ticksPerSecond
		duration /= ticksPerSecond
	}

	return viseme.WordTiming{Text: *rec.Text, Start: start, Duration: duration}, nil
}

func number(index int, field string, raw *json.RawMessage) (float64, error) {
	if raw == nil || bytes.Equal(bytes.TrimSpace(*raw), []byte("null")) {
		return 0, &viseme.ValidationError{Index: index, Field: field, Reason: "is required"}
	}
	var v float64
	if err := json.Unmarshal(*raw, &v); err != nil {
		return 0, &viseme.ValidationError{Index: index, Field: field, Reason: "must be a number"}
	}
	return v, nil
}
