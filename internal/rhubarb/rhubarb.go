// Package rhubarb reads and writes mouth cue timelines in the JSON format
// produced by Rhubarb Lip Sync, which most avatar renderers consume.
package rhubarb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgnsrekt/lipcue/internal/viseme"
)

// ErrInvalidDocument is returned when decoded cues break the format's
// ordering rules.
var ErrInvalidDocument = errors.New("invalid mouth cue document")

// Metadata is the document header.
type Metadata struct {
	SoundFile string  `json:"soundFile"`
	Duration  float64 `json:"duration"`
}

// Document is the top-level JSON object.
type Document struct {
	Metadata  Metadata     `json:"metadata"`
	MouthCues []viseme.Cue `json:"mouthCues"`
}

// FromTimeline wraps a timeline for output. soundFile may be empty.
func FromTimeline(tl *viseme.Timeline, soundFile string) Document {
	doc := Document{
		Metadata:  Metadata{SoundFile: soundFile},
		MouthCues: []viseme.Cue{},
	}
	if tl == nil {
		return doc
	}
	doc.Metadata.Duration = tl.Duration
	if tl.Cues != nil {
		doc.MouthCues = tl.Cues
	}
	return doc
}

// Timeline converts the document back into a timeline.
func (d Document) Timeline() *viseme.Timeline {
	tl := &viseme.Timeline{Cues: d.MouthCues}
	if tl.Cues == nil {
		tl.Cues = []viseme.Cue{}
	}
	if n := len(tl.Cues); n > 0 {
		tl.Duration = tl.Cues[n-1].End
	}
	return tl
}

// Validate checks every cue and that no cue starts before the previous one
// ends.
func (d Document) Validate() error {
	for i, c := range d.MouthCues {
		if !c.Value.Valid() {
			return fmt.Errorf("%w: cue %d has invalid shape", ErrInvalidDocument, i)
		}
		if c.End < c.Start {
			return fmt.Errorf("%w: cue %d ends before it starts", ErrInvalidDocument, i)
		}
		if i == 0 {
			continue
		}
		prev := d.MouthCues[i-1]
		if c.Start < prev.Start {
			return fmt.Errorf("%w: cue %d starts before cue %d", ErrInvalidDocument, i, i-1)
		}
		if c.Start < prev.End {
			return fmt.Errorf("%w: cue %d overlaps cue %d", ErrInvalidDocument, i, i-1)
		}
	}
	return nil
}

// Encode writes the document as JSON. Pretty output uses two-space indent.
func Encode(w io.Writer, d Document, pretty bool) error {
	if d.MouthCues == nil {
		d.MouthCues = []viseme.Cue{}
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("unable to encode mouth cues: %w", err)
	}
	return nil
}

// Marshal returns the encoded document.
func Marshal(d Document, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, d, pretty); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads and validates a document.
func Decode(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("unable to decode mouth cues: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	if d.MouthCues == nil {
		d.MouthCues = []viseme.Cue{}
	}
	return d, nil
}

// ReadFile decodes the document stored at path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return Decode(f)
}

// WriteFile stores the document at path. It writes a temporary file next to
// the target and renames it, so readers never see a partial document.
func WriteFile(path string, d Document, pretty bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("unable to create directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("unable to create file: %w", err)
	}

	err = Encode(file, d, pretty)
	closeErr := file.Close()

	if err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("unable to write file: %w", closeErr)
	}

	return os.Rename(tempPath, path)
}
