// Package viseme turns word timings and phoneme transcriptions into
// Rhubarb-style mouth cue timelines.
package viseme

import (
	"fmt"
)

// Shape is one of the Rhubarb mouth shapes. Its meaning is defined by the
// renderer; the synthesizer treats it as an opaque label.
type Shape byte

const (
	ShapeA Shape = 'A' // closed lips: m, b, p
	ShapeB Shape = 'B' // slightly open, teeth together: most consonants
	ShapeC Shape = 'C' // open, front vowels
	ShapeD Shape = 'D' // wide open, low vowels
	ShapeE Shape = 'E' // rounded: mid-back vowels
	ShapeF Shape = 'F' // puckered: u, w
	ShapeG Shape = 'G' // lip on teeth: f, v
	ShapeH Shape = 'H' // tongue up: l
	ShapeX Shape = 'X' // rest
)

// DefaultShape is used for phonemes that have no table entry and for words
// that yield no usable phonemes at all.
const DefaultShape = ShapeB

// Shapes lists every valid shape in enumeration order.
var Shapes = []Shape{ShapeA, ShapeB, ShapeC, ShapeD, ShapeE, ShapeF, ShapeG, ShapeH, ShapeX}

// String returns the single character code of the shape.
func (s Shape) String() string {
	return string(rune(s))
}

// Valid reports whether s is part of the enumeration.
func (s Shape) Valid() bool {
	return (s >= ShapeA && s <= ShapeH) || s == ShapeX
}

// MarshalText encodes the shape as its one character code.
func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid mouth shape %q", rune(s))
	}
	return []byte{byte(s)}, nil
}

// UnmarshalText decodes a one character shape code.
func (s *Shape) UnmarshalText(text []byte) error {
	if len(text) != 1 || !Shape(text[0]).Valid() {
		return fmt.Errorf("invalid mouth shape %q", text)
	}
	*s = Shape(text[0])
	return nil
}

// ParseShape converts a code such as "D" into a Shape.
func ParseShape(code string) (Shape, error) {
	var s Shape
	if err := s.UnmarshalText([]byte(code)); err != nil {
		return 0, err
	}
	return s, nil
}

// table maps ARPAbet phonemes (stress stripped, upper case) to shapes.
// It is filled once at package init and only read afterwards.
var table = map[string]Shape{
	// bilabial stops and nasal
	"M": ShapeA, "B": ShapeA, "P": ShapeA,

	// labiodental fricatives
	"F": ShapeG, "V": ShapeG,

	// rounded back vowels and the w glide
	"UW": ShapeF, "W": ShapeF, "UH": ShapeF,

	// mid-back vowels
	"OW": ShapeE, "AO": ShapeE, "OY": ShapeE,

	// low, open vowels
	"AA": ShapeD, "AY": ShapeD, "AH": ShapeD, "AW": ShapeD,

	// front and mid vowels
	"AE": ShapeC, "EH": ShapeC, "IH": ShapeC, "EY": ShapeC, "IY": ShapeC,

	// lateral
	"L": ShapeH,

	// everything else articulated with the teeth close together
	"ER": ShapeB, "R": ShapeB,
	"S": ShapeB, "Z": ShapeB, "SH": ShapeB, "ZH": ShapeB, "CH": ShapeB, "JH": ShapeB,
	"T": ShapeB, "D": ShapeB, "N": ShapeB, "DH": ShapeB, "TH": ShapeB,
	"K": ShapeB, "G": ShapeB, "NG": ShapeB, "HH": ShapeB, "Y": ShapeB,

	// silence between phrases
	" ": ShapeX,
}

// Lookup returns the shape for a normalized phoneme.
func Lookup(phoneme string) (Shape, bool) {
	s, ok := table[phoneme]
	return s, ok
}

// Resolve is Lookup with DefaultShape for anything the table lacks.
func Resolve(phoneme string) Shape {
	if s, ok := table[phoneme]; ok {
		return s
	}
	return DefaultShape
}

// IsVowel reports whether a normalized phoneme is an ARPAbet vowel.
func IsVowel(phoneme string) bool {
	switch phoneme {
	case "AA", "AE", "AH", "AO", "AW", "AY", "EH", "ER", "EY",
		"IH", "IY", "OW", "OY", "UH", "UW":
		return true
	default:
		return false
	}
}
