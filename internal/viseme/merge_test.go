package viseme

import (
	"reflect"
	"testing"
)

func TestMergerExtendsAdjacentSameShape(t *testing.T) {
	var m Merger
	m.Add(0, 0.1, ShapeB)
	m.Add(0.1, 0.2, ShapeB)
	m.Add(0.2, 0.3, ShapeD)

	want := []Cue{
		{Start: 0, End: 0.2, Value: ShapeB},
		{Start: 0.2, End: 0.3, Value: ShapeD},
	}
	if got := m.Cues(); !reflect.DeepEqual(got, want) {
		t.Errorf("cues = %+v, want %+v", got, want)
	}
}

func TestMergerTolerance(t *testing.T) {
	tests := []struct {
		name      string
		nextStart float64
		wantLen   int
	}{
		{"exact", 0.2, 1},
		{"within tolerance", 0.2009, 1},
		{"float noise", 0.20000000000000004, 1},
		{"gap", 0.25, 2},
		{"just past tolerance", 0.2011, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Merger
			m.Add(0, 0.2, ShapeC)
			m.Add(tt.nextStart, 0.4, ShapeC)
			if m.Len() != tt.wantLen {
				t.Errorf("len = %d, want %d (%+v)", m.Len(), tt.wantLen, m.Cues())
			}
		})
	}
}

func TestMergerDifferentShapeNeverMerges(t *testing.T) {
	var m Merger
	m.Add(0, 0.1, ShapeA)
	m.Add(0.1, 0.2, ShapeB)
	m.Add(0.2, 0.3, ShapeA)
	if m.Len() != 3 {
		t.Errorf("len = %d, want 3", m.Len())
	}
}

func TestMergerDropsZeroLengthCues(t *testing.T) {
	var m Merger
	m.Add(0, 0.0004, ShapeA)
	if m.Len() != 0 {
		t.Fatalf("zero-length cue kept: %+v", m.Cues())
	}

	m.Add(0, 0.2, ShapeB)
	m.Add(0.2, 0.2003, ShapeC)
	m.Add(0.2003, 0.4, ShapeD)
	want := []Cue{
		{Start: 0, End: 0.2, Value: ShapeB},
		{Start: 0.2, End: 0.4, Value: ShapeD},
	}
	if got := m.Cues(); !reflect.DeepEqual(got, want) {
		t.Errorf("cues = %+v, want %+v", got, want)
	}
}

func TestMergerRounds(t *testing.T) {
	var m Merger
	m.Add(0.12345, 0.45678, ShapeE)
	m.Add(0.45678, 0.9876543, ShapeE)

	want := []Cue{{Start: 0.123, End: 0.988, Value: ShapeE}}
	if got := m.Cues(); !reflect.DeepEqual(got, want) {
		t.Errorf("cues = %+v, want %+v", got, want)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	var m Merger
	inputs := []struct {
		start, end float64
		value      Shape
	}{
		{0, 0.1, ShapeB}, {0.1, 0.2, ShapeB}, {0.2, 0.35, ShapeD},
		{0.35, 0.5, ShapeC}, {0.6, 0.7, ShapeC}, {0.7, 0.8, ShapeA},
	}
	for _, in := range inputs {
		m.Add(in.start, in.end, in.value)
	}

	once := append([]Cue(nil), m.Cues()...)
	twice := Merge(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second merge changed cues:\n once  %+v\n twice %+v", once, twice)
	}
	if thrice := Merge(twice); !reflect.DeepEqual(twice, thrice) {
		t.Errorf("third merge changed cues: %+v", thrice)
	}
}

func TestMergeEmpty(t *testing.T) {
	got := Merge(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Merge(nil) = %#v, want empty slice", got)
	}
	var m Merger
	if _, ok := m.Last(); ok {
		t.Error("Last on empty merger should report false")
	}
}
