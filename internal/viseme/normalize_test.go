package viseme

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"AY1", "AY"},
		{"HH", "HH"},
		{"er0", "ER"},
		{"  ", ""},
		{"'", ""},
		{"123", ""},
		{"UW2,", "UW"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{
			name: "stress markers stripped",
			raw:  []string{"HH", "AY1"},
			want: []string{"HH", "AY"},
		},
		{
			name: "spaces dropped",
			raw:  []string{"HH", "AH0", " ", "L", "OW1"},
			want: []string{"HH", "AH", "L", "OW"},
		},
		{
			name: "unknown symbols dropped",
			raw:  []string{"QX", "K", "?", "1"},
			want: []string{"K"},
		},
		{
			name: "nothing usable",
			raw:  []string{"1", "2", "3", ".", " "},
			want: []string{},
		},
		{
			name: "nil input",
			raw:  nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Clean(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
