package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("LIPCUE_TEST_DIR", "dicts")

	got := ExpandPath("~/$LIPCUE_TEST_DIR/cmudict.dict")
	want := filepath.Join(home, "dicts", "cmudict.dict")
	if got != want {
		t.Errorf("ExpandPath = %q, want %q", got, want)
	}
}

func TestSoundFileFor(t *testing.T) {
	tests := map[string]string{
		"speech.json":             "speech.wav",
		"out/speech.timings.json": filepath.Join("out", "speech.wav"),
		"-":                       "",
		"":                        "",
	}
	for in, want := range tests {
		if got := SoundFileFor(in); got != want {
			t.Errorf("SoundFileFor(%q) = %q, want %q", in, got, want)
		}
	}
}
