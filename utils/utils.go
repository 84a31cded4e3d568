// Package utils holds small helpers shared by the lipcue commands.
package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// IsStdin reports whether arg names standard input.
func IsStdin(arg string) bool {
	return arg == "" || arg == "-"
}

// SoundFileFor guesses the audio file belonging to a timings file:
// "speech.timings.json" and "speech.json" both become "speech.wav".
func SoundFileFor(timingsPath string) string {
	if IsStdin(timingsPath) {
		return ""
	}
	base := filepath.Base(timingsPath)
	for _, ext := range []string{".json", ".timings", ".words"} {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(filepath.Dir(timingsPath), base+".wav")
}
