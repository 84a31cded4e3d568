package viseme

import (
	"strings"
	"unicode"
)

// Normalize strips every non-letter rune from a raw phoneme symbol, which
// removes stress markers such as the 1 in "AY1", and upper-cases the rest.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Clean normalizes a raw phoneme sequence and keeps only the symbols the
// table knows. Word separators (" ") normalize to the empty string and are
// dropped without complaint.
func Clean(raw []string) []string {
	cleaned := make([]string, 0, len(raw))
	for _, p := range raw {
		n := Normalize(p)
		if n == "" {
			continue
		}
		if _, ok := table[n]; !ok {
			continue
		}
		cleaned = append(cleaned, n)
	}
	return cleaned
}
