package g2p

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Dictionary answers lookups from a CMUdict-format pronunciation list.
type Dictionary struct {
	entries map[string][][]string // word -> alternative pronunciations
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string][][]string)}
}

// Name implements Adapter.
func (d *Dictionary) Name() string {
	return BackendDict
}

// Add adds a pronunciation for word. Later calls for the same word add
// alternates.
func (d *Dictionary) Add(word string, phonemes []string) {
	key := foldWord(word)
	d.entries[key] = append(d.entries[key], phonemes)
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// LoadDictionary reads a CMUdict-format list:
//
//	;;; comment
//	HELLO  HH AH0 L OW1
//	HELLO(2)  HH EH0 L OW1
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	d := NewDictionary()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;;") || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected a word followed by phonemes", ErrInvalidConfig, lineNum)
		}

		word := fields[0]
		if i := strings.IndexByte(word, '('); i > 0 && strings.HasSuffix(word, ")") {
			word = word[:i]
		}
		d.Add(word, fields[1:])
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDictionaryFile is a convenience wrapper that opens a file path.
func LoadDictionaryFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()
	return LoadDictionary(f)
}

// Phonemes implements Adapter. The first pronunciation wins.
func (d *Dictionary) Phonemes(ctx context.Context, word string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prons := d.entries[foldWord(word)]
	if len(prons) == 0 {
		return nil, unknownWord(BackendDict, word)
	}
	return append([]string(nil), prons[0]...), nil
}

// Variants returns every pronunciation of word.
func (d *Dictionary) Variants(word string) [][]string {
	return d.entries[foldWord(word)]
}

// foldWord normalizes a word for lookup: NFC, uppercase, and without
// surrounding punctuation. Apostrophes inside the word are kept ("DON'T").
func foldWord(word string) string {
	word = norm.NFC.String(word)
	word = strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return cases.Upper(language.English).String(word)
}
