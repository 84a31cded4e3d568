// Package script pulls the spoken words out of a script written in
// markdown, so the text command can estimate timings for it.
package script

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Extractor converts markdown into speakable plain text.
type Extractor struct {
	includeCode bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCode keeps the contents of code spans and blocks. They are dropped
// by default since nobody reads them aloud.
func WithCode(include bool) Option {
	return func(e *Extractor) {
		e.includeCode = include
	}
}

// New creates an extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlainText returns the speakable text of markdown with default options.
func PlainText(markdown []byte) string {
	return New().PlainText(markdown)
}

// PlainText returns the speakable text of markdown. Blocks are separated by
// a single space and whitespace runs are collapsed.
func (e *Extractor) PlainText(markdown []byte) string {
	reader := text.NewReader(markdown)
	doc := goldmark.New().Parser().Parse(reader)

	var buf strings.Builder
	e.walk(doc, reader.Source(), &buf)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func (e *Extractor) walk(node ast.Node, source []byte, buf *strings.Builder) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		if e.includeCode {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(source))
			}
			buf.WriteByte(' ')
		}
		return

	case *ast.CodeSpan:
		if e.includeCode {
			e.walkChildren(n, source, buf)
		}
		return

	case *ast.HTMLBlock, *ast.RawHTML:
		return

	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
		return

	case *ast.String:
		buf.Write(n.Value)
		return

	case *ast.AutoLink:
		// URLs are not spoken.
		return

	case *ast.Image:
		// Alt text is not part of the narration.
		return
	}

	e.walkChildren(node, source, buf)
	if node.Type() == ast.TypeBlock {
		buf.WriteByte(' ')
	}
}

func (e *Extractor) walkChildren(node ast.Node, source []byte, buf *strings.Builder) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		e.walk(c, source, buf)
	}
}

// IsMarkdown reports whether path looks like a markdown file.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown", ".mkd", ".mkdn":
		return true
	}
	return false
}

// Words splits plain text into words, dropping tokens without letters or
// digits (stray punctuation such as "-" or "*").
func Words(plain string) []string {
	fields := strings.Fields(plain)
	words := fields[:0]
	for _, f := range fields {
		if strings.IndexFunc(f, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			words = append(words, f)
		}
	}
	return words
}
