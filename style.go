package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/lipcue/internal/viseme"
)

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render

	okMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true).Render("✓")
	warnMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9F1C")).Bold(true).Render("!")
	faint     = lipgloss.NewStyle().Faint(true).Render
	shapeCell = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true).Render
)

// printSummary writes a one-line report of a synthesized timeline.
func printSummary(w io.Writer, tl *viseme.Timeline, dest string) {
	mark := okMark
	if len(tl.Fallbacks) > 0 {
		mark = warnMark
	}

	parts := []string{
		fmt.Sprintf("%s cues", humanize.Comma(int64(len(tl.Cues)))),
		fmt.Sprintf("%.3fs", tl.Duration),
	}
	if n := len(tl.Fallbacks); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural(n, "fallback", "fallbacks")))
	}
	if dest != "" {
		parts = append(parts, "→ "+keyword(dest))
	}
	fmt.Fprintf(w, "%s %s %s\n", mark, shapeStrip(tl.Cues), faint(strings.Join(parts, " · ")))

	for _, f := range tl.Fallbacks {
		fmt.Fprintf(w, "  %s %s\n", warnMark, faint(f.String()))
	}
}

// shapeStrip renders the first cue shapes as a compact preview.
func shapeStrip(cues []viseme.Cue) string {
	const maxShapes = 24
	var b strings.Builder
	for i, c := range cues {
		if i == maxShapes {
			b.WriteString(faint("…"))
			break
		}
		b.WriteString(c.Value.String())
	}
	return shapeCell(b.String())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
