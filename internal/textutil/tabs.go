package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// DefaultTabWidth matches lsp's default tab stop; the man-page loader
// rarely emits tabs itself but preprocessed input sometimes does.
const DefaultTabWidth = 8

// ExpandTabs replaces tab characters with spaces respecting terminal column width.
func ExpandTabs(text string, tabWidth int) string {
	if tabWidth <= 0 || !strings.ContainsRune(text, '\t') {
		return text
	}

	var builder strings.Builder
	column := 0
	for _, ru := range text {
		if ru == '\t' {
			spaces := tabWidth - (column % tabWidth)
			for i := 0; i < spaces; i++ {
				builder.WriteByte(' ')
			}
			column += spaces
			continue
		}
		builder.WriteRune(ru)
		width := runewidth.RuneWidth(ru)
		if width < 1 {
			width = 1
		}
		column += width
	}
	return builder.String()
}

// DisplayWidth reports the printable width of text accounting for wide
// runes and multi-rune grapheme clusters (combining marks, emoji ZWJ
// sequences, skin-tone modifiers) counting once as their cluster width,
// not once per code point.
func DisplayWidth(text string) int {
	width := 0
	b := []byte(text)
	state := -1
	for len(b) > 0 {
		_, rest, w, newState := uniseg.FirstGraphemeCluster(b, state)
		if w <= 0 {
			w = 1
		}
		width += w
		b = rest
		state = newState
	}
	return width
}

// RuneWidth reports the printable column width of a single rune, with a
// 1-column floor for combining marks and other zero-width runes.
func RuneWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w <= 0 {
		w = 1
	}
	return w
}
