// Package wrap partitions physical lines into window lines for a given
// terminal width, simulating cell output the way lsp_addwlines does over
// a hidden curses pad.
package wrap

import (
	"io"

	"github.com/dgouders/lsp/internal/lineindex"
	"github.com/dgouders/lsp/internal/lineread"
	"github.com/mattn/go-runewidth"
)

// Wrapper holds the layout parameters that determine how a physical line
// maps to window lines.
type Wrapper struct {
	Width     int
	TabWidth  int
	KeepCR    bool
	ChopLines bool
}

// New creates a Wrapper. tabWidth <= 0 falls back to the default of 8.
func New(width, tabWidth int, keepCR, chopLines bool) *Wrapper {
	if tabWidth <= 0 {
		tabWidth = 8
	}
	return &Wrapper{Width: width, TabWidth: tabWidth, KeepCR: keepCR, ChopLines: chopLines}
}

// AddWLines partitions line into window lines at the wrapper's width,
// filling line.WLines with raw-byte offsets (relative to line start) of
// each window-line's first byte. line.WLines[0] is always 0. dec carries
// SGR state across the walk but is not reset here — callers reset it at
// physical-line boundaries per their own policy.
func (w *Wrapper) AddWLines(line *lineread.Line, dec *lineread.Decoder) {
	line.WLines = line.WLines[:0]
	line.WLines = append(line.WLines, 0)

	if w.ChopLines || w.Width <= 0 {
		return
	}

	col := 0
	lineread.ForEachCell(line.Raw, dec, w.KeepCR, func(c lineread.Cell) bool {
		cw := w.CellWidthOf(c, col)
		if col > 0 && col+cw > w.Width {
			line.WLines = append(line.WLines, c.RawOff)
			col = 0
		}
		col += cw
		return false
	})
}

// CellWidthOf returns the display width of a decoded Cell at column col:
// tabs expand to the next stop, everything else uses the grapheme-cluster
// width uniseg computed while decoding the cell. Exported so
// the Renderer can replicate the same column-overflow rule while
// performing its own cell walk, independently of the Wrapper's
// layout-only simulation.
func (w *Wrapper) CellWidthOf(c lineread.Cell, col int) int {
	if c.Rune == '\t' {
		return w.TabWidth - (col % w.TabWidth)
	}
	if c.Width > 0 {
		return c.Width
	}
	return 1
}

// CellWidth returns the display width of r in isolation, with no
// grapheme-cluster information available — used where only a bare rune
// is known (tabs expand to the next stop; everything else falls back to
// go-runewidth's per-rune measurement with a 1-column floor).
func (w *Wrapper) CellWidth(r rune, col int) int {
	if r == '\t' {
		return w.TabWidth - (col % w.TabWidth)
	}
	cw := runewidth.RuneWidth(r)
	if cw < 1 {
		cw = 1
	}
	return cw
}

// WindowLineIndex returns the index i such that line.WLines[i] <=
// rawOffset, the largest such i.
func WindowLineIndex(line *lineread.Line, rawOffset int) int {
	i := 0
	for i+1 < len(line.WLines) && line.WLines[i+1] <= rawOffset {
		i++
	}
	return i
}

// Forward advances pos by n window lines, reading lines through reader
// as needed and growing lines as line starts are discovered.
func (w *Wrapper) Forward(reader *lineread.Reader, dec *lineread.Decoder, lines *lineindex.Index, pos int64, n int) (int64, error) {
	lineStart := lines.LineStart(pos)
	line, err := reader.GetLineHere(lineStart)
	if err != nil {
		return pos, err
	}
	dec.Reset()
	w.AddWLines(line, dec)
	idx := WindowLineIndex(line, int(pos-lineStart))

	for {
		remaining := len(line.WLines) - 1 - idx
		if n <= remaining {
			return lineStart + int64(line.WLines[idx+n]), nil
		}
		n -= len(line.WLines) - idx
		if !line.HasTrailingNewline() {
			return line.End(), io.EOF
		}
		lineStart = line.End()
		line, err = reader.GetLineHere(lineStart)
		if err != nil {
			return lineStart, err
		}
		dec.Reset()
		w.AddWLines(line, dec)
		idx = 0
	}
}

// Backward positions the reader n window lines before pageFirst.
func (w *Wrapper) Backward(reader *lineread.Reader, dec *lineread.Decoder, lines *lineindex.Index, pageFirst int64, n int) (int64, error) {
	lineStart := lines.LineStart(pageFirst)
	line, err := reader.GetLineHere(lineStart)
	if err != nil {
		return pageFirst, err
	}
	dec.Reset()
	w.AddWLines(line, dec)
	idx := WindowLineIndex(line, int(pageFirst-lineStart))

	for {
		if n <= idx {
			return lineStart + int64(line.WLines[idx-n]), nil
		}
		n -= idx + 1
		if lineStart == 0 {
			return 0, nil
		}
		ln := lines.LineNumber(lineStart)
		if ln == 0 {
			return 0, nil
		}
		prevStart := lines.At(ln - 1)
		line, err = reader.GetLineHere(prevStart)
		if err != nil {
			return lineStart, err
		}
		dec.Reset()
		w.AddWLines(line, dec)
		lineStart = prevStart
		idx = len(line.WLines) - 1
	}
}

// GotoLastWPage walks backward from the end of a fully-read document,
// summing window-line counts, to find the page_first of the last
// renderable page (maxRows window lines, the last being the status
// line's reserved row is the caller's concern — pass maxy-1 here).
func (w *Wrapper) GotoLastWPage(reader *lineread.Reader, dec *lineread.Decoder, lines *lineindex.Index, size int64, maxRows int) (int64, error) {
	if size <= 0 || maxRows <= 0 {
		return 0, nil
	}
	need := maxRows
	pos := lines.LineStart(size - 1)
	for {
		line, err := reader.GetLineHere(pos)
		if err != nil {
			return 0, err
		}
		dec.Reset()
		w.AddWLines(line, dec)
		wc := len(line.WLines)
		if need <= wc {
			idx := wc - need
			if idx < 0 {
				idx = 0
			}
			return pos + int64(line.WLines[idx]), nil
		}
		need -= wc
		if pos == 0 {
			return 0, nil
		}
		ln := lines.LineNumber(pos)
		if ln == 0 {
			return 0, nil
		}
		pos = lines.At(ln - 1)
	}
}
