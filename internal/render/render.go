// Package render draws one page into the terminal directly via
// tcell.Screen.SetContent.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgouders/lsp/internal/docring"
	"github.com/dgouders/lsp/internal/lineread"
	"github.com/dgouders/lsp/internal/navigator"
	"github.com/dgouders/lsp/internal/textutil"
	"github.com/dgouders/lsp/internal/wrap"
	"github.com/gdamore/tcell/v2"
)

// GutterWidth is the fixed width of the "%7ld|" line-number gutter
//.
const GutterWidth = 8

// Renderer draws pages for the current document into a tcell.Screen.
type Renderer struct {
	Screen tcell.Screen
	Pairs  *lineread.PairTable
	NoColor bool
}

// New creates a Renderer. pairLimit bounds color-pair allocation;
// 0 uses the PairTable default.
func New(screen tcell.Screen, pairLimit int) *Renderer {
	return &Renderer{Screen: screen, Pairs: lineread.NewPairTable(pairLimit)}
}

// Display draws one page of doc starting at doc.PageFirst (or, in TOC
// mode, the TOC cursor's entry): fills
// trailing rows, reserves the final row for the status line, and sets
// doc.Pos = doc.PageLast on exit from normal mode.
func (r *Renderer) Display(doc *docring.Document, nav *navigator.Navigator) error {
	maxx, maxy := r.Screen.Size()
	rows := maxy - 1
	if rows < 0 {
		rows = 0
	}

	contentWidth := maxx
	if doc.LineNumbers {
		contentWidth -= GutterWidth
	}
	if contentWidth < 1 {
		contentWidth = 1
	}
	nav.Wrapper.Width = contentWidth

	r.Screen.Clear()

	var startPos int64
	inTOC := doc.Has(docring.ModeTOC)
	if inTOC {
		if node, ok := doc.TOC.Cursor(); ok {
			startPos = node.Pos
		} else {
			startPos = doc.PageFirst
		}
	} else {
		startPos = doc.PageFirst
	}

	lineStart := doc.Lines.LineStart(startPos)
	row := 0
	pageLast := startPos
	dec := lineread.NewDecoder(r.Pairs)
	firstLine := true

	for row < rows {
		line, err := doc.Reader.GetLineHere(lineStart)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		dec.Reset()
		skip := 0
		if firstLine && startPos > lineStart {
			skip = int(startPos - lineStart)
			preloadAttrs(line.Raw[:skip], dec)
		}
		firstLine = false

		endRow, endOff := r.drawLine(doc, line, skip, dec, nav.Wrapper, row, rows, contentWidth)
		row = endRow
		pageLast = line.Pos + int64(endOff)

		if !line.HasTrailingNewline() {
			break
		}
		lineStart = line.End()
	}

	for ; row < rows; row++ {
		r.clearRow(row, maxx)
	}

	doc.PageFirst = startPos
	doc.PageLast = pageLast
	if !inTOC {
		doc.Pos = doc.PageLast
	}

	r.drawStatusLine(doc, maxy-1, maxx)
	r.Screen.Show()
	return nil
}

// preloadAttrs feeds every SGR sequence found in the already-passed
// prefix of a line into dec, so rendering resumes with the correct
// attribute/color state for a page boundary that splits a physical line
//.
func preloadAttrs(prefix []byte, dec *lineread.Decoder) {
	i := 0
	for i < len(prefix) {
		n := dec.Feed(prefix[i:])
		if n <= 0 {
			i++
			continue
		}
		i += n
	}
}

// drawLine renders line starting at raw offset skip, wrapping at
// maxRows-relative row boundaries, and returns the row index and raw
// offset reached when it stopped (either end of line or the page
// filled).
func (r *Renderer) drawLine(doc *docring.Document, line *lineread.Line, skip int, dec *lineread.Decoder, w *wrap.Wrapper, row, rows, width int) (int, int) {
	inTOC := doc.Has(docring.ModeTOC)
	isTOCCursorLine := false
	if inTOC {
		if node, ok := doc.TOC.Cursor(); ok && node.Pos == line.Pos {
			isTOCCursorLine = true
		}
	}
	lineNumber := doc.Lines.LineNumber(line.Pos) + 1

	col := 0
	wroteGutter := false
	emitGutter := func() {
		if !doc.LineNumbers || wroteGutter {
			return
		}
		wroteGutter = true
		gutter := fmt.Sprintf("%7d|", lineNumber)
		for i, ch := range gutter {
			r.Screen.SetContent(i, row, ch, nil, tcell.StyleDefault)
		}
	}
	emitGutter()

	lastOff := skip
	stopped := false
	chopped := false
	lineread.ForEachCell(line.Raw[skip:], dec, w.KeepCR, func(c lineread.Cell) bool {
		absOff := skip + c.RawOff
		cw := w.CellWidthOf(c, col)

		if w.ChopLines {
			// No wrapping: once the row is full, suppress further cells
			// on this physical line except a trailing '>' marker, drawn
			// once, in the last column.
			if col >= width {
				if !chopped {
					chopped = true
					drawX := width - 1
					if doc.LineNumbers {
						drawX += GutterWidth
					}
					r.Screen.SetContent(drawX, row, '>', nil, tcell.StyleDefault)
				}
				col += cw
				lastOff = absOff + c.RawLen
				return false
			}
		} else if col > 0 && col+cw > width {
			row++
			col = 0
			if row >= rows {
				stopped = true
				lastOff = absOff
				return true
			}
			emitGutterAtRow(r, doc, row, lineNumber)
		}

		style := r.cellStyle(c.Attr, c.PairID, doc, line, absOff, isTOCCursorLine)
		// Horizontal shift: cells before the shift point are suppressed,
		// but col still advances so layout stays stable.
		if col >= int(doc.Shift) {
			drawX := col - int(doc.Shift)
			if doc.LineNumbers {
				drawX += GutterWidth
			}
			r.Screen.SetContent(drawX, row, c.Rune, c.Combining, style)
		}
		col += cw
		lastOff = absOff + c.RawLen
		if doc.CurrentMatch.Valid && line.Pos+int64(lastOff) == doc.CurrentMatch.Eo {
			doc.MatchCell = docring.MatchCell{Row: row, Col: col, Valid: true}
		}
		return false
	})

	if stopped {
		return row, lastOff
	}
	return row + 1, len(line.Raw)
}

func emitGutterAtRow(r *Renderer, doc *docring.Document, row, lineNumber int) {
	if !doc.LineNumbers {
		return
	}
	for i := 0; i < GutterWidth; i++ {
		r.Screen.SetContent(i, row, ' ', nil, tcell.StyleDefault)
	}
}

// cellStyle layers SGR/overstrike attribute, match highlight, and TOC
// cursor highlight.
func (r *Renderer) cellStyle(attr lineread.Attr, pairID int, doc *docring.Document, line *lineread.Line, off int, isTOCCursorLine bool) tcell.Style {
	style := tcell.StyleDefault

	if !r.NoColor {
		fg, bg := r.Pairs.Colors(pairID)
		if fg != lineread.ColorDefault {
			style = style.Foreground(tcell.PaletteColor(fg))
		}
		if bg != lineread.ColorDefault {
			style = style.Background(tcell.PaletteColor(bg))
		}
	}
	if attr&lineread.AttrBold != 0 {
		style = style.Bold(true)
	}
	if attr&lineread.AttrDim != 0 {
		style = style.Dim(true)
	}
	if attr&lineread.AttrItalic != 0 {
		style = style.Italic(true)
	}
	if attr&lineread.AttrUnderline != 0 {
		style = style.Underline(true)
	}
	if attr&lineread.AttrBlink != 0 {
		style = style.Blink(true)
	}
	if attr&lineread.AttrReverse != 0 {
		style = style.Reverse(true)
	}
	if attr&lineread.AttrInvisible != 0 {
		fg, _, _ := style.Decompose()
		style = style.Foreground(fg).Background(fg)
	}

	abs := line.Pos + int64(off)
	if doc.CurrentMatch.Valid && abs >= doc.CurrentMatch.So && abs < doc.CurrentMatch.Eo {
		if doc.Has(docring.ModeRefs) {
			style = style.Underline(true)
		} else {
			style = style.Reverse(true)
		}
	}

	if isTOCCursorLine {
		style = style.Reverse(true)
	}

	return style
}

func (r *Renderer) clearRow(row, maxx int) {
	for x := 0; x < maxx; x++ {
		r.Screen.SetContent(x, row, ' ', nil, tcell.StyleDefault)
	}
}

// drawStatusLine draws the current document's most recent status
// message (or a default mode indicator) in the final row.
func (r *Renderer) drawStatusLine(doc *docring.Document, row, maxx int) {
	style := tcell.StyleDefault.Reverse(true)
	text, ok := doc.LatestMessage()
	if !ok {
		text = defaultStatus(doc)
	}
	// Document names and messages can carry bytes lifted straight out of
	// the page text (a reloaded man page's detected heading, an opened
	// reference's name) — sanitize before it ever reaches the terminal.
	text = textutil.SanitizeTerminalText(text)
	x := 0
	for _, ch := range text {
		if x >= maxx {
			break
		}
		r.Screen.SetContent(x, row, ch, nil, style)
		x += textutil.RuneWidth(ch)
	}
	for ; x < maxx; x++ {
		r.Screen.SetContent(x, row, ' ', nil, style)
	}
}

func defaultStatus(doc *docring.Document) string {
	name := doc.Name
	if doc.ReplacementName != "" {
		name = doc.ReplacementName
	}
	return name
}
