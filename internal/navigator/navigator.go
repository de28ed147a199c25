// Package navigator translates user intents — forward/backward by n
// window lines, page motion, top/end, horizontal shift, TOC cursor
// motion — into document position changes.
package navigator

import (
	"errors"
	"io"
	"math"

	"github.com/dgouders/lsp/internal/docring"
	"github.com/dgouders/lsp/internal/lineread"
	"github.com/dgouders/lsp/internal/toc"
	"github.com/dgouders/lsp/internal/wrap"
)

// Navigator holds the layout parameters (width, tabs, CR/chop policy)
// used to partition lines into window lines, shared across every open
// document the way a single hidden curses pad is shared in the source.
type Navigator struct {
	Wrapper *wrap.Wrapper
}

// New creates a Navigator from the given layout parameters.
func New(width, tabWidth int, keepCR, chopLines bool) *Navigator {
	return &Navigator{Wrapper: wrap.New(width, tabWidth, keepCR, chopLines)}
}

// SetWidth reconfigures the Navigator's Wrapper for a new terminal
// width, as the Workhorse does when the terminal is resized.
func (n *Navigator) SetWidth(width int) { n.Wrapper.Width = width }

// Forward advances doc.Pos by count window lines from its current
// position, used by page-down / 'j' / wheel-down handlers.
func (n *Navigator) Forward(doc *docring.Document, count int) error {
	dec := lineread.NewDecoder(nil)
	pos, err := n.Wrapper.Forward(doc.Reader, dec, doc.Lines, doc.Pos, count)
	doc.Pos = pos
	doc.Unaligned = false
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Backward moves doc.PageFirst back by count window lines and sets
// doc.Pos there, used by page-up / 'k' / wheel-up handlers.
func (n *Navigator) Backward(doc *docring.Document, count int) error {
	dec := lineread.NewDecoder(nil)
	pos, err := n.Wrapper.Backward(doc.Reader, dec, doc.Lines, doc.PageFirst, count)
	if err != nil {
		return err
	}
	doc.Pos = pos
	doc.Unaligned = false
	return nil
}

// Top positions doc at the start of the file.
func (n *Navigator) Top(doc *docring.Document) {
	doc.Pos = 0
	doc.Unaligned = false
}

// End positions doc at the top of the last renderable page, given the
// window has maxRows usable rows (status line already excluded).
func (n *Navigator) End(doc *docring.Document, maxRows int) error {
	if err := doc.Ring.ReadAll(); err != nil {
		return err
	}
	dec := lineread.NewDecoder(nil)
	pos, err := n.Wrapper.GotoLastWPage(doc.Reader, dec, doc.Lines, doc.Ring.Size(), maxRows)
	if err != nil {
		return err
	}
	doc.Pos = pos
	doc.Unaligned = false
	return nil
}

// PageForward advances by a full page (maxRows window lines) minus one,
// matching the usual pager convention of a one-line overlap.
func (n *Navigator) PageForward(doc *docring.Document, maxRows int) error {
	n2 := maxRows - 1
	if n2 < 1 {
		n2 = 1
	}
	doc.Pos = doc.PageLast
	return n.Forward(doc, n2)
}

// PageBackward is the inverse of PageForward.
func (n *Navigator) PageBackward(doc *docring.Document, maxRows int) error {
	n2 := maxRows - 1
	if n2 < 1 {
		n2 = 1
	}
	return n.Backward(doc, n2)
}

// ShiftMax is the 8-bit counter ceiling for horizontal shifting; the
// counter saturates here rather than wrapping, since a
// horizontal shift that silently jumps back to 0 would be a worse user
// experience than simply refusing to shift further.
const ShiftMax = math.MaxUint8

// ShiftRight increases doc.Shift by delta columns, saturating at
// ShiftMax.
func (n *Navigator) ShiftRight(doc *docring.Document, delta uint8) {
	if int(doc.Shift)+int(delta) > ShiftMax {
		doc.Shift = ShiftMax
		return
	}
	doc.Shift += delta
}

// ShiftLeft decreases doc.Shift by delta columns, saturating at 0.
func (n *Navigator) ShiftLeft(doc *docring.Document, delta uint8) {
	if int(doc.Shift) < int(delta) {
		doc.Shift = 0
		return
	}
	doc.Shift -= delta
}

// TOCMotion is the result of a TOC cursor command: whether the TOC page
// needs to scroll, and the cursor's new row index on the (possibly new)
// page.
type TOCMotion struct {
	Scroll bool
	Row    int
}

// TOCDown moves the TOC cursor to the next visible entry. If the cursor
// would leave the current maxRows-row page, scroll the page by half a
// window and recenter the cursor. This applies on the last TOC page too:
// the last page is not treated specially.
func (n *Navigator) TOCDown(t *toc.List, row, maxRows int) (toc.Node, TOCMotion, bool) {
	node, ok := t.Forward(1)
	if !ok {
		return toc.Node{}, TOCMotion{}, false
	}
	row++
	if row >= maxRows {
		half := maxRows / 2
		if half < 1 {
			half = 1
		}
		return node, TOCMotion{Scroll: true, Row: row - half}, true
	}
	return node, TOCMotion{Scroll: false, Row: row}, true
}

// TOCUp mirrors TOCDown: if the row would go above the page, it reports a
// scroll and recenters the cursor half a window down. The first TOC page
// is not treated specially either; a step up from row 0 on the first
// entry stays on that entry and still reports a scroll to row
// maxRows/2 - 1.
func (n *Navigator) TOCUp(t *toc.List, row, maxRows int) (toc.Node, TOCMotion, bool) {
	node, ok := t.Backward(1)
	if !ok {
		return toc.Node{}, TOCMotion{}, false
	}
	row--
	if row < 0 {
		half := maxRows / 2
		if half < 1 {
			half = 1
		}
		row += half
		if row < 0 {
			row = 0
		}
		return node, TOCMotion{Scroll: true, Row: row}, true
	}
	return node, TOCMotion{Scroll: false, Row: row}, true
}
