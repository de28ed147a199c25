package navigator

import (
	"testing"

	"github.com/dgouders/lsp/internal/docring"
	"github.com/dgouders/lsp/internal/toc"
)

func TestShiftRightSaturates(t *testing.T) {
	n := New(80, 8, false, false)
	doc := docring.NewBuffer("t", []byte("x\n"))

	n.ShiftRight(doc, 100)
	n.ShiftRight(doc, 200)
	if doc.Shift != ShiftMax {
		t.Fatalf("Shift = %d, want saturated at %d", doc.Shift, ShiftMax)
	}
}

func TestShiftLeftSaturates(t *testing.T) {
	n := New(80, 8, false, false)
	doc := docring.NewBuffer("t", []byte("x\n"))
	doc.Shift = 5

	n.ShiftLeft(doc, 20)
	if doc.Shift != 0 {
		t.Fatalf("Shift = %d, want saturated at 0", doc.Shift)
	}
}

func TestShiftRightThenLeftRoundTrips(t *testing.T) {
	n := New(80, 8, false, false)
	doc := docring.NewBuffer("t", []byte("x\n"))

	n.ShiftRight(doc, 10)
	n.ShiftLeft(doc, 4)
	if doc.Shift != 6 {
		t.Fatalf("Shift = %d, want 6", doc.Shift)
	}
}

func TestTop(t *testing.T) {
	n := New(80, 8, false, false)
	doc := docring.NewBuffer("t", []byte("x\n"))
	doc.Pos = 42
	doc.Unaligned = true

	n.Top(doc)
	if doc.Pos != 0 || doc.Unaligned {
		t.Fatalf("Top() left doc at {Pos:%d Unaligned:%v}, want {0 false}", doc.Pos, doc.Unaligned)
	}
}

func TestSetWidth(t *testing.T) {
	n := New(80, 8, false, false)
	n.SetWidth(120)
	if n.Wrapper.Width != 120 {
		t.Fatalf("Wrapper.Width = %d, want 120", n.Wrapper.Width)
	}
}

func TestTOCDownScrollsAtPageBoundary(t *testing.T) {
	n := New(80, 8, false, false)
	list := buildTOCWithNodes(0, 10, 20, 30, 40)
	// Cursor already sitting on the third entry (pos 20), screen row 2.
	if _, ok := list.Forward(3); !ok {
		t.Fatal("setup: Forward(3) should land on the third entry")
	}

	node, motion, ok := n.TOCDown(list, 2, 3)
	if !ok {
		t.Fatal("TOCDown should succeed while entries remain")
	}
	if !motion.Scroll {
		t.Fatalf("expected a scroll once row (3) reaches maxRows (3), got %+v", motion)
	}
	if node.Pos != 30 {
		t.Fatalf("node.Pos = %d, want 30 (fourth entry)", node.Pos)
	}
	if motion.Row != 2 {
		t.Fatalf("motion.Row = %d, want 2 (3 - half of maxRows 3)", motion.Row)
	}
}

func TestTOCDownNoScrollMidPage(t *testing.T) {
	n := New(80, 8, false, false)
	list := buildTOCWithNodes(0, 10, 20, 30)
	if _, ok := list.Forward(1); !ok {
		t.Fatal("setup: Forward(1) should land on the first entry")
	}

	node, motion, ok := n.TOCDown(list, 0, 10)
	if !ok {
		t.Fatal("TOCDown should succeed")
	}
	if motion.Scroll {
		t.Fatalf("did not expect a scroll mid-page, got %+v", motion)
	}
	if node.Pos != 10 || motion.Row != 1 {
		t.Fatalf("got node.Pos=%d motion.Row=%d, want 10 and 1", node.Pos, motion.Row)
	}
}

func TestTOCDownFailsOnEmptyList(t *testing.T) {
	n := New(80, 8, false, false)
	list := buildTOCWithNodes()
	if _, _, ok := n.TOCDown(list, 0, 10); ok {
		t.Fatal("TOCDown on an empty TOC should fail")
	}
}

func TestTOCUpStaysAtTopOfFirstPage(t *testing.T) {
	n := New(80, 8, false, false)
	list := buildTOCWithNodes(0, 10, 20)
	// Cursor already on the first entry via one Forward step.
	list.Rewind(-1)
	if _, ok := list.Forward(1); !ok {
		t.Fatal("setup: Forward(1) should land on the first entry")
	}

	node, motion, ok := n.TOCUp(list, 0, 10)
	if !ok {
		t.Fatal("TOCUp should succeed (it saturates at the first entry)")
	}
	if node.Pos != 0 {
		t.Fatalf("node.Pos = %d, want 0 (stays at first entry)", node.Pos)
	}
	if !motion.Scroll || motion.Row != 4 {
		t.Fatalf("got motion %+v, want a re-centering scroll to row 4 (half of maxRows 10, minus the initial step)", motion)
	}
}

// buildTOCWithNodes constructs a List with one level-0 Node per offset,
// bypassing Build since these tests only exercise cursor arithmetic.
func buildTOCWithNodes(positions ...int64) *toc.List {
	l := &toc.List{}
	nodes := make([]toc.Node, len(positions))
	for i, p := range positions {
		nodes[i] = toc.Node{Pos: p, Level: toc.Level0}
	}
	l.Nodes = nodes
	l.Rewind(-1)
	return l
}
