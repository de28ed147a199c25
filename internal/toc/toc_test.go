package toc

import (
	"errors"
	"io"
	"testing"

	"github.com/dgouders/lsp/internal/lineread"
)

// fakeReader splits text into physical lines on '\n' and serves them by
// exact line-start offset, the same contract lineread.Reader.GetLineHere
// honors: callers must pass a true line-start offset.
type fakeReader struct {
	lines map[int64]*lineread.Line
}

func newFakeReader(text string) *fakeReader {
	fr := &fakeReader{lines: map[int64]*lineread.Line{}}
	pos := int64(0)
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			raw := []byte(text[start : i+1])
			fr.lines[pos] = &lineread.Line{Pos: pos, Raw: raw, Normalized: raw}
			pos += int64(len(raw))
			start = i + 1
		}
	}
	if start < len(text) {
		raw := []byte(text[start:])
		fr.lines[pos] = &lineread.Line{Pos: pos, Raw: raw, Normalized: raw}
	}
	return fr
}

func (f *fakeReader) GetLineHere(pos int64) (*lineread.Line, error) {
	l, ok := f.lines[pos]
	if !ok {
		return nil, io.EOF
	}
	return l, nil
}

func TestAppendRejectsNonAscendingPos(t *testing.T) {
	l := &List{cursor: -1}
	if err := l.append(Node{Pos: 10, Level: Level0}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	err := l.append(Node{Pos: 10, Level: Level0})
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("append(same Pos) = %v, want ErrOutOfOrder", err)
	}
	err = l.append(Node{Pos: 5, Level: Level0})
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("append(earlier Pos) = %v, want ErrOutOfOrder", err)
	}
	if len(l.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1 — a rejected append must not mutate the list", len(l.Nodes))
	}
}

func TestBuildEmptyDocument(t *testing.T) {
	l, err := Build(newFakeReader(""))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !l.Empty() {
		t.Fatalf("expected empty TOC, got %d nodes", len(l.Nodes))
	}
}

func TestBuildClassifiesLevels(t *testing.T) {
	text := "NAME\n" +
		"   SYNOPSIS\n" +
		"       foo\n" +
		"           bar\n" +
		"DESCRIPTION\n"
	l, err := Build(newFakeReader(text))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []struct {
		pos   int64
		level Level
	}{
		{0, Level0},                     // "NAME\n"
		{int64(len("NAME\n")), Level1},   // "   SYNOPSIS\n"
		{int64(len("NAME\n   SYNOPSIS\n")), Level2}, // "       foo\n" followed by deeper "bar"
		{int64(len(text)) - int64(len("DESCRIPTION\n")), Level0},
	}
	if len(l.Nodes) != len(want) {
		t.Fatalf("got %d nodes, want %d: %+v", len(l.Nodes), len(want), l.Nodes)
	}
	for i, w := range want {
		if l.Nodes[i].Pos != w.pos || l.Nodes[i].Level != w.level {
			t.Errorf("node %d = %+v, want {Pos:%d Level:%d}", i, l.Nodes[i], w.pos, w.level)
		}
	}
}

func TestBuildLevel2PrefixAtEOFNotClassified(t *testing.T) {
	// A level-2-prefixed line with no successor line can't confirm the
	// lookahead and is not recorded at all.
	text := "NAME\n       foo"
	l, err := Build(newFakeReader(text))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(l.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1 (only the level-0 line): %+v", len(l.Nodes), l.Nodes)
	}
}

func TestBuildSkipsBlankLines(t *testing.T) {
	text := "NAME\n\nDESCRIPTION\n"
	l, err := Build(newFakeReader(text))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(l.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2: %+v", len(l.Nodes), l.Nodes)
	}
}

func TestForwardBackwardRespectVisibleLevel(t *testing.T) {
	text := "NAME\n" +
		"   SYNOPSIS\n" +
		"DESCRIPTION\n" +
		"   OPTIONS\n"
	l, err := Build(newFakeReader(text))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(l.Nodes) != 4 {
		t.Fatalf("got %d nodes, want 4: %+v", len(l.Nodes), l.Nodes)
	}

	l.Rewind(-1)
	n, ok := l.Forward(1)
	if !ok || n.Pos != l.Nodes[0].Pos {
		t.Fatalf("Forward(1) at level0 = %+v, %v, want first node", n, ok)
	}
	n, ok = l.Forward(1)
	if !ok || n.Pos != l.Nodes[2].Pos {
		t.Fatalf("Forward(1) again at level0 = %+v, %v, want third node (level1 skipped)", n, ok)
	}
	// Already on the last visible entry: Forward saturates rather than
	// failing, staying put.
	n, ok = l.Forward(1)
	if !ok || n.Pos != l.Nodes[2].Pos {
		t.Fatalf("Forward(1) past the last visible entry = %+v, %v, want saturation at third node", n, ok)
	}

	l.CycleLevel()
	if l.LevelVisible != Level1 {
		t.Fatalf("LevelVisible = %d, want Level1", l.LevelVisible)
	}
	l.Rewind(-1)
	n, ok = l.Forward(1)
	if !ok || n.Pos != l.Nodes[0].Pos {
		t.Fatalf("Forward(1) at level1 = %+v, %v", n, ok)
	}
	n, ok = l.Forward(1)
	if !ok || n.Pos != l.Nodes[1].Pos {
		t.Fatalf("Forward(1) at level1 = %+v, %v, want second node", n, ok)
	}

	n, ok = l.Backward(1)
	if !ok || n.Pos != l.Nodes[0].Pos {
		t.Fatalf("Backward(1) = %+v, %v, want first node", n, ok)
	}
	// Already on the first visible entry: Backward saturates too.
	n, ok = l.Backward(1)
	if !ok || n.Pos != l.Nodes[0].Pos {
		t.Fatalf("Backward(1) past the first entry = %+v, %v, want saturation at first node", n, ok)
	}
}

func TestForwardBackwardOnEmptyList(t *testing.T) {
	l := &List{cursor: -1}
	if _, ok := l.Forward(1); ok {
		t.Fatal("Forward(1) on an empty TOC should fail")
	}
	if _, ok := l.Backward(1); ok {
		t.Fatal("Backward(1) on an empty TOC should fail")
	}
}

func TestPosToTOCAndIndexOf(t *testing.T) {
	text := "NAME\n   SYNOPSIS\n"
	l, err := Build(newFakeReader(text))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	synopsisPos := l.Nodes[1].Pos

	if idx := l.IndexOf(synopsisPos); idx != 1 {
		t.Fatalf("IndexOf(%d) = %d, want 1", synopsisPos, idx)
	}
	if _, ok := l.PosToTOC(synopsisPos); ok {
		t.Fatalf("PosToTOC should hide a level1 entry at level0 visibility")
	}
	l.CycleLevel()
	n, ok := l.PosToTOC(synopsisPos)
	if !ok || n.Pos != synopsisPos {
		t.Fatalf("PosToTOC(%d) at level1 visibility = %+v, %v", synopsisPos, n, ok)
	}
}
