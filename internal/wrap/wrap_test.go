package wrap

import (
	"strings"
	"testing"

	"github.com/dgouders/lsp/internal/blockring"
	"github.com/dgouders/lsp/internal/lineindex"
	"github.com/dgouders/lsp/internal/lineread"
	"github.com/rs/zerolog"
)

func newTestReader(t *testing.T, content string) (*lineread.Reader, *lineindex.Index) {
	t.Helper()
	ring := blockring.New(strings.NewReader(content), nil, blockring.UnknownSize, zerolog.Nop())
	if err := ring.ReadAll(); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	lines := lineindex.New()
	return lineread.NewReader(ring, lines), lines
}

func TestAddWLinesWrapsAtWidth(t *testing.T) {
	reader, lines := newTestReader(t, "abcdefghijklmno\n")
	line, err := reader.GetLineHere(0)
	if err != nil {
		t.Fatalf("GetLineHere: %v", err)
	}

	w := New(10, 8, false, false)
	dec := lineread.NewDecoder(lineread.NewPairTable(0))
	w.AddWLines(line, dec)

	want := []int{0, 10}
	if len(line.WLines) != len(want) {
		t.Fatalf("WLines = %v, want %v", line.WLines, want)
	}
	for i, v := range want {
		if line.WLines[i] != v {
			t.Fatalf("WLines = %v, want %v", line.WLines, want)
		}
	}

	_ = lines
}

func TestForwardOneWindowLine(t *testing.T) {
	reader, lines := newTestReader(t, "abcdefghijklmno\n")
	w := New(10, 8, false, false)
	dec := lineread.NewDecoder(lineread.NewPairTable(0))

	pos, err := w.Forward(reader, dec, lines, 0, 1)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if pos != 10 {
		t.Fatalf("pos = %d, want 10", pos)
	}
}

func TestChopLinesSkipsWrap(t *testing.T) {
	reader, _ := newTestReader(t, "abcdefghijklmno\n")
	line, err := reader.GetLineHere(0)
	if err != nil {
		t.Fatalf("GetLineHere: %v", err)
	}
	w := New(10, 8, false, true)
	dec := lineread.NewDecoder(lineread.NewPairTable(0))
	w.AddWLines(line, dec)
	if len(line.WLines) != 1 || line.WLines[0] != 0 {
		t.Fatalf("WLines = %v, want [0]", line.WLines)
	}
}
