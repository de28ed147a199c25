package lineindex

import "testing"

func TestAppendAscending(t *testing.T) {
	ix := New()
	ix.Append(5)
	ix.Append(12)
	if ix.Count() != 3 {
		t.Fatalf("count = %d, want 3", ix.Count())
	}
	if ix.At(0) != 0 || ix.At(1) != 5 || ix.At(2) != 12 {
		t.Fatalf("unexpected offsets: %+v", ix.offsets)
	}
}

func TestAppendNonAscendingPanics(t *testing.T) {
	ix := New()
	ix.Append(5)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on non-ascending append")
		}
	}()
	ix.Append(5)
}

func TestLineNumberAndStart(t *testing.T) {
	ix := New()
	ix.Append(5)
	ix.Append(12)
	cases := []struct {
		pos      int64
		wantLine int
		wantStart int64
	}{
		{0, 0, 0},
		{4, 0, 0},
		{5, 1, 5},
		{11, 1, 5},
		{12, 2, 12},
		{100, 2, 12},
	}
	for _, c := range cases {
		if got := ix.LineNumber(c.pos); got != c.wantLine {
			t.Errorf("LineNumber(%d) = %d, want %d", c.pos, got, c.wantLine)
		}
		if got := ix.LineStart(c.pos); got != c.wantStart {
			t.Errorf("LineStart(%d) = %d, want %d", c.pos, got, c.wantStart)
		}
	}
}

func TestResetKeepsZero(t *testing.T) {
	ix := New()
	ix.Append(5)
	ix.Reset()
	if ix.Count() != 1 || ix.At(0) != 0 {
		t.Fatalf("reset did not restore to [0]")
	}
}

func TestEmpty(t *testing.T) {
	ix := New()
	if !ix.Empty() {
		t.Fatal("fresh index should be empty")
	}
	ix.Append(3)
	if ix.Empty() {
		t.Fatal("index with one line should not be empty")
	}
}
