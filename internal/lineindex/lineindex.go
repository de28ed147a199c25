// Package lineindex tracks the byte offset of each physical line start in
// a document, grown incrementally as bytes are streamed in.
package lineindex

import "sort"

// Index is an append-only, strictly ascending list of line-start byte
// offsets. offsets[0] is always 0.
type Index struct {
	offsets []int64
}

// New returns an Index seeded with the mandatory offset 0.
func New() *Index {
	return &Index{offsets: []int64{0}}
}

// Count returns the number of recorded line starts.
func (ix *Index) Count() int { return len(ix.offsets) }

// At returns the byte offset of line i.
func (ix *Index) At(i int) int64 {
	if i < 0 || i >= len(ix.offsets) {
		return -1
	}
	return ix.offsets[i]
}

// Append records the offset immediately following a '\n' as a new line
// start. Callers must call with strictly ascending offsets.
func (ix *Index) Append(offset int64) {
	if len(ix.offsets) > 0 && offset <= ix.offsets[len(ix.offsets)-1] {
		panic("lineindex: offsets must be strictly ascending")
	}
	ix.offsets = append(ix.offsets, offset)
}

// Reset discards all entries but the mandatory offset 0 — used by
// internal/reload when a document is reloaded in place.
func (ix *Index) Reset() {
	ix.offsets = ix.offsets[:1]
}

// LineStart returns the start offset of the physical line containing pos,
// found by binary search over recorded line starts.
func (ix *Index) LineStart(pos int64) int64 {
	i := ix.LineNumber(pos)
	return ix.offsets[i]
}

// LineNumber returns the index of the line containing pos (the largest i
// such that offsets[i] <= pos).
func (ix *Index) LineNumber(pos int64) int {
	i := sort.Search(len(ix.offsets), func(i int) bool { return ix.offsets[i] > pos })
	if i == 0 {
		return 0
	}
	return i - 1
}

// Empty reports whether no line has ever started beyond offset 0 with
// content behind it (used for the "empty file" boundary case where
// lines_count must read 0).
func (ix *Index) Empty() bool { return len(ix.offsets) <= 1 }

// Last returns the final recorded offset.
func (ix *Index) Last() int64 { return ix.offsets[len(ix.offsets)-1] }
