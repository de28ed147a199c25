package lineread

// DefaultPairID is returned whenever a fg/bg combination can't be
// allocated a distinct color pair.
const DefaultPairID = 0

// PairTable memoizes (fg, bg) -> pair-id allocations the way
// lsp_get_color_pair does over curses' init_pair/pair_content: linear
// scan for an existing match, else allocate a new slot, up to a limit.
type PairTable struct {
	limit int
	pairs []pairEntry
	// exhausted is set once allocation hits the limit; callers use it to
	// post the "color pairs exhausted" status message exactly once per
	// occurrence rather than spamming it per cell.
	exhausted bool
}

type pairEntry struct {
	fg, bg int
}

// NewPairTable creates a table that can allocate at most limit pairs
// beyond pair 0 (the default pair, fg=bg=ColorDefault).
func NewPairTable(limit int) *PairTable {
	if limit <= 0 {
		limit = 256
	}
	return &PairTable{
		limit: limit,
		pairs: []pairEntry{{fg: ColorDefault, bg: ColorDefault}},
	}
}

// Get returns the pair id for (fg, bg), allocating a new one on first
// use. On exhaustion it returns DefaultPairID and reports ok=false so the
// caller can post a status message.
func (t *PairTable) Get(fg, bg int) (id int, ok bool) {
	for i, p := range t.pairs {
		if p.fg == fg && p.bg == bg {
			return i, true
		}
	}
	if len(t.pairs) >= t.limit {
		t.exhausted = true
		return DefaultPairID, false
	}
	t.pairs = append(t.pairs, pairEntry{fg: fg, bg: bg})
	return len(t.pairs) - 1, true
}

// Colors returns the fg/bg that pair id was allocated with.
func (t *PairTable) Colors(id int) (fg, bg int) {
	if id < 0 || id >= len(t.pairs) {
		return ColorDefault, ColorDefault
	}
	return t.pairs[id].fg, t.pairs[id].bg
}

// Exhausted reports whether allocation has ever failed, and clears the
// flag (one-shot, matching the status-line's "report once" semantics).
func (t *PairTable) Exhausted() bool {
	e := t.exhausted
	t.exhausted = false
	return e
}
