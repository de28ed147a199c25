package lineread

// Decoder decodes SGR sequences into a running (attr, pair) state,
// allocating and memoizing color pairs via a shared PairTable.
type Decoder struct {
	pairs  *PairTable
	attr   Attr
	fg, bg int
	pairID int
}

// NewDecoder creates a Decoder sharing pairs across an entire document
// (color pairs are process-wide allocations in curses; here they're
// scoped to one terminal session via the Renderer's single PairTable).
func NewDecoder(pairs *PairTable) *Decoder {
	return &Decoder{pairs: pairs, fg: ColorDefault, bg: ColorDefault}
}

// Reset clears the running attribute/color state, e.g. at the start of a
// physical line whose rendering doesn't carry state from the previous
// line.
func (d *Decoder) Reset() {
	d.attr = 0
	d.fg, d.bg = ColorDefault, ColorDefault
	d.pairID = DefaultPairID
}

// Attr returns the currently active attribute mask.
func (d *Decoder) Attr() Attr { return d.attr }

// PairID returns the currently active color-pair id.
func (d *Decoder) PairID() int { return d.pairID }

// Feed processes the SGR sequence at data[0:] (as identified by sgrLen),
// updating the running state. It returns the sequence's byte length, or
// -1 if data does not begin with a well-formed SGR sequence (the caller
// should pass such bytes through verbatim).
func (d *Decoder) Feed(data []byte) int {
	n := sgrLen(data)
	if n == -1 {
		return -1
	}

	if fg256, bg256, hasFG, hasBG := Decode256(data); hasFG || hasBG {
		if hasFG {
			d.fg = fg256
		}
		if hasBG {
			d.bg = bg256
		}
		d.refreshPair()
		return n
	}

	_, attr, fg, bg := DecodeSGR(data, d.attr, d.fg, d.bg)
	d.attr, d.fg, d.bg = attr, fg, bg
	d.refreshPair()
	return n
}

func (d *Decoder) refreshPair() {
	if d.pairs == nil {
		// No shared PairTable (e.g. a throwaway decoder used only for
		// width accounting by the Wrapper): fall through to the default
		// pair rather than allocating one.
		d.pairID = DefaultPairID
		return
	}
	id, ok := d.pairs.Get(d.fg, d.bg)
	if !ok {
		id = DefaultPairID
	}
	d.pairID = id
}

// OverstrikeAttr classifies a grotty overstrike chain starting at raw[i]
// (which must be the first byte of a "c\b..." run as detected by
// skipControlRun) and returns the attribute it contributes, plus the
// display rune and the total raw byte length consumed.
//
//	c\bc  -> bold (same character doubled)
//	_\bc  -> italic-underline
//	_\bc\bc -> bold italic
func OverstrikeAttr(raw []byte, i int) (attr Attr, displayRune rune, consumed int) {
	first, sz1 := decodeRune(raw[i:])
	if sz1 <= 0 || i+sz1 >= len(raw) || raw[i+sz1] != '\b' {
		return 0, first, sz1
	}
	j := i + sz1 + 1
	second, sz2 := decodeRune(raw[j:])
	if sz2 <= 0 {
		return 0, first, sz1
	}

	if first == second {
		// c\bc — bold.
		return AttrBold, second, (j + sz2) - i
	}

	if first == '_' {
		// Peek for "_\bc\bc" (bold italic): after consuming "_\bc", check
		// for another "\b" + the same char.
		k := j + sz2
		if k+1 < len(raw) && raw[k] == '\b' {
			third, sz3 := decodeRune(raw[k+1:])
			if sz3 > 0 && third == second {
				return AttrBold | AttrItalic, third, (k + 1 + sz3) - i
			}
		}
		return AttrItalic | AttrUnderline, second, (j + sz2) - i
	}

	return 0, first, sz1
}
