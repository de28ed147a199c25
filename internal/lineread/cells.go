package lineread

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Cell is one visual unit produced while walking a line's raw bytes: the
// raw byte range it corresponds to (including any SGR sequence and
// overstrike backspace bytes folded into it) plus the rune and attribute
// state to display for it. Combining holds any combining marks that
// belong to the same grapheme cluster as Rune; Width is the cluster's display width as
// uniseg measures it.
type Cell struct {
	RawOff    int
	RawLen    int
	Attr      Attr
	PairID    int
	Rune      rune
	Combining []rune
	Width     int
}

// ForEachCell walks raw, feeding SGR sequences into dec as encountered,
// folding grotty overstrike chains into a single cell, and splitting a
// lone '\r' (when keepCR is false) into the two-cell "^M" spelling. emit
// is called once per visual cell in order; returning true from emit stops
// the walk early.
func ForEachCell(raw []byte, dec *Decoder, keepCR bool, emit func(Cell) bool) {
	i := 0
	for i < len(raw) {
		start := i
		for {
			n := sgrLen(raw[i:])
			if n <= 0 {
				break
			}
			dec.Feed(raw[i : i+n])
			i += n
		}
		if i >= len(raw) {
			break
		}
		if raw[i] == '\n' {
			i++
			continue
		}
		if raw[i] == '\r' && !keepCR {
			if emit(Cell{RawOff: start, RawLen: i + 1 - start, Attr: dec.Attr(), PairID: dec.PairID(), Rune: '^'}) {
				return
			}
			if emit(Cell{RawOff: start, RawLen: i + 1 - start, Attr: dec.Attr(), PairID: dec.PairID(), Rune: 'M'}) {
				return
			}
			i++
			continue
		}
		if overstrikeGuardOK(raw, i) {
			attr, r, consumed := OverstrikeAttr(raw, i)
			_, plain := decodeRune(raw[i:])
			if consumed > plain {
				if emit(Cell{RawOff: start, RawLen: (i + consumed) - start, Attr: dec.Attr() | attr, PairID: dec.PairID(), Rune: r}) {
					return
				}
				i += consumed
				continue
			}
		}
		r, sz := decodeRune(raw[i:])
		if sz <= 0 {
			break
		}
		clusterLen, width, combining := clusterFor(raw[i:], r, sz)
		if emit(Cell{RawOff: start, RawLen: (i + clusterLen) - start, Attr: dec.Attr(), PairID: dec.PairID(), Rune: r, Combining: combining, Width: width}) {
			return
		}
		i += clusterLen
	}
}

// clusterFor extends the single decoded rune r (sz bytes at the front of
// raw) to its full grapheme cluster via uniseg, returning the cluster's
// total byte length, display width, and any trailing combining runes.
// Falls back to the bare rune when r came from decodeRune's soft
// single-byte fallback (sz == 1 but r isn't a valid one-byte rune), since
// uniseg expects valid UTF-8 at the cursor.
func clusterFor(raw []byte, r rune, sz int) (length, width int, combining []rune) {
	if sz == 1 && r == rune(raw[0]) && raw[0] >= utf8.RuneSelf {
		return 1, 1, nil
	}
	cluster, _, w, _ := uniseg.FirstGraphemeCluster(raw, -1)
	if len(cluster) < sz {
		return sz, 1, nil
	}
	if len(cluster) > sz {
		combining = decodeRunes(cluster[sz:])
	}
	if w <= 0 {
		w = 1
	}
	return len(cluster), w, combining
}

func decodeRunes(b []byte) []rune {
	var out []rune
	for len(b) > 0 {
		r, sz := utf8.DecodeRune(b)
		if sz <= 0 {
			break
		}
		out = append(out, r)
		b = b[sz:]
	}
	return out
}

// overstrikeGuardOK mirrors skipControlRun's refusal to treat a
// char+backspace pair as an overstrike prefix when the character is a
// tab or the preceding byte is itself a backspace.
func overstrikeGuardOK(raw []byte, i int) bool {
	ch, sz := decodeRune(raw[i:])
	if sz <= 0 || ch == '\t' {
		return false
	}
	if i > 0 && raw[i-1] == '\b' {
		return false
	}
	return true
}
