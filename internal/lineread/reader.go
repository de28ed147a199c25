// Package lineread extracts physical lines from a blockring.Ring and
// normalizes them, decoding SGR color sequences and grotty backspace
// overstrikes along the way.
package lineread

import (
	"errors"
	"io"

	"github.com/dgouders/lsp/internal/blockring"
	"github.com/dgouders/lsp/internal/lineindex"
)

// Reader extracts physical lines from a document's block ring, growing
// the line index as new line starts are discovered.
type Reader struct {
	ring  *blockring.Ring
	lines *lineindex.Index
}

// NewReader builds a Reader over ring, recording discovered line starts
// in lines.
func NewReader(ring *blockring.Ring, lines *lineindex.Index) *Reader {
	return &Reader{ring: ring, lines: lines}
}

// GetLineHere reads the physical line starting at pos: bytes up to and
// including the terminating '\n', or to EOF if none is found. If the very
// first byte is EOF, it returns (nil, io.EOF) — "no line here".
func (r *Reader) GetLineHere(pos int64) (*Line, error) {
	var raw []byte
	i := pos
	for {
		b, err := r.ring.Get(i)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			if i == pos {
				return nil, io.EOF
			}
			break
		}
		raw = append(raw, b)
		i++
		if b == '\n' {
			break
		}
	}

	next := pos + int64(len(raw))
	if len(raw) > 0 && raw[len(raw)-1] == '\n' && r.lines.Last() < next {
		r.lines.Append(next)
	}

	return &Line{Pos: pos, Raw: raw, Normalized: Normalize(raw)}, nil
}
