package lineread

// Line is a materialized, transient view of one physical line: raw bytes
// as stored, and the normalized payload with SGR/overstrike control bytes
// removed. Neither slice is NUL-terminated; embedded NUL bytes are legal.
type Line struct {
	Pos        int64
	Raw        []byte
	Normalized []byte
	// WLines holds raw-byte offsets (relative to Pos) of each window-line
	// start, populated by the wrap package. WLines[0] == 0.
	WLines []int
	// Current is a cursor into Raw used by the renderer while drawing.
	Current int
}

// Len returns len(Raw).
func (l *Line) Len() int { return len(l.Raw) }

// NLen returns len(Normalized).
func (l *Line) NLen() int { return len(l.Normalized) }

// HasTrailingNewline reports whether Raw ends with '\n' (false for the
// final line of a file lacking a trailing newline).
func (l *Line) HasTrailingNewline() bool {
	return l.Len() > 0 && l.Raw[l.Len()-1] == '\n'
}

// End returns the absolute offset immediately after Raw.
func (l *Line) End() int64 { return l.Pos + int64(l.Len()) }
