// Package docring holds the Document value and the DocumentRing that
// owns all open documents: an explicitly-passed ring value rather than
// a global current-document pointer and circular doubly-linked list.
package docring

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"regexp"

	"github.com/dgouders/lsp/internal/blockring"
	"github.com/dgouders/lsp/internal/lineindex"
	"github.com/dgouders/lsp/internal/lineread"
	"github.com/dgouders/lsp/internal/toc"
	"github.com/rs/zerolog"
)

// Mode is a bitset over the document's active interaction modes.
type Mode uint8

const (
	ModeRefs Mode = 1 << iota
	ModeSearch
	ModeTOC
	ModeHighlight
)

// FType classifies the kind of input backing a document.
type FType uint8

const (
	FTypeRegular FType = 1 << iota
	FTypeStdin
	FTypeManpage
	FTypeLoadedManpage
)

// Match is a regex hit's byte offsets into the owning document, or the
// distinguishable "no match" sentinel (Valid == false).
type Match struct {
	So, Eo int64
	Valid  bool
}

// MatchCell is the window (row, col) of the active match's cursor.
type MatchCell struct {
	Row, Col int
	Valid    bool
}

// StatusMessage is one status-line entry, cleared by Workhorse on the
// next key dispatch unless replaced by a fresher message first.
type StatusMessage struct {
	Text string
}

// Document is a lazily-loaded byte source with paging state.
type Document struct {
	Name            string
	ReplacementName string

	File *os.File
	Cmd  *exec.Cmd // set for popen-style sources (man loader, apropos)

	Ring   *blockring.Ring
	Lines  *lineindex.Index
	Reader *lineread.Reader

	Pos        int64
	Unaligned  bool
	PageFirst  int64
	PageLast   int64
	Shift      uint8 // horizontal shift counter; Navigator saturates it at the edges rather than wrapping
	LineNumbers bool

	Mode         Mode
	CurrentMatch Match
	MatchCell    MatchCell
	Regex        *regexp.Regexp
	SearchPattern string // source text behind Regex, kept for recompiling on a case-sensitivity toggle
	// MatchTop is the persisted match-alignment policy CTRL_L's second
	// press toggles: true positions a fresh match at the top row, false
	// centers it.
	MatchTop bool

	TOC             *toc.List
	TOCCursor       int
	TOCLevelVisible int

	FType    FType
	DoReload bool

	Messages []StatusMessage
	IsHelp   bool
}

// NewDocument wraps an already-open source. size is blockring.UnknownSize
// when the length isn't known up front (pipes). Callers that need debug
// logging should build the Ring themselves with lsplog's logger and
// assign it before use; this constructor uses a no-op logger.
func NewDocument(name string, f *os.File, closer io.Closer, size int64) *Document {
	return NewSource(name, f, f, closer, size, zerolog.Nop())
}

// NewSource wraps an arbitrary byte source (a regular file, or a
// popen-style pipe's stdout with no backing *os.File) with a fresh
// BlockRing/LineIndex/Reader. f may be nil for pipe sources.
func NewSource(name string, f *os.File, src io.Reader, closer io.Closer, size int64, log zerolog.Logger) *Document {
	lines := lineindex.New()
	ring := blockring.New(src, closer, size, log)
	return &Document{
		Name:   name,
		File:   f,
		Ring:   ring,
		Lines:  lines,
		Reader: lineread.NewReader(ring, lines),
		FType:  FTypeRegular,
	}
}

// NewBuffer wraps an in-memory byte slice as a document with no
// underlying fd — used for the synthetic help document and the apropos
// pseudo-document.
func NewBuffer(name string, data []byte) *Document {
	lines := lineindex.New()
	ring := blockring.New(bytes.NewReader(data), nil, int64(len(data)), zerolog.Nop())
	return &Document{
		Name:   name,
		Ring:   ring,
		Lines:  lines,
		Reader: lineread.NewReader(ring, lines),
		FType:  FTypeRegular,
	}
}

// SetMode sets bits m, clearing any mutually-exclusive bits (REFS and
// SEARCH are mutually exclusive).
func (d *Document) SetMode(m Mode) {
	if m&ModeRefs != 0 {
		d.Mode &^= ModeSearch
	}
	if m&ModeSearch != 0 {
		d.Mode &^= ModeRefs
	}
	d.Mode |= m
}

// ClearMode clears bits m.
func (d *Document) ClearMode(m Mode) { d.Mode &^= m }

// ToggleMode flips bits m.
func (d *Document) ToggleMode(m Mode) { d.Mode ^= m }

// Has reports whether all bits in m are set.
func (d *Document) Has(m Mode) bool { return d.Mode&m == m }

// PostMessage appends a status-line message, replacing whatever was
// there before — only the most recent message is ever drawn.
func (d *Document) PostMessage(text string) {
	d.Messages = []StatusMessage{{Text: text}}
}

// ClearMessage drops any pending status-line message.
func (d *Document) ClearMessage() { d.Messages = nil }

// LatestMessage returns the most recent status message, if any.
func (d *Document) LatestMessage() (string, bool) {
	if len(d.Messages) == 0 {
		return "", false
	}
	return d.Messages[len(d.Messages)-1].Text, true
}

// Close releases the document's fd/process, as happens on kill or on
// BlockRing EOF via the ring's own closer.
func (d *Document) Close() error {
	var err error
	if d.File != nil {
		if cerr := d.File.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			err = cerr
		}
	}
	if d.Cmd != nil {
		if werr := d.Cmd.Wait(); werr != nil {
			err = werr
		}
	}
	return err
}

