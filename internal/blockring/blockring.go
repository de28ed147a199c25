// Package blockring implements the per-document lazy byte store: a
// fixed-size-block cache over an input file descriptor, read on demand
// and never evicted.
package blockring

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// DefaultBlockSize matches typical filesystem I/O block sizes; lsp uses
// this as the read granularity so a full page rarely needs more than one
// syscall.
const DefaultBlockSize = 64 * 1024

// UnknownSize is the sentinel for a document whose total length isn't
// known yet (pipes, growing files read for the first time).
const UnknownSize int64 = -1

// ErrInvariant is returned when Align burns through a full read cycle
// without making progress toward the requested position — a bug in the
// caller or in the ring itself. Callers must treat this as fatal rather
// than ordinary end-of-input.
var ErrInvariant = errors.New("blockring: align did not converge")

// errBeyondEOF marks the ordinary case of a requested position past the
// source's actual end, once that end is known. Get converts it to
// io.EOF; it must never be confused with ErrInvariant by callers that
// only check the latter.
var errBeyondEOF = errors.New("blockring: position beyond known data")

type block struct {
	seek int64
	data []byte // len(data) <= blksize; only the tail block may be partial
}

// Ring is a circular view over a sequence of fixed-size blocks read from
// src. Blocks persist for the document's lifetime; there is no eviction.
type Ring struct {
	src     io.Reader
	closer  io.Closer
	tee     *os.File // optional output-duplication file (--output-file)
	blksize int
	blocks  []block // ordered by seek ascending; index == seek/blksize
	cur     int     // index of the block Align last positioned on
	seek    int64   // bytes read from src so far
	size    int64   // UnknownSize until EOF is observed
	eof     bool

	preRead    byte
	hasPreRead bool

	log zerolog.Logger
}

// New creates a Ring reading from src (closed via closer, if non-nil,
// once EOF is observed). size may be UnknownSize.
func New(src io.Reader, closer io.Closer, size int64, log zerolog.Logger) *Ring {
	return &Ring{
		src:     src,
		closer:  closer,
		blksize: DefaultBlockSize,
		size:    size,
		log:     log,
	}
}

// SetTee configures an output-duplication file: every chunk successfully
// read from src is also written there in full before being cached.
func (r *Ring) SetTee(f *os.File) { r.tee = f }

// SetPreRead injects a single lookahead byte (consumed when opening a
// popen-style pipe) as the first byte of the next block filled.
func (r *Ring) SetPreRead(b byte) {
	r.preRead = b
	r.hasPreRead = true
}

// Seek reports how many bytes have been read from the underlying source.
func (r *Ring) Seek() int64 { return r.seek }

// Size reports the known size, or UnknownSize if the source hasn't hit
// EOF yet.
func (r *Ring) Size() int64 { return r.size }

// EOF reports whether the underlying source is exhausted.
func (r *Ring) EOF() bool { return r.eof }

// ReadBlock fills the tail block (if it has room) or allocates a new one,
// reading up to size bytes. Returns the number of bytes actually read.
func (r *Ring) ReadBlock(size int) (int, error) {
	if r.eof {
		return 0, io.EOF
	}
	if size <= 0 || size > r.blksize {
		size = r.blksize
	}

	var tail *block
	var tailIdx int
	if n := len(r.blocks); n > 0 {
		tailIdx = n - 1
		tail = &r.blocks[tailIdx]
	}

	var buf []byte
	var startSeek int64
	if tail != nil && len(tail.data) < r.blksize {
		startSeek = tail.seek + int64(len(tail.data))
		room := r.blksize - len(tail.data)
		if size > room {
			size = room
		}
		buf = make([]byte, size)
	} else {
		startSeek = r.seek
		buf = make([]byte, size)
	}

	n, err := r.fill(buf)
	if n > 0 {
		if tail != nil && startSeek == tail.seek+int64(len(tail.data)) {
			tail.data = append(tail.data, buf[:n]...)
		} else {
			r.blocks = append(r.blocks, block{seek: startSeek, data: append([]byte(nil), buf[:n]...)})
		}
		r.seek += int64(n)
		if r.tee != nil {
			if werr := writeAllTee(r.tee, buf[:n]); werr != nil {
				r.log.Warn().Err(werr).Msg("output-file write failed")
			}
		}
	}

	if err != nil {
		if errors.Is(err, io.EOF) {
			r.markEOF()
			return n, io.EOF
		}
		// EIO on a PTY source is normalized to EOF.
		if isEIO(err) {
			r.markEOF()
			return n, io.EOF
		}
		return n, fmt.Errorf("blockring: read: %w", err)
	}
	if n == 0 {
		r.markEOF()
		return 0, io.EOF
	}
	return n, nil
}

func (r *Ring) fill(buf []byte) (int, error) {
	if r.hasPreRead {
		buf[0] = r.preRead
		r.hasPreRead = false
		if len(buf) == 1 {
			return 1, nil
		}
		n, err := r.src.Read(buf[1:])
		return n + 1, err
	}
	return r.src.Read(buf)
}

func (r *Ring) markEOF() {
	if r.eof {
		return
	}
	r.eof = true
	if r.closer != nil {
		_ = r.closer.Close()
	}
	if r.size == UnknownSize {
		r.size = r.seek
	}
}

// ReadAll drains src to EOF.
func (r *Ring) ReadAll() error {
	for {
		_, err := r.ReadBlock(r.blksize)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Align rotates the ring pointer so the current block covers the byte at
// pos-1 (or pos==0). It requests more blocks from the source as needed.
// A full rotation without finding the block is a fatal invariant
// violation.
func (r *Ring) Align(pos int64) error {
	if pos < 0 {
		pos = 0
	}
	target := pos
	if pos > 0 {
		target = pos - 1
	}

	for {
		if idx, ok := r.blockFor(target); ok {
			r.cur = idx
			return nil
		}
		if r.eof {
			return fmt.Errorf("%w: pos %d beyond eof at seek %d", errBeyondEOF, pos, r.seek)
		}
		before := len(r.blocks)
		n, err := r.ReadBlock(r.blksize)
		if errors.Is(err, io.EOF) {
			if idx, ok := r.blockFor(target); ok {
				r.cur = idx
				return nil
			}
			return fmt.Errorf("%w: pos %d beyond eof at seek %d", errBeyondEOF, pos, r.seek)
		}
		if err != nil {
			return err
		}
		if n == 0 && len(r.blocks) == before {
			return fmt.Errorf("%w: no progress reading toward pos %d at seek %d", ErrInvariant, pos, r.seek)
		}
	}
}

func (r *Ring) blockFor(pos int64) (int, bool) {
	for i, b := range r.blocks {
		if pos >= b.seek && pos < b.seek+int64(len(b.data)) {
			return i, true
		}
		// A position exactly at the end of the last (possibly partial)
		// block, when pos==0 and nothing has been read, still resolves
		// to block 0 once it exists.
	}
	if pos == 0 && len(r.blocks) > 0 {
		return 0, true
	}
	return 0, false
}

// Get returns the byte at pos, reading ahead as needed. Returns io.EOF
// once pos reaches the known size, or once the source is exhausted short
// of pos. An ErrInvariant from Align is a genuine invariant violation,
// not end-of-input, and propagates unchanged for the caller to treat as
// fatal.
func (r *Ring) Get(pos int64) (byte, error) {
	if r.size != UnknownSize && pos >= r.size {
		return 0, io.EOF
	}
	if err := r.Align(pos + 1); err != nil {
		if errors.Is(err, errBeyondEOF) {
			return 0, io.EOF
		}
		return 0, err
	}
	b := r.blocks[r.cur]
	if pos < b.seek || pos >= b.seek+int64(len(b.data)) {
		// Align(pos+1) positions at pos; re-resolve directly.
		idx, ok := r.blockFor(pos)
		if !ok {
			return 0, io.EOF
		}
		b = r.blocks[idx]
	}
	return b.data[pos-b.seek], nil
}

func writeAllTee(f *os.File, data []byte) error {
	for len(data) > 0 {
		n, err := f.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
