// Package search implements the regex search engine: forward/backward
// motion over the file or over TOC-visible entries, the fixed references
// regex, and zero-length-match progress guarantees.
//
// Go's regexp (RE2) has no REG_STARTEND/REG_NOTBOL/REG_NOTEOL flags
//; NOTBOL is emulated by matching the whole
// normalized line and discarding hits before the requested start offset
// — a pattern with "^" then only matches true line starts, exactly the
// behavior NOTBOL specifies. REG_NEWLINE is emulated for free: search
// operates one physical line at a time, so "." never crosses a '\n'.
package search

import (
	"errors"
	"io"
	"regexp"

	"github.com/dgouders/lsp/internal/lineindex"
	"github.com/dgouders/lsp/internal/lineread"
	"github.com/dgouders/lsp/internal/toc"
)

// RefsPattern is the fixed references regex: tokens like
// "printf(3)", "lsp(1)", "foo(3posix)".
const RefsPattern = `[A-Za-z0-9.:_+-]+\((n|[0-9])[^)]{0,8}\)`

// RefsRegexp is compiled once; it never changes at runtime.
var RefsRegexp = regexp.MustCompile(RefsPattern)

// ErrNotFound is returned when a search exhausts its candidates without a
// hit — the recoverable "Pattern not found" case.
var ErrNotFound = errors.New("search: pattern not found")

// Match is a regex hit's raw byte offsets, mirroring docring.Match's So
// and Eo fields; callers copy them into a docring.Match.
type Match struct {
	So, Eo int64
}

// Compile builds the user search regex: case-insensitive unless
// caseInsensitive is false. caseInsensitive here means "case sensitivity
// is off" (REG_ICASE behavior).
func Compile(pattern string, caseInsensitive bool) (*regexp.Regexp, error) {
	if caseInsensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// LineSource is the minimal surface search needs to materialize physical
// lines — satisfied by *lineread.Reader.
type LineSource interface {
	GetLineHere(pos int64) (*lineread.Line, error)
}

// findInLine returns all regex matches within line's normalized bytes
// whose normalized start offset is >= minNormOffset, translated to raw
// offsets. minNormOffset implements REG_NOTBOL: pass 0 when pos ==
// line.Pos (true line start), or RawToNormalizedOffset(line.Raw, pos-
// line.Pos) otherwise.
func findInLine(line *lineread.Line, re *regexp.Regexp, minNormOffset int) []Match {
	idx := re.FindAllIndex(line.Normalized, -1)
	out := make([]Match, 0, len(idx))
	for _, m := range idx {
		if m[0] < minNormOffset {
			continue
		}
		so := line.Pos + int64(lineread.NormalizeCount(line.Raw, m[0]))
		eo := line.Pos + int64(lineread.NormalizeCount(line.Raw, m[1]))
		out = append(out, Match{So: so, Eo: eo})
	}
	return out
}

// Forward searches from pos to EOF, returning the first match at or
// after pos. lines supplies line-start
// bookkeeping so the caller's LineIndex grows as new lines are
// discovered.
func Forward(src LineSource, lines *lineindex.Index, pos int64, re *regexp.Regexp) (Match, error) {
	lineStart := lines.LineStart(pos)
	for {
		line, err := src.GetLineHere(lineStart)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Match{}, ErrNotFound
			}
			return Match{}, err
		}
		minOff := 0
		if pos > lineStart {
			minOff = lineread.RawToNormalizedOffset(line.Raw, int(pos-lineStart))
		}
		if ms := findInLine(line, re, minOff); len(ms) > 0 {
			return ms[0], nil
		}
		if !line.HasTrailingNewline() {
			return Match{}, ErrNotFound
		}
		lineStart = line.End()
		pos = lineStart
	}
}

// Backward finds the last match strictly before pos: for the current line (tail-cut at pos), collect
// all matches left-to-right and take the last; if none, step to the
// previous physical line and repeat.
func Backward(src LineSource, lines *lineindex.Index, pos int64, re *regexp.Regexp) (Match, error) {
	lineStart := lines.LineStart(pos)
	cutAt := int(pos - lineStart)

	for {
		line, err := src.GetLineHere(lineStart)
		if err != nil {
			return Match{}, err
		}
		normCut := lineread.RawToNormalizedOffset(line.Raw, cutAt)
		cut := line.Normalized
		if normCut < len(cut) {
			cut = cut[:normCut]
		}
		tail := &lineread.Line{Pos: line.Pos, Raw: line.Raw, Normalized: cut}
		if ms := findInLine(tail, re, 0); len(ms) > 0 {
			return ms[len(ms)-1], nil
		}
		if lineStart == 0 {
			return Match{}, ErrNotFound
		}
		ln := lines.LineNumber(lineStart)
		if ln == 0 {
			return Match{}, ErrNotFound
		}
		lineStart = lines.At(ln - 1)
		cutAt = 1 << 30 // no cut on earlier lines; search the whole line
	}
}

// ExtendZeroLengthAt handles a zero-length match:
// when so == eo, extend eo past the next control run plus one payload
// character so repeated n/p steps make progress instead of stalling.
// raw is the owning physical line's raw bytes, lineStart its absolute
// start offset, and so/eo are absolute offsets within that line. Returns
// the (possibly extended) absolute eo.
func ExtendZeroLengthAt(raw []byte, lineStart, so, eo int64) int64 {
	if so != eo {
		return eo
	}
	rel := int(eo - lineStart)
	if rel < 0 || rel > len(raw) {
		return eo
	}
	next := lineread.NormalizeCount(raw, lineread.RawToNormalizedOffset(raw, rel)+1)
	if next <= rel {
		return eo
	}
	return lineStart + int64(next)
}

// ForwardTOC searches only TOC-visible entries' lines, starting from the
// entry at or after the TOC list's current cursor.
func ForwardTOC(src LineSource, t *toc.List, re *regexp.Regexp) (Match, toc.Node, error) {
	node, ok := t.Cursor()
	if !ok {
		node, ok = t.Forward(1)
		if !ok {
			return Match{}, toc.Node{}, ErrNotFound
		}
	}
	for {
		line, err := src.GetLineHere(node.Pos)
		if err != nil {
			return Match{}, toc.Node{}, err
		}
		if ms := findInLine(line, re, 0); len(ms) > 0 {
			return ms[0], node, nil
		}
		node, ok = t.Forward(1)
		if !ok {
			return Match{}, toc.Node{}, ErrNotFound
		}
	}
}

// BackwardTOC mirrors ForwardTOC, walking toward the start of the TOC.
func BackwardTOC(src LineSource, t *toc.List, re *regexp.Regexp) (Match, toc.Node, error) {
	node, ok := t.Backward(1)
	if !ok {
		return Match{}, toc.Node{}, ErrNotFound
	}
	for {
		line, err := src.GetLineHere(node.Pos)
		if err != nil {
			return Match{}, toc.Node{}, err
		}
		if ms := findInLine(line, re, 0); len(ms) > 0 {
			return ms[len(ms)-1], node, nil
		}
		node, ok = t.Backward(1)
		if !ok {
			return Match{}, toc.Node{}, ErrNotFound
		}
	}
}

// RefCandidate is one references-regex hit before validation.
type RefCandidate struct {
	Match Match
	Text  string
}

// ForwardRefs searches forward for reference tokens, skipping candidates
// that validate fails, continuing from the candidate's end offset.
func ForwardRefs(src LineSource, lines *lineindex.Index, pos int64, valid func(text string) bool) (Match, error) {
	lineStart := lines.LineStart(pos)
	for {
		line, err := src.GetLineHere(lineStart)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Match{}, ErrNotFound
			}
			return Match{}, err
		}
		minOff := 0
		if pos > lineStart {
			minOff = lineread.RawToNormalizedOffset(line.Raw, int(pos-lineStart))
		}
		for _, m := range findInLine(line, RefsRegexp, minOff) {
			text := extractRaw(line, m)
			if valid(text) {
				return m, nil
			}
		}
		if !line.HasTrailingNewline() {
			return Match{}, ErrNotFound
		}
		lineStart = line.End()
		pos = lineStart
	}
}

// BackwardRefs mirrors ForwardRefs, walking toward the start of file.
func BackwardRefs(src LineSource, lines *lineindex.Index, pos int64, valid func(text string) bool) (Match, error) {
	lineStart := lines.LineStart(pos)
	cutAt := int(pos - lineStart)
	for {
		line, err := src.GetLineHere(lineStart)
		if err != nil {
			return Match{}, err
		}
		normCut := lineread.RawToNormalizedOffset(line.Raw, cutAt)
		cut := line.Normalized
		if normCut < len(cut) {
			cut = cut[:normCut]
		}
		tail := &lineread.Line{Pos: line.Pos, Raw: line.Raw, Normalized: cut}
		ms := findInLine(tail, RefsRegexp, 0)
		for i := len(ms) - 1; i >= 0; i-- {
			text := extractRaw(line, ms[i])
			if valid(text) {
				return ms[i], nil
			}
		}
		if lineStart == 0 {
			return Match{}, ErrNotFound
		}
		ln := lines.LineNumber(lineStart)
		if ln == 0 {
			return Match{}, ErrNotFound
		}
		lineStart = lines.At(ln - 1)
		cutAt = 1 << 30
	}
}

func extractRaw(line *lineread.Line, m Match) string {
	so := int(m.So - line.Pos)
	eo := int(m.Eo - line.Pos)
	if so < 0 || eo > len(line.Raw) || so > eo {
		return ""
	}
	return string(line.Normalized[lineread.RawToNormalizedOffset(line.Raw, so):lineread.RawToNormalizedOffset(line.Raw, eo)])
}
