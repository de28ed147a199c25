// Package reload implements the resize/reload loop: marking
// width-sensitive documents dirty on a terminal resize, re-invoking the
// external man-page loader through a PTY, and repositioning near the
// previously-viewed section afterward.
package reload

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/creack/pty"
	"github.com/dgouders/lsp/internal/blockring"
	"github.com/dgouders/lsp/internal/docring"
	"github.com/dgouders/lsp/internal/lineread"
	"github.com/rs/zerolog"
)

// DefaultLoadCommand is the built-in man-page loader template.
const DefaultLoadCommand = "man %s %n"

// sentinelRe matches lsp_cat's metadata line:
// "<lsp-man-pn>NAME</lsp-man-pn>".
var sentinelRe = regexp.MustCompile(`^<lsp-man-pn>(.*)</lsp-man-pn>$`)

// headingTokenRe finds "NAME(section)" tokens; used by detectHeadingName
// to spot the "NAME(n) ... NAME(n)" man page heading line.
// RE2 has no backreferences, so the repeated-name check is done by
// comparing the first and last tokens found rather than a single pattern.
var headingTokenRe = regexp.MustCompile(`(\S+)\(\S+\)`)

// Controller drives resize handling and man-page/regular-file reloads.
type Controller struct {
	LoadCommand string
	Log         zerolog.Logger
}

// New creates a Controller with the default load command.
func New(log zerolog.Logger) *Controller {
	return &Controller{LoadCommand: DefaultLoadCommand, Log: log}
}

// Resize applies the reload-on-resize policy: if width is unchanged,
// nothing happens. Otherwise the current document reloads synchronously
// if auto-reloadable; every other auto-reloadable document in docs is
// marked DoReload for lazy reload on next display.
func (c *Controller) Resize(current *docring.Document, docs []*docring.Document, oldWidth, newWidth int) (needsReload bool) {
	if oldWidth == newWidth {
		return false
	}
	for _, d := range docs {
		if d == current {
			continue
		}
		if AutoReloadable(d) {
			d.DoReload = true
		}
	}
	return AutoReloadable(current)
}

// AutoReloadable reports whether d is eligible for the resize-triggered
// reload path: stdin from a parent "man" process, or a man page lsp
// opened itself.
func AutoReloadable(d *docring.Document) bool {
	return d.FType&(docring.FTypeStdin|docring.FTypeManpage|docring.FTypeLoadedManpage) != 0
}

// Section is the repositioning anchor captured before a reload: the
// current section header's
// position and name, how many blank lines separate it from the word
// count start, and how many words precede doc.PageFirst within the
// section.
type Section struct {
	HeaderPos   int64
	HeaderName  string
	EmptyLines  int
	WordCount   int
}

// CaptureSection walks backward from doc.PageFirst to find the enclosing
// section header (a line whose first byte is non-space, or offset 0),
// then counts empty lines and words forward to doc.PageFirst.
func CaptureSection(doc *docring.Document) (Section, error) {
	headerPos, err := findSectionHeader(doc, doc.PageFirst)
	if err != nil {
		return Section{}, err
	}
	header, err := doc.Reader.GetLineHere(headerPos)
	if err != nil {
		return Section{}, err
	}

	emptyLines := 0
	words := 0
	pos := header.End()
	countingWords := false
	for pos < doc.PageFirst {
		line, err := doc.Reader.GetLineHere(pos)
		if err != nil {
			break
		}
		trimmed := strings.TrimSpace(string(line.Normalized))
		if trimmed == "" {
			if !countingWords {
				emptyLines++
			}
		} else {
			countingWords = true
			words += len(strings.Fields(trimmed))
		}
		if !line.HasTrailingNewline() {
			break
		}
		pos = line.End()
	}

	return Section{
		HeaderPos:  headerPos,
		HeaderName: strings.TrimRight(string(header.Normalized), "\n"),
		EmptyLines: emptyLines,
		WordCount:  words,
	}, nil
}

// findSectionHeader walks backward from pos's containing line until a
// line whose first normalized byte is non-space (or offset 0).
func findSectionHeader(doc *docring.Document, pos int64) (int64, error) {
	lineStart := doc.Lines.LineStart(pos)
	for {
		line, err := doc.Reader.GetLineHere(lineStart)
		if err != nil {
			return 0, err
		}
		if lineStart == 0 || (len(line.Normalized) > 0 && line.Normalized[0] != ' ' && line.Normalized[0] != '\t') {
			return lineStart, nil
		}
		ln := doc.Lines.LineNumber(lineStart)
		if ln == 0 {
			return 0, nil
		}
		lineStart = doc.Lines.At(ln - 1)
	}
}

// Reposition finds the header named sec.HeaderName in the reloaded doc,
// then advances sec.EmptyLines empty lines and, within the following
// text, sums words per line until the running total exceeds
// sec.WordCount, landing at that line's start. If the header
// can't be found, positions at the top of the file.
func Reposition(doc *docring.Document, sec Section) error {
	pos, found := findHeaderByName(doc, sec.HeaderName)
	if !found {
		doc.Pos = 0
		return nil
	}

	line, err := doc.Reader.GetLineHere(pos)
	if err != nil {
		return err
	}
	cur := line.End()

	for i := 0; i < sec.EmptyLines; i++ {
		l, err := doc.Reader.GetLineHere(cur)
		if err != nil {
			break
		}
		if !l.HasTrailingNewline() {
			break
		}
		cur = l.End()
	}

	running := 0
	for running <= sec.WordCount {
		l, err := doc.Reader.GetLineHere(cur)
		if err != nil {
			break
		}
		running += len(strings.Fields(strings.TrimSpace(string(l.Normalized))))
		if running > sec.WordCount || !l.HasTrailingNewline() {
			doc.Pos = l.Pos
			return nil
		}
		cur = l.End()
	}
	doc.Pos = cur
	return nil
}

func findHeaderByName(doc *docring.Document, name string) (int64, bool) {
	var pos int64
	for {
		line, err := doc.Reader.GetLineHere(pos)
		if err != nil {
			return 0, false
		}
		if strings.TrimRight(string(line.Normalized), "\n") == name {
			return pos, true
		}
		if !line.HasTrailingNewline() {
			return 0, false
		}
		pos = line.End()
	}
}

// execLoad runs the external man-page loader through a PTY for
// name/section, returning the resolved page name and
// its raw output.
func (c *Controller) execLoad(name, section string) (pageName string, data []byte, err error) {
	cmdline := ExpandTemplate(c.LoadCommand, name, section)

	cmd := exec.Command("/bin/sh", "-c", cmdline)
	cmd.Env = append(os.Environ(), pagerEnv()...)

	f, err := pty.Start(cmd)
	if err != nil {
		return "", nil, err
	}

	br := bufio.NewReader(f)
	firstLine, rerr := br.ReadString('\n')
	pageName = name
	if rerr == nil {
		if m := sentinelRe.FindStringSubmatch(strings.TrimRight(firstLine, "\n")); m != nil {
			pageName = m[1]
		} else {
			data = append(data, firstLine...)
		}
	}

	rest, rerr := io.ReadAll(br)
	// EIO on a PTY source is normalized to EOF.
	if rerr != nil && !isEIOlike(rerr) {
		_ = cmd.Wait()
		_ = f.Close()
		return "", nil, rerr
	}
	data = append(data, rest...)
	_ = cmd.Wait()
	_ = f.Close()

	if heading, ok := detectHeadingName(data); ok {
		pageName = heading
	}
	return pageName, data, nil
}

// ReloadMan re-invokes the external man-page loader for name/section,
// replacing doc's underlying source in place. The
// caller is responsible for capturing/restoring a Section around the
// call.
func (c *Controller) ReloadMan(doc *docring.Document, name, section string) error {
	pageName, data, err := c.execLoad(name, section)
	if err != nil {
		return err
	}

	doc.Name = pageName
	doc.Lines.Reset()
	doc.Ring = blockring.New(bytes.NewReader(data), nil, int64(len(data)), c.Log)
	doc.Reader = lineread.NewReader(doc.Ring, doc.Lines)
	doc.Pos = 0
	doc.PageFirst = 0
	doc.PageLast = 0
	doc.Unaligned = false
	doc.CurrentMatch = docring.Match{}
	doc.TOC = nil
	doc.FType = docring.FTypeLoadedManpage
	return nil
}

// OpenMan loads name/section into a brand new document, used when 'm' or
// an opened reference brings up a page that isn't already in the ring
//.
func (c *Controller) OpenMan(name, section string) (*docring.Document, error) {
	pageName, data, err := c.execLoad(name, section)
	if err != nil {
		return nil, err
	}
	doc := docring.NewBuffer(pageName, data)
	doc.FType = docring.FTypeLoadedManpage
	return doc, nil
}

// pagerEnv exports PAGER=lsp_cat, or MANPAGER=lsp_cat if MANPAGER is
// already set in the environment.
func pagerEnv() []string {
	if os.Getenv("MANPAGER") != "" {
		return []string{"MANPAGER=lsp_cat"}
	}
	return []string{"PAGER=lsp_cat"}
}

// ExpandTemplate substitutes %n/%s into tmpl, collapsing an adjacent "."
// or "(" when section is empty.
func ExpandTemplate(tmpl, name, section string) string {
	out := strings.ReplaceAll(tmpl, "%n", name)
	if section == "" {
		out = strings.ReplaceAll(out, ".%s", "")
		out = strings.ReplaceAll(out, "(%s)", "")
		out = strings.ReplaceAll(out, " %s", "")
	}
	out = strings.ReplaceAll(out, "%s", section)
	return out
}

// ReloadRegular reloads a regular file in place:
// discard blocks, close fd, reopen, refill up to the previously-shown
// page_first; if the file shrank below that, go to end and backtrack one
// page (the backtrack itself is the caller's responsibility via the
// Navigator, since it needs window height).
func (c *Controller) ReloadRegular(doc *docring.Document) (shrunk bool, err error) {
	prevPageFirst := doc.PageFirst

	if doc.File != nil {
		_ = doc.File.Close()
	}
	f, err := os.Open(doc.Name)
	if err != nil {
		return false, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return false, err
	}

	doc.File = f
	doc.Lines.Reset()
	doc.Ring = blockring.New(f, f, info.Size(), c.Log)
	doc.Reader = lineread.NewReader(doc.Ring, doc.Lines)
	doc.Pos = 0
	doc.PageLast = 0
	doc.Unaligned = false
	doc.CurrentMatch = docring.Match{}

	if info.Size() < prevPageFirst {
		doc.Pos = info.Size()
		return true, nil
	}
	doc.PageFirst = prevPageFirst
	doc.Pos = prevPageFirst
	return false, nil
}

// detectHeadingName scans the first few lines of data for a man page
// heading of the form "NAME(n) ... NAME(n)" — the same token repeated —
// and returns the name if found.
func detectHeadingName(data []byte) (string, bool) {
	lines := bytes.SplitN(data, []byte("\n"), 6)
	for _, line := range lines {
		toks := headingTokenRe.FindAllStringSubmatch(string(line), -1)
		if len(toks) < 2 {
			continue
		}
		if toks[0][1] == toks[len(toks)-1][1] {
			return toks[0][1], true
		}
	}
	return "", false
}

func isEIOlike(err error) bool {
	return err != nil && strings.Contains(err.Error(), "input/output error")
}
