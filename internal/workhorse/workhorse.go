// Package workhorse is the event loop: read a key, dispatch the command
// it names, redraw, maintain the mode bitset and status line.
package workhorse

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dgouders/lsp/internal/blockring"
	"github.com/dgouders/lsp/internal/config"
	"github.com/dgouders/lsp/internal/docopen"
	"github.com/dgouders/lsp/internal/docring"
	"github.com/dgouders/lsp/internal/lineread"
	"github.com/dgouders/lsp/internal/navigator"
	"github.com/dgouders/lsp/internal/refcache"
	"github.com/dgouders/lsp/internal/refresolve"
	"github.com/dgouders/lsp/internal/reload"
	"github.com/dgouders/lsp/internal/render"
	"github.com/dgouders/lsp/internal/search"
	"github.com/dgouders/lsp/internal/toc"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
)

// FatalError marks an invariant violation that leaves the document's
// internal state unreliable: a block-ring alignment that cannot
// converge, or a table of contents built from out-of-order entries.
// Run returns it unwrapped rather than posting it as a status message,
// so main's top-level handler can tear the screen down and exit 1.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

// isInvariantViolation reports whether err is, or wraps, one of the two
// invariant-violation sentinels that must terminate the program rather
// than surface as an ordinary status message.
func isInvariantViolation(err error) bool {
	return errors.Is(err, blockring.ErrInvariant) || errors.Is(err, toc.ErrOutOfOrder)
}

// Workhorse wires every other component into the single cooperative
// dispatch loop.
type Workhorse struct {
	Screen   tcell.Screen
	Docs     *docring.Ring
	Nav      *navigator.Navigator
	Renderer *render.Renderer
	Reload   *reload.Controller
	Cache    *refcache.Cache
	Resolver *refresolve.Resolver
	Cfg      *config.Config
	Log      zerolog.Logger

	width, height int

	lastKeyCtrlL      bool
	lastSearchForward bool
}

// New builds a Workhorse from its already-constructed components.
func New(screen tcell.Screen, docs *docring.Ring, nav *navigator.Navigator, r *render.Renderer, rc *reload.Controller, cache *refcache.Cache, resolver *refresolve.Resolver, cfg *config.Config, log zerolog.Logger) *Workhorse {
	return &Workhorse{
		Screen:   screen,
		Docs:     docs,
		Nav:      nav,
		Renderer: r,
		Reload:   rc,
		Cache:    cache,
		Resolver: resolver,
		Cfg:      cfg,
		Log:      log,
	}
}

// Run drives the loop until the user quits or a fatal error occurs.
func (w *Workhorse) Run() error {
	w.width, w.height = w.Screen.Size()

	for {
		doc := w.Docs.Current()
		if doc == nil {
			return nil
		}
		if err := w.Renderer.Display(doc, w.Nav); err != nil {
			return err
		}

		ev := w.Screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch e := ev.(type) {
		case *tcell.EventResize:
			w.onResize(e)
		case *tcell.EventKey:
			cont, err := w.dispatch(e)
			if err != nil {
				if isInvariantViolation(err) {
					return &FatalError{msg: err.Error()}
				}
				doc.PostMessage(err.Error())
				continue
			}
			if !cont {
				return nil
			}
		case *tcell.EventMouse:
			if err := w.onMouse(e); err != nil {
				if isInvariantViolation(err) {
					return &FatalError{msg: err.Error()}
				}
				doc.PostMessage(err.Error())
			}
		}
	}
}

// onResize applies a resize-storm mitigation: pause 200ms,
// draining any further resize events that arrive in that window, before
// performing a single reflow.
func (w *Workhorse) onResize(first *tcell.EventResize) {
	width, height := first.Size()
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if !w.Screen.HasPendingEvent() {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		ev := w.Screen.PollEvent()
		r, ok := ev.(*tcell.EventResize)
		if !ok {
			continue
		}
		width, height = r.Size()
		deadline = time.Now().Add(200 * time.Millisecond)
	}

	oldWidth := w.width
	w.width, w.height = width, height

	current := w.Docs.Current()
	contentWidth := width
	if current != nil && current.LineNumbers {
		contentWidth -= render.GutterWidth
	}
	w.Nav.SetWidth(contentWidth)

	if current == nil {
		return
	}
	if w.Reload.Resize(current, w.Docs.All(), oldWidth, width) {
		w.doReload(current)
	}
}

func (w *Workhorse) onMouse(e *tcell.EventMouse) error {
	doc := w.Docs.Current()
	if doc == nil {
		return nil
	}
	switch {
	case e.Buttons()&tcell.WheelUp != 0:
		if doc.Has(docring.ModeTOC) {
			w.tocMove(doc, false)
			return nil
		}
		return w.Nav.Backward(doc, 1)
	case e.Buttons()&tcell.WheelDown != 0:
		if doc.Has(docring.ModeTOC) {
			w.tocMove(doc, true)
			return nil
		}
		return w.Nav.Forward(doc, 1)
	}
	return nil
}

func (w *Workhorse) contentRows() int {
	_, maxy := w.Screen.Size()
	rows := maxy - 1
	if rows < 1 {
		rows = 1
	}
	return rows
}

// dispatch applies one keystroke's command. The returned bool is false
// exactly when the loop should exit.
func (w *Workhorse) dispatch(e *tcell.EventKey) (bool, error) {
	doc := w.Docs.Current()
	if doc == nil {
		return false, nil
	}
	doc.ClearMessage()

	// Any key other than TAB/Shift-TAB/ENTER while in REFS clears REFS
	// and HIGHLIGHT.
	isRefsContinuation := e.Key() == tcell.KeyTab || e.Key() == tcell.KeyBacktab || e.Key() == tcell.KeyEnter
	if doc.Has(docring.ModeRefs) && !isRefsContinuation {
		doc.ClearMode(docring.ModeRefs | docring.ModeHighlight)
	}

	if e.Key() == tcell.KeyCtrlL {
		w.handleCtrlL(doc)
		w.lastKeyCtrlL = true
		return true, nil
	}
	w.lastKeyCtrlL = false

	rows := w.contentRows()

	switch e.Key() {
	case tcell.KeyDown:
		if doc.Has(docring.ModeTOC) {
			w.tocMove(doc, true)
			return true, nil
		}
		return true, w.Nav.Forward(doc, 1)
	case tcell.KeyUp:
		if doc.Has(docring.ModeTOC) {
			w.tocMove(doc, false)
			return true, nil
		}
		return true, w.Nav.Backward(doc, 1)
	case tcell.KeyPgDn:
		if doc.Has(docring.ModeTOC) {
			w.tocPage(doc, true, rows)
			return true, nil
		}
		return true, w.Nav.PageForward(doc, rows)
	case tcell.KeyPgUp:
		if doc.Has(docring.ModeTOC) {
			w.tocPage(doc, false, rows)
			return true, nil
		}
		return true, w.Nav.PageBackward(doc, rows)
	case tcell.KeyHome:
		w.Nav.Top(doc)
		return true, nil
	case tcell.KeyEnd:
		return true, w.Nav.End(doc, rows)
	case tcell.KeyTab:
		w.refSearch(doc, true)
		return true, nil
	case tcell.KeyBacktab:
		w.refSearch(doc, false)
		return true, nil
	case tcell.KeyEnter:
		return w.handleEnter(doc)
	case tcell.KeyEscape:
		doc.ClearMode(docring.ModeHighlight | docring.ModeRefs)
		return true, nil
	}

	if e.Key() != tcell.KeyRune {
		return true, nil
	}

	switch e.Rune() {
	case 'j':
		if doc.Has(docring.ModeTOC) {
			w.tocMove(doc, true)
			return true, nil
		}
		return true, w.Nav.Forward(doc, 1)
	case 'k':
		if doc.Has(docring.ModeTOC) {
			w.tocMove(doc, false)
			return true, nil
		}
		return true, w.Nav.Backward(doc, 1)
	case ' ':
		if doc.Has(docring.ModeTOC) {
			w.tocPage(doc, true, rows)
			return true, nil
		}
		return true, w.Nav.PageForward(doc, rows)
	case 'b':
		if doc.Has(docring.ModeTOC) {
			w.tocPage(doc, false, rows)
			return true, nil
		}
		return true, w.Nav.PageBackward(doc, rows)
	case 'g':
		w.Nav.Top(doc)
		return true, nil
	case 'G':
		return true, w.Nav.End(doc, rows)
	case '-':
		w.toggleOption(doc)
		return true, nil
	case '<':
		w.Nav.ShiftLeft(doc, 1)
		return true, nil
	case '>':
		w.Nav.ShiftRight(doc, 1)
		return true, nil
	case '/':
		w.startSearch(doc, true)
		return true, nil
	case '?':
		w.startSearch(doc, false)
		return true, nil
	case 'n':
		w.repeatSearch(doc, true)
		return true, nil
	case 'p':
		w.repeatSearch(doc, false)
		return true, nil
	case 'T':
		return true, w.handleTOC(doc)
	case 'm':
		w.openManPrompt(doc)
		return true, nil
	case 'a':
		w.openApropos(doc)
		return true, nil
	case 'B':
		w.cycleDocuments()
		return true, nil
	case 'r':
		w.doReload(doc)
		return true, nil
	case 'c':
		return w.killCurrent(doc)
	case 'h':
		w.openHelp()
		return true, nil
	case 'q':
		return w.handleQuit(doc)
	}
	return true, nil
}

func (w *Workhorse) handleEnter(doc *docring.Document) (bool, error) {
	if doc.Has(docring.ModeTOC) {
		if node, ok := doc.TOC.Cursor(); ok {
			doc.Pos = node.Pos
			doc.PageFirst = node.Pos
		}
		doc.ClearMode(docring.ModeTOC)
		return true, nil
	}
	if doc.Has(docring.ModeRefs) && doc.Has(docring.ModeHighlight) {
		w.openCurrentRef(doc)
	}
	return true, nil
}

// openCurrentRef opens the reference under doc's current match as a new
// document, or switches to it if already open.
func (w *Workhorse) openCurrentRef(doc *docring.Document) {
	if !doc.CurrentMatch.Valid {
		return
	}
	lineStart := doc.Lines.LineStart(doc.CurrentMatch.So)
	line, err := doc.Reader.GetLineHere(lineStart)
	if err != nil {
		return
	}
	text := matchText(line, doc.CurrentMatch)
	if text == "" {
		return
	}
	ref := refresolve.Parse(text)
	w.openMan(doc, ref)
}

func (w *Workhorse) openMan(requester *docring.Document, ref refresolve.Ref) {
	canon := refresolve.Canonicalize(ref, w.Cfg.ManCase)
	if existing, ok := w.Docs.FindByName(canon); ok {
		w.switchTo(existing)
		return
	}
	newDoc, err := w.Reload.OpenMan(ref.Name, ref.Section)
	if err != nil {
		requester.PostMessage("unable to load " + ref.String())
		return
	}
	newDoc.Name = canon
	w.Docs.Add(newDoc)
}

// matchText extracts the normalized text of m within line.
func matchText(line *lineread.Line, m docring.Match) string {
	so := int(m.So - line.Pos)
	eo := int(m.Eo - line.Pos)
	if so < 0 || eo > len(line.Raw) || so > eo {
		return ""
	}
	nSo := lineread.RawToNormalizedOffset(line.Raw, so)
	nEo := lineread.RawToNormalizedOffset(line.Raw, eo)
	if nEo > len(line.Normalized) {
		nEo = len(line.Normalized)
	}
	if nSo > nEo {
		return ""
	}
	return string(line.Normalized[nSo:nEo])
}

// InitialSearch runs pattern forward from the top of doc without a
// status-line prompt — the --search-string/-s startup flag.
func (w *Workhorse) InitialSearch(doc *docring.Document, pattern string) error {
	re, err := search.Compile(pattern, w.Cfg.NoCase)
	if err != nil {
		return err
	}
	doc.Regex = re
	doc.SearchPattern = pattern
	doc.SetMode(docring.ModeSearch)
	w.lastSearchForward = true
	w.runSearch(doc, re, true, doc.Pos)
	return nil
}

func (w *Workhorse) startSearch(doc *docring.Document, forward bool) {
	prompt := "/"
	if !forward {
		prompt = "?"
	}
	pattern, ok := w.readLine(prompt)
	if !ok || pattern == "" {
		return
	}
	re, err := search.Compile(pattern, w.Cfg.NoCase)
	if err != nil {
		doc.PostMessage("regex error: " + err.Error())
		return
	}
	doc.Regex = re
	doc.SearchPattern = pattern
	doc.SetMode(docring.ModeSearch)
	w.lastSearchForward = forward
	w.runSearch(doc, re, forward, doc.Pos)
}

func (w *Workhorse) runSearch(doc *docring.Document, re *regexp.Regexp, forward bool, from int64) {
	var m search.Match
	var err error
	if forward {
		m, err = search.Forward(doc.Reader, doc.Lines, from, re)
	} else {
		m, err = search.Backward(doc.Reader, doc.Lines, from, re)
	}
	if err != nil {
		if errors.Is(err, search.ErrNotFound) {
			doc.PostMessage("Pattern not found")
			return
		}
		doc.PostMessage(err.Error())
		return
	}
	w.revealMatch(doc, m)
}

func (w *Workhorse) repeatSearch(doc *docring.Document, sameDirection bool) {
	if doc.Has(docring.ModeRefs) {
		forward := w.lastSearchForward
		if !sameDirection {
			forward = !forward
		}
		w.repeatRefSearch(doc, forward)
		return
	}
	if doc.Regex == nil {
		return
	}
	forward := w.lastSearchForward
	if !sameDirection {
		forward = !forward
	}
	var from int64
	if forward {
		from = w.nextSearchPos(doc)
	} else {
		from = doc.CurrentMatch.So
		if !doc.CurrentMatch.Valid {
			from = doc.Pos
		}
	}
	w.runSearch(doc, doc.Regex, forward, from)
}

// nextSearchPos returns where the next forward search should start from,
// guaranteeing progress past a zero-length match.
func (w *Workhorse) nextSearchPos(doc *docring.Document) int64 {
	m := doc.CurrentMatch
	if !m.Valid {
		return doc.Pos
	}
	lineStart := doc.Lines.LineStart(m.So)
	line, err := doc.Reader.GetLineHere(lineStart)
	if err != nil {
		return m.Eo
	}
	return search.ExtendZeroLengthAt(line.Raw, lineStart, m.So, m.Eo)
}

func (w *Workhorse) refSearch(doc *docring.Document, forward bool) {
	valid := w.refValidator()
	var m search.Match
	var err error
	if forward {
		m, err = search.ForwardRefs(doc.Reader, doc.Lines, doc.Pos, valid)
	} else {
		m, err = search.BackwardRefs(doc.Reader, doc.Lines, doc.Pos, valid)
	}
	if err != nil {
		doc.PostMessage("Pattern not found")
		return
	}
	doc.SetMode(docring.ModeRefs)
	w.lastSearchForward = forward
	w.revealMatch(doc, m)
}

func (w *Workhorse) repeatRefSearch(doc *docring.Document, forward bool) {
	valid := w.refValidator()
	from := doc.Pos
	if doc.CurrentMatch.Valid {
		if forward {
			from = doc.CurrentMatch.Eo
		} else {
			from = doc.CurrentMatch.So
		}
	}
	var m search.Match
	var err error
	if forward {
		m, err = search.ForwardRefs(doc.Reader, doc.Lines, from, valid)
	} else {
		m, err = search.BackwardRefs(doc.Reader, doc.Lines, from, valid)
	}
	if err != nil {
		doc.PostMessage("Pattern not found")
		return
	}
	w.revealMatch(doc, m)
}

func (w *Workhorse) refValidator() func(string) bool {
	return func(text string) bool {
		return w.Resolver.Validate(refresolve.Parse(text))
	}
}

// revealMatch scrolls doc so m is visible, aligned per the persisted
// match_top policy, and marks it the current highlighted match.
func (w *Workhorse) revealMatch(doc *docring.Document, m search.Match) {
	lineStart := doc.Lines.LineStart(m.So)
	if doc.MatchTop {
		doc.Pos = lineStart
	} else {
		dec := lineread.NewDecoder(nil)
		pos, err := w.Nav.Wrapper.Backward(doc.Reader, dec, doc.Lines, lineStart, w.contentRows()/2)
		if err == nil {
			doc.Pos = pos
		} else {
			doc.Pos = lineStart
		}
	}
	doc.PageFirst = doc.Pos
	doc.CurrentMatch = docring.Match{So: m.So, Eo: m.Eo, Valid: true}
	doc.SetMode(docring.ModeHighlight)
}

// handleCtrlL implements the two-stage CTRL_L: the first press
// realigns the current match using the inverted policy; a second,
// immediately-following press instead toggles the persisted policy
// itself and realigns with it.
func (w *Workhorse) handleCtrlL(doc *docring.Document) {
	if !doc.CurrentMatch.Valid {
		return
	}
	top := !doc.MatchTop
	if w.lastKeyCtrlL {
		doc.MatchTop = !doc.MatchTop
		top = doc.MatchTop
	}

	lineStart := doc.Lines.LineStart(doc.CurrentMatch.So)
	if top {
		doc.Pos = lineStart
	} else {
		dec := lineread.NewDecoder(nil)
		pos, err := w.Nav.Wrapper.Backward(doc.Reader, dec, doc.Lines, lineStart, w.contentRows()/2)
		if err == nil {
			doc.Pos = pos
		} else {
			doc.Pos = lineStart
		}
	}
	doc.PageFirst = doc.Pos
}

// handleTOC builds and enters TOC mode, or cycles the visible heading
// level if already in it. A toc.ErrOutOfOrder from toc.Build means the
// document violated the table-of-contents invariant and is returned
// unchanged for the caller to treat as fatal, not posted as a status
// message.
func (w *Workhorse) handleTOC(doc *docring.Document) error {
	if doc.Has(docring.ModeTOC) {
		doc.TOC.CycleLevel()
		return nil
	}

	t, err := toc.Build(doc.Reader)
	if err != nil {
		if errors.Is(err, toc.ErrOutOfOrder) {
			return err
		}
		doc.PostMessage("invalid table of contents")
		return nil
	}
	if t.Empty() {
		doc.PostMessage("No TOC for empty files")
		return nil
	}
	doc.TOC = t
	doc.TOCCursor = 0

	lineStart := doc.Lines.LineStart(doc.Pos)
	if node, ok := t.PosToTOC(lineStart); ok {
		t.Rewind(node.Pos)
	} else if first := t.First(); first >= 0 {
		t.Rewind(first)
	}
	doc.SetMode(docring.ModeTOC)
	return nil
}

// tocMove steps doc's TOC cursor one visible entry forward or backward,
// tracking its row within the current page in doc.TOCCursor so the next
// step knows when to scroll. It does nothing once the cursor is already
// at the end of an empty list.
func (w *Workhorse) tocMove(doc *docring.Document, forward bool) bool {
	rows := w.contentRows()
	var motion navigator.TOCMotion
	var ok bool
	if forward {
		_, motion, ok = w.Nav.TOCDown(doc.TOC, doc.TOCCursor, rows)
	} else {
		_, motion, ok = w.Nav.TOCUp(doc.TOC, doc.TOCCursor, rows)
	}
	if !ok {
		return false
	}
	doc.TOCCursor = motion.Row
	return true
}

// tocPage repeats tocMove rows times, a TOC-mode stand-in for PgDn/PgUp
// and space/'b'.
func (w *Workhorse) tocPage(doc *docring.Document, forward bool, rows int) {
	for i := 0; i < rows; i++ {
		if !w.tocMove(doc, forward) {
			break
		}
	}
}

// toggleOption implements the '-'-prefixed runtime toggle submenu: the
// next key selects which setting flips.
func (w *Workhorse) toggleOption(doc *docring.Document) {
	ev := w.Screen.PollEvent()
	e, ok := ev.(*tcell.EventKey)
	if !ok || e.Key() != tcell.KeyRune {
		return
	}
	switch e.Rune() {
	case 'h':
		doc.ToggleMode(docring.ModeHighlight)
	case 'i':
		w.Cfg.NoCase = !w.Cfg.NoCase
		if doc.Regex != nil && doc.SearchPattern != "" {
			if re, err := search.Compile(doc.SearchPattern, w.Cfg.NoCase); err == nil {
				doc.Regex = re
			}
		}
		if w.Cfg.NoCase {
			doc.PostMessage("Case sensitivity OFF")
		} else {
			doc.PostMessage("Case sensitivity ON")
		}
	case 'c':
		w.Cfg.ChopLines = !w.Cfg.ChopLines
		w.Nav.Wrapper.ChopLines = w.Cfg.ChopLines
		if w.Cfg.ChopLines {
			doc.PostMessage("Chopping lines that do not fit.")
		} else {
			doc.PostMessage("Lines chopping turned OFF.")
		}
	case 'n':
		doc.LineNumbers = !doc.LineNumbers
	case 'V':
		w.Cfg.NoVerify = !w.Cfg.NoVerify
		w.Resolver.Disabled = w.Cfg.NoVerify
		if w.Cfg.NoVerify {
			doc.PostMessage("Verification of references turned OFF.")
		} else {
			doc.PostMessage("Verification of references turned ON.")
		}
	}
}

func (w *Workhorse) openManPrompt(doc *docring.Document) {
	name, ok := w.readLine("Man page: ")
	if !ok || name == "" {
		return
	}
	w.openMan(doc, refresolve.Parse(name))
}

func (w *Workhorse) openApropos(doc *docring.Document) {
	if existing, ok := w.Docs.FindByName(docopen.AproposDocumentName); ok {
		w.switchTo(existing)
		return
	}
	ad, err := docopen.BuildApropos(w.Cache, w.Cfg.ManCase)
	if err != nil {
		doc.PostMessage("apropos failed: " + err.Error())
		return
	}
	w.Docs.Add(ad)
}

// cycleDocuments steps to the next ring entry, a lightweight stand-in
// for the document-listing 'B' is named for.
func (w *Workhorse) cycleDocuments() {
	next := w.Docs.Next()
	if next == nil {
		return
	}
	w.switchTo(next)
	next.PostMessage(fmt.Sprintf("document: %s (%d open)", next.Name, w.Docs.Len()))
}

func (w *Workhorse) doReload(doc *docring.Document) {
	defer func() { doc.DoReload = false }()

	switch {
	case doc.IsHelp:
		doc.PostMessage("reload unsupported for this document")
	case doc.FType&(docring.FTypeStdin|docring.FTypeManpage|docring.FTypeLoadedManpage) != 0:
		sec, serr := reload.CaptureSection(doc)
		ref := refresolve.Parse(doc.Name)
		if err := w.Reload.ReloadMan(doc, ref.Name, ref.Section); err != nil {
			doc.PostMessage("unable to load")
			return
		}
		if serr == nil {
			_ = reload.Reposition(doc, sec)
		}
	case doc.FType&docring.FTypeRegular != 0:
		if _, err := w.Reload.ReloadRegular(doc); err != nil {
			doc.PostMessage("file no longer readable")
		}
	default:
		doc.PostMessage("reload unsupported for this document")
	}
}

func (w *Workhorse) killCurrent(doc *docring.Document) (bool, error) {
	next, err := w.Docs.Kill(doc)
	if err != nil {
		return true, err
	}
	if next == nil {
		return false, nil
	}
	if next.DoReload {
		w.doReload(next)
	}
	return true, nil
}

func (w *Workhorse) openHelp() {
	if existing, ok := w.Docs.FindByName(docring.HelpDocumentName); ok {
		w.switchTo(existing)
		return
	}
	w.Docs.Add(docring.NewHelpDocument())
}

func (w *Workhorse) handleQuit(doc *docring.Document) (bool, error) {
	if doc.Has(docring.ModeTOC) {
		doc.ClearMode(docring.ModeTOC)
		return true, nil
	}
	if doc.IsHelp {
		next, err := w.Docs.Kill(doc)
		if err != nil {
			return true, err
		}
		return next != nil, nil
	}
	return false, nil
}

func (w *Workhorse) switchTo(doc *docring.Document) {
	w.Docs.MoveToFront(doc)
	if doc.DoReload {
		w.doReload(doc)
	}
}

// readLine draws prompt in the status row and reads a line of input,
// returning ok=false on ESC/CTRL-C.
func (w *Workhorse) readLine(prompt string) (string, bool) {
	var buf []rune
	for {
		w.drawPrompt(prompt + string(buf))
		w.Screen.Show()

		ev := w.Screen.PollEvent()
		switch e := ev.(type) {
		case *tcell.EventKey:
			switch e.Key() {
			case tcell.KeyEnter:
				return string(buf), true
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return "", false
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if len(buf) > 0 {
					buf = buf[:len(buf)-1]
				}
			case tcell.KeyRune:
				buf = append(buf, e.Rune())
			}
		case *tcell.EventResize:
			w.width, w.height = e.Size()
		}
	}
}

func (w *Workhorse) drawPrompt(text string) {
	maxx, maxy := w.Screen.Size()
	row := maxy - 1
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, ch := range text {
		if x >= maxx {
			break
		}
		w.Screen.SetContent(x, row, ch, nil, style)
		x++
	}
	for ; x < maxx; x++ {
		w.Screen.SetContent(x, row, ' ', nil, style)
	}
}
