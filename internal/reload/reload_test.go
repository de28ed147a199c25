package reload

import (
	"errors"
	"testing"

	"github.com/dgouders/lsp/internal/docring"
	"github.com/rs/zerolog"
)

func TestExpandTemplate(t *testing.T) {
	cases := []struct {
		tmpl, name, section, want string
	}{
		{"man %s %n", "printf", "3", "man 3 printf"},
		{"man %s %n", "printf", "", "man printf"},
		{"%n.%s", "passwd", "5", "passwd.5"},
		{"%n.%s", "passwd", "", "passwd"},
		{"%n(%s)", "passwd", "", "passwd"},
	}
	for _, c := range cases {
		if got := ExpandTemplate(c.tmpl, c.name, c.section); got != c.want {
			t.Errorf("ExpandTemplate(%q,%q,%q) = %q, want %q", c.tmpl, c.name, c.section, got, c.want)
		}
	}
}

func TestDetectHeadingName(t *testing.T) {
	data := []byte("\nNAME\n" + "printf(3) library functions printf(3)\n\nmore text\n")
	name, ok := detectHeadingName(data)
	if !ok || name != "printf" {
		t.Fatalf("detectHeadingName = %q, %v, want printf, true", name, ok)
	}
}

func TestDetectHeadingNameMismatchedTokensFails(t *testing.T) {
	data := []byte("ls(1) and awk(1) are unrelated\nmore text\n")
	if _, ok := detectHeadingName(data); ok {
		t.Fatal("detectHeadingName should fail when the first two tokens differ")
	}
}

func TestDetectHeadingNameNoTokensFails(t *testing.T) {
	data := []byte("just some plain text\nwith no parenthesized tokens at all\n")
	if _, ok := detectHeadingName(data); ok {
		t.Fatal("detectHeadingName should fail with no heading tokens present")
	}
}

func TestIsEIOlike(t *testing.T) {
	if isEIOlike(nil) {
		t.Fatal("isEIOlike(nil) should be false")
	}
	if !isEIOlike(errors.New("read foo: input/output error")) {
		t.Fatal("isEIOlike should recognize an I/O error message")
	}
	if isEIOlike(errors.New("file not found")) {
		t.Fatal("isEIOlike should not match an unrelated error")
	}
}

func TestAutoReloadable(t *testing.T) {
	stdin := docring.NewBuffer("stdin", nil)
	stdin.FType = docring.FTypeStdin
	if !AutoReloadable(stdin) {
		t.Fatal("a stdin document should be auto-reloadable")
	}

	regular := docring.NewBuffer("regular", nil)
	regular.FType = docring.FTypeRegular
	if AutoReloadable(regular) {
		t.Fatal("a plain regular-file document should not be auto-reloadable")
	}

	loaded := docring.NewBuffer("loaded", nil)
	loaded.FType = docring.FTypeLoadedManpage
	if !AutoReloadable(loaded) {
		t.Fatal("a man page lsp opened itself should be auto-reloadable")
	}
}

func TestResizeNoopOnUnchangedWidth(t *testing.T) {
	c := New(zerolog.Nop())
	doc := docring.NewBuffer("d", nil)
	doc.FType = docring.FTypeStdin

	if c.Resize(doc, []*docring.Document{doc}, 80, 80) {
		t.Fatal("Resize should report no reload needed when width is unchanged")
	}
	if doc.DoReload {
		t.Fatal("Resize should not touch DoReload when width is unchanged")
	}
}

func TestResizeMarksOtherDocumentsDirty(t *testing.T) {
	c := New(zerolog.Nop())
	current := docring.NewBuffer("current", nil)
	current.FType = docring.FTypeRegular
	other := docring.NewBuffer("other", nil)
	other.FType = docring.FTypeStdin

	needsReload := c.Resize(current, []*docring.Document{current, other}, 80, 100)
	if needsReload {
		t.Fatal("a plain regular-file current document should not need a synchronous reload")
	}
	if !other.DoReload {
		t.Fatal("an auto-reloadable sibling document should be marked DoReload")
	}
}
