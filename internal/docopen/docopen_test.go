package docopen

import (
	"bytes"
	"io"
	"testing"
)

func TestDetectUnicodeEncoding(t *testing.T) {
	cases := []struct {
		name   string
		sample []byte
		want   unicodeEncoding
	}{
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 'x'}, encodingUTF8BOM},
		{"utf16 le", []byte{0xFF, 0xFE, 'x', 0}, encodingUTF16LE},
		{"utf16 be", []byte{0xFE, 0xFF, 0, 'x'}, encodingUTF16BE},
		{"plain ascii", []byte("NAME\n"), encodingUnknown},
		{"empty", nil, encodingUnknown},
		{"too short for bom", []byte{0xEF}, encodingUnknown},
	}
	for _, c := range cases {
		if got := detectUnicodeEncoding(c.sample); got != c.want {
			t.Errorf("%s: detectUnicodeEncoding = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSniffEncodingStripsUTF8BOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("NAME\n")...)
	r := sniffEncoding(bytes.NewReader(in))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "NAME\n" {
		t.Fatalf("got %q, want %q (BOM stripped)", got, "NAME\n")
	}
}

func TestSniffEncodingPassesPlainTextThrough(t *testing.T) {
	in := []byte("NAME\n    printf - formatted output\n")
	r := sniffEncoding(bytes.NewReader(in))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(in) {
		t.Fatalf("got %q, want %q unchanged", got, in)
	}
}

func TestSniffEncodingTranscodesUTF16LE(t *testing.T) {
	// "Hi\n" encoded as UTF-16LE with a BOM.
	in := []byte{0xFF, 0xFE, 'H', 0, 'i', 0, '\n', 0}
	r := sniffEncoding(bytes.NewReader(in))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "Hi\n" {
		t.Fatalf("got %q, want %q", got, "Hi\n")
	}
}

func TestAproposLineName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"printf (3)  - formatted output conversion", "printf(3)"},
		{"ls (1)             - list directory contents", "ls(1)"},
		{"no parens here", ""},
		{"(1) missing name", ""},
		{"printf (unterminated", ""},
		{"printf ()", ""},
	}
	for _, c := range cases {
		if got := aproposLineName(c.in); got != c.want {
			t.Errorf("aproposLineName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestShellQuote(t *testing.T) {
	if got := shellQuote("printf"); got != "'printf'" {
		t.Errorf("shellQuote(printf) = %q, want 'printf'", got)
	}
	if got := shellQuote("it's"); got != `'it'\''s'` {
		t.Errorf("shellQuote(it's) = %q, want %q", got, `'it'\''s'`)
	}
}
