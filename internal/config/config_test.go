package config

import "testing"

func TestTokenizeOptions(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"-a -c", []string{"-a", "-c"}},
		{`  --log-file "/tmp/my log.txt" -n`, []string{"--log-file", "/tmp/my log.txt", "-n"}},
	}
	for _, c := range cases {
		got := TokenizeOptions(c.in)
		if len(got) != len(c.want) {
			t.Errorf("TokenizeOptions(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("TokenizeOptions(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestParseFlagsAndFiles(t *testing.T) {
	t.Setenv("LSP_OPTIONS", "")
	t.Setenv("LSP_OPEN", "")
	t.Setenv("LESSOPEN", "")
	t.Setenv("MAN_PN", "")
	t.Setenv("MANPAGER", "")
	t.Setenv("PAGER", "")
	t.Setenv("GIT_PAGER", "")

	cfg, files, err := Parse([]string{"-n", "-i", "page.1", "page.2"}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.LineNumbers || !cfg.NoCase {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if len(files) != 2 || files[0] != "page.1" || files[1] != "page.2" {
		t.Fatalf("Files = %v, want [page.1 page.2]", files)
	}
}

func TestParseLSPOptionsPrecedence(t *testing.T) {
	t.Setenv("LSP_OPEN", "")
	t.Setenv("LESSOPEN", "")
	t.Setenv("MAN_PN", "")
	t.Setenv("MANPAGER", "")
	t.Setenv("PAGER", "")
	t.Setenv("GIT_PAGER", "")

	// LSP_OPTIONS sets -i, the explicit command line un-sets it back to
	// false — command-line flags parsed later win on conflict.
	cfg, _, err := Parse([]string{"--no-case=false"}, "-i")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.NoCase {
		t.Fatal("explicit --no-case=false on the command line should override LSP_OPTIONS' -i")
	}
}

func TestParseRejectsBadTemplate(t *testing.T) {
	t.Setenv("LSP_OPEN", "")
	t.Setenv("LESSOPEN", "")
	t.Setenv("MAN_PN", "")
	t.Setenv("MANPAGER", "")
	t.Setenv("PAGER", "")
	t.Setenv("GIT_PAGER", "")

	if _, _, err := Parse([]string{"--reload-command", "man %n"}, ""); err == nil {
		msg := "--reload-command missing %s should be rejected"
		t.Fatal(msg)
	}
	if _, _, err := Parse([]string{"--verify-command", "man -w %s"}, ""); err == nil {
		msg := "--verify-command missing %n should be rejected"
		t.Fatal(msg)
	}
}

func TestLoadEnvPagerPrecedence(t *testing.T) {
	t.Setenv("LSP_OPEN", "")
	t.Setenv("LESSOPEN", "")
	t.Setenv("MAN_PN", "")
	t.Setenv("MANPAGER", "mandy")
	t.Setenv("PAGER", "paggy")
	t.Setenv("GIT_PAGER", "gitty")

	cfg, _, err := Parse(nil, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Pager != "mandy" {
		t.Fatalf("Pager = %q, want MANPAGER to win (mandy)", cfg.Pager)
	}
}

func TestLoadEnvLSPOpenPipe(t *testing.T) {
	t.Setenv("LSP_OPEN", "|preprocess %s")
	t.Setenv("LESSOPEN", "")
	t.Setenv("MAN_PN", "")
	t.Setenv("MANPAGER", "")
	t.Setenv("PAGER", "")
	t.Setenv("GIT_PAGER", "")

	cfg, _, err := Parse(nil, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.LSPOpenPipe {
		t.Fatal("a leading '|' in LSP_OPEN should set LSPOpenPipe")
	}
	if cfg.LSPOpen != "preprocess %s" {
		t.Fatalf("LSPOpen = %q, want the pipe prefix stripped", cfg.LSPOpen)
	}
}
