// Package config parses lsp's command-line flags (and the LSP_OPTIONS
// environment variable that carries the same flags) with pflag, the
// library the Go ecosystem reaches for when GNU-style long/short dual
// forms are required.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Config holds every flag and environment-derived setting lsp recognizes.
type Config struct {
	LoadApropos        bool
	ChopLines           bool
	NoCase              bool
	ManCase             bool
	KeepCR              bool
	LogFile             string
	LineNumbers         bool
	NoColor             bool
	OutputFile          string
	ReloadCommand       string
	SearchString        string
	NoVerify            bool
	VerifyCommand       string
	VerifyWithApropos   bool

	Help    bool
	Version bool

	Files []string

	// Environment-derived, not flags:
	LSPOpen     string // LSP_OPEN or LESSOPEN
	LSPOpenPipe bool   // true if LSPOpen had a leading '|'
	ManPN       string // MAN_PN
	Pager       string // resolved from MANPAGER / PAGER / GIT_PAGER
}

const (
	DefaultReloadCommand = "man %s %n"
	DefaultVerifyCommand = "man -w %s %n > /dev/null 2>&1"
)

// NewFlagSet builds the pflag.FlagSet bound to cfg's fields: long name,
// short alias, and default for every supported flag.
func NewFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("lsp", pflag.ContinueOnError)
	fs.BoolVarP(&cfg.LoadApropos, "load-apropos", "a", false, "preload the apropos pseudo-document at startup")
	fs.BoolVarP(&cfg.ChopLines, "chop-lines", "c", false, "toggle long-line chopping")
	fs.BoolVarP(&cfg.Help, "help", "h", false, "print usage and exit")
	fs.BoolVarP(&cfg.NoCase, "no-case", "i", false, "toggle case-insensitive search")
	fs.BoolVarP(&cfg.ManCase, "man-case", "I", false, "enable case-sensitive man-page names")
	fs.BoolVar(&cfg.KeepCR, "keep-cr", false, "do not translate \\r to ^M")
	fs.StringVarP(&cfg.LogFile, "log-file", "l", "", "debug log path")
	fs.BoolVarP(&cfg.LineNumbers, "line-numbers", "n", false, "toggle line number gutter")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "disable all color output")
	fs.StringVarP(&cfg.OutputFile, "output-file", "o", "", "tee all read input to this path")
	fs.StringVar(&cfg.ReloadCommand, "reload-command", DefaultReloadCommand, "man loader template (%n, %s)")
	fs.StringVarP(&cfg.SearchString, "search-string", "s", "", "initial forward search pattern")
	fs.BoolVarP(&cfg.NoVerify, "no-verify", "V", false, "toggle reference validation")
	fs.StringVar(&cfg.VerifyCommand, "verify-command", DefaultVerifyCommand, "reference validator template (%n, %s)")
	fs.BoolVar(&cfg.VerifyWithApropos, "verify-with-apropos", false, "use apropos snapshot for validation")
	fs.BoolVarP(&cfg.Version, "version", "v", false, "print version and exit")
	return fs
}

// Parse parses argv (os.Args[1:]-shaped), prepending any flags tokenized
// out of LSP_OPTIONS so that explicit command-line flags, parsed after,
// take precedence on conflict (pflag applies flags in encounter order;
// a flag set twice keeps its last value).
func Parse(argv []string, lspOptions string) (*Config, []string, error) {
	cfg := &Config{}
	fs := NewFlagSet(cfg)

	full := append(TokenizeOptions(lspOptions), argv...)
	if err := fs.Parse(full); err != nil {
		return nil, nil, err
	}
	cfg.Files = fs.Args()

	if cfg.ReloadCommand != DefaultReloadCommand && !validTemplate(cfg.ReloadCommand) {
		return nil, nil, fmt.Errorf("--reload-command must contain exactly one %%n and one %%s")
	}
	if cfg.VerifyCommand != DefaultVerifyCommand && !validTemplate(cfg.VerifyCommand) {
		return nil, nil, fmt.Errorf("--verify-command must contain exactly one %%n and one %%s")
	}

	loadEnv(cfg)
	return cfg, fs.Args(), nil
}

func validTemplate(tmpl string) bool {
	return strings.Count(tmpl, "%n") == 1 && strings.Count(tmpl, "%s") == 1
}

// loadEnv fills in the environment-derived settings:
// LSP_OPEN/LESSOPEN, MAN_PN, MANPAGER/PAGER/GIT_PAGER. COLUMNS is
// deliberately unset by the caller (main) before layout is computed, to
// prevent external influence on width.
func loadEnv(cfg *Config) {
	open := os.Getenv("LSP_OPEN")
	if open == "" {
		open = os.Getenv("LESSOPEN")
	}
	if strings.HasPrefix(open, "|") {
		cfg.LSPOpenPipe = true
		open = open[1:]
	}
	cfg.LSPOpen = open

	cfg.ManPN = os.Getenv("MAN_PN")

	for _, name := range []string{"MANPAGER", "PAGER", "GIT_PAGER"} {
		if v := os.Getenv(name); v != "" {
			cfg.Pager = v
			break
		}
	}
}

// TokenizeOptions splits the LSP_OPTIONS environment variable into
// argv-style tokens: leading whitespace stripped, tokens space-separated,
// with "..." quoting. No third-party shell-lexer dependency fits this
// narrow a job, so this hand-rolled tokenizer stays on the standard
// library (documented in DESIGN.md).
func TokenizeOptions(s string) []string {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return nil
	}
	var toks []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case (c == ' ' || c == '\t') && !inQuote:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return toks
}
