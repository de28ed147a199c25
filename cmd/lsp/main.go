// Command lsp is a terminal pager purpose-built for man pages: it adds
// reference following, a table-of-contents view, and section-aware
// reload on top of plain paging.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/dgouders/lsp/internal/config"
	"github.com/dgouders/lsp/internal/docopen"
	"github.com/dgouders/lsp/internal/docring"
	"github.com/dgouders/lsp/internal/lsplog"
	"github.com/dgouders/lsp/internal/navigator"
	"github.com/dgouders/lsp/internal/refcache"
	"github.com/dgouders/lsp/internal/refresolve"
	"github.com/dgouders/lsp/internal/reload"
	"github.com/dgouders/lsp/internal/render"
	"github.com/dgouders/lsp/internal/textutil"
	"github.com/dgouders/lsp/internal/workhorse"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const version = "lsp 1.0"

func usage() {
	io.WriteString(os.Stderr, `lsp - a pager for man pages

USAGE:
    lsp [options] [files...]

OPTIONS:
    -a, --load-apropos        preload the apropos pseudo-document
    -c, --chop-lines          toggle long-line chopping
    -h, --help                print this message and exit
    -i, --no-case             toggle case-insensitive search
    -I, --man-case            enable case-sensitive man-page names
        --keep-cr             do not translate \r to ^M
    -l, --log-file PATH       debug log path
    -n, --line-numbers        toggle line number gutter
        --no-color            disable all color output
    -o, --output-file PATH    tee all read input to this path
        --reload-command FMT  man loader template (%n, %s)
    -s, --search-string S     initial forward search pattern
    -V, --no-verify           toggle reference validation
        --verify-command FMT  reference validator template (%n, %s)
        --verify-with-apropos validate against the apropos snapshot
    -v, --version              print version and exit
`)
}

func main() {
	os.Exit(run())
}

// run re-execs as cat when stdout isn't a terminal, otherwise parses
// flags, wires every component, and drives the event loop to completion
//.
func run() int {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		execAsCat(os.Args[1:])
		return 1 // only reached if exec itself failed
	}

	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	cfg, _, err := config.Parse(os.Args[1:], os.Getenv("LSP_OPTIONS"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if cfg.Help {
		usage()
		return 0
	}
	if cfg.Version {
		fmt.Println(version)
		return 0
	}

	// Layout must never be skewed by a stale COLUMNS export.
	os.Unsetenv("COLUMNS")

	log, logCloser, err := lsplog.New(cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lsp:", err)
		return 1
	}
	defer logCloser.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, "lsp:", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "lsp:", err)
		return 1
	}
	screen.EnableMouse()
	defer screen.Fini()

	docs := docring.New()
	cache := refcache.New()
	resolver := refresolve.New(cache)
	resolver.ManCaseSensitive = cfg.ManCase
	resolver.UseApropos = cfg.VerifyWithApropos
	resolver.Disabled = cfg.NoVerify
	resolver.Log = log
	if refresolve.ValidateTemplate(cfg.VerifyCommand) {
		resolver.VerifyCmd.Template = cfg.VerifyCommand
	}

	rc := reload.New(log)
	if config.DefaultReloadCommand != cfg.ReloadCommand {
		rc.LoadCommand = cfg.ReloadCommand
	}

	if err := openDocuments(cfg, log, docs); err != nil {
		fmt.Fprintln(os.Stderr, "lsp:", err)
		return 1
	}
	if docs.Len() == 0 {
		fmt.Fprintln(os.Stderr, "lsp: nothing to page")
		return 1
	}

	if cfg.LoadApropos {
		apropos, err := docopen.BuildApropos(cache, cfg.ManCase)
		if err != nil {
			log.Warn().Err(err).Msg("apropos: preload failed")
		} else {
			docs.Add(apropos)
		}
	}

	first := docs.All()[0]
	docs.MoveToFront(first)

	width, _ := screen.Size()
	contentWidth := width
	if first.LineNumbers {
		contentWidth -= render.GutterWidth
	}
	nav := navigator.New(contentWidth, textutil.DefaultTabWidth, cfg.KeepCR, cfg.ChopLines)

	renderer := render.New(screen, 0)
	renderer.NoColor = cfg.NoColor

	wh := workhorse.New(screen, docs, nav, renderer, rc, cache, resolver, cfg, log)

	if cfg.SearchString != "" {
		if err := wh.InitialSearch(first, cfg.SearchString); err != nil {
			first.PostMessage("regex error: " + err.Error())
		}
	}

	if err := wh.Run(); err != nil {
		var fatal *workhorse.FatalError
		if errors.As(err, &fatal) {
			log.Error().Err(fatal).Msg("invariant violation, terminating")
		}
		fmt.Fprintln(os.Stderr, "lsp:", err)
		return 1
	}
	return 0
}

// openDocuments opens every file named on the command line, in order,
// or falls back to standard input when none are given — the common case
// of lsp invoked as MANPAGER/PAGER.
func openDocuments(cfg *config.Config, log zerolog.Logger, docs *docring.Ring) error {
	if len(cfg.Files) == 0 {
		doc := docopen.OpenStdin(cfg, log)
		doc.LineNumbers = cfg.LineNumbers
		docs.Add(doc)
		return nil
	}
	for _, name := range cfg.Files {
		doc, err := docopen.OpenPath(cfg, log, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		doc.LineNumbers = cfg.LineNumbers
		docs.Add(doc)
	}
	return nil
}

func execAsCat(args []string) {
	path, err := exec.LookPath("cat")
	if err != nil {
		fmt.Fprintln(os.Stderr, "lsp:", err)
		return
	}
	argv := append([]string{"cat"}, args...)
	_ = syscall.Exec(path, argv, os.Environ())
}
