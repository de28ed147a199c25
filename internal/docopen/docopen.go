// Package docopen resolves a filename argument (or stdin) into an open
// docring.Document, applying the LSP_OPEN/LESSOPEN preprocessor protocol
// and building the apropos pseudo-document.
package docopen

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgouders/lsp/internal/blockring"
	"github.com/dgouders/lsp/internal/config"
	"github.com/dgouders/lsp/internal/docring"
	"github.com/dgouders/lsp/internal/refcache"
	"github.com/dgouders/lsp/internal/refresolve"
	"github.com/rs/zerolog"
)

// Preprocess applies the LSP_OPEN/LESSOPEN protocol to name,
// returning the name to actually open. If cfg.LSPOpen is empty, name is
// returned unchanged. If it has no leading '|', the preprocessor is run
// and expected to print a replacement filename on stdout. If it does
// have a leading '|' (cfg.LSPOpenPipe), name is returned unchanged and
// OpenPath reads the preprocessor's stdout itself (via openPiped);
// Preprocess only handles the filename-substitution form.
func Preprocess(cfg *config.Config, name string) (string, error) {
	if cfg.LSPOpen == "" || cfg.LSPOpenPipe {
		return name, nil
	}
	out, err := exec.Command("/bin/sh", "-c", cfg.LSPOpen+" "+shellQuote(name)).Output()
	if err != nil {
		return name, nil // preprocessor failure: fall back to the original file
	}
	replacement := strings.TrimSpace(string(out))
	if replacement == "" {
		return name, nil
	}
	return replacement, nil
}

// OpenPath opens name as a document, applying filename-substitution
// preprocessing first, then either piping through a '|'-prefixed
// preprocessor or opening the (possibly substituted) path directly.
func OpenPath(cfg *config.Config, log zerolog.Logger, name string) (*docring.Document, error) {
	if cfg.LSPOpenPipe {
		return openPiped(cfg, log, name)
	}

	resolved, err := Preprocess(cfg, name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() && info.Mode()&os.ModeNamedPipe == 0 {
		f.Close()
		return nil, fmt.Errorf("%s: unsupported file type", name)
	}

	size := blockring.UnknownSize
	if info.Mode().IsRegular() {
		size = info.Size()
	}

	doc := docring.NewSource(name, f, sniffEncoding(f), f, size, log)
	if resolved != name {
		doc.ReplacementName = resolved
	}
	doc.FType = docring.FTypeRegular
	if cfg.OutputFile != "" {
		if err := attachTee(doc, cfg.OutputFile); err != nil {
			log.Warn().Err(err).Msg("output-file: could not open")
		}
	}
	return doc, nil
}

// openPiped runs the preprocessor with name as an argument and reads its
// stdout. If the pipe produces no bytes at all, falls back to opening
// the original file directly.
func openPiped(cfg *config.Config, log zerolog.Logger, name string) (*docring.Document, error) {
	cmd := exec.Command("/bin/sh", "-c", cfg.LSPOpen+" "+shellQuote(name))
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	br := bufio.NewReader(stdout)
	first, err := br.Peek(1)
	if err != nil || len(first) == 0 {
		_ = cmd.Wait()
		fallback := *cfg
		fallback.LSPOpen = ""
		fallback.LSPOpenPipe = false
		return OpenPath(&fallback, log, name)
	}

	doc := docring.NewSource(name, nil, sniffEncoding(br), stdout, blockring.UnknownSize, log)
	doc.Cmd = cmd
	doc.FType = docring.FTypeRegular
	return doc, nil
}

// OpenStdin wraps the controlling process's standard input as a
// document, honoring MAN_PN as the authoritative page name when set
//.
func OpenStdin(cfg *config.Config, log zerolog.Logger) *docring.Document {
	name := "stdin"
	if cfg.ManPN != "" {
		name = cfg.ManPN
	}
	doc := docring.NewSource(name, nil, sniffEncoding(os.Stdin), os.Stdin, blockring.UnknownSize, log)
	doc.FType = docring.FTypeStdin
	if cfg.OutputFile != "" {
		if err := attachTee(doc, cfg.OutputFile); err != nil {
			log.Warn().Err(err).Msg("output-file: could not open")
		}
	}
	return doc
}

func attachTee(doc *docring.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	doc.Ring.SetTee(f)
	return nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// AproposDocumentName is the apropos pseudo-document's ring name.
const AproposDocumentName = "*apropos*"

// BuildApropos runs `apropos . | sort` through an anonymous pipe (a
// plain pipe, not a PTY), returning a synthetic pseudo-document of the
// output and pre-populating cache with every enumerated page marked
// Valid.
func BuildApropos(cache *refcache.Cache, manCaseSensitive bool) (*docring.Document, error) {
	apropos := exec.Command("apropos", ".")
	sortCmd := exec.Command("sort")

	pr, pw := io.Pipe()
	apropos.Stdout = pw
	sortCmd.Stdin = pr
	var out bytes.Buffer
	sortCmd.Stdout = &out

	if err := sortCmd.Start(); err != nil {
		return nil, err
	}
	if err := apropos.Start(); err != nil {
		_ = sortCmd.Process.Kill()
		return nil, err
	}
	go func() {
		_ = apropos.Wait()
		_ = pw.Close()
	}()
	if err := sortCmd.Wait(); err != nil {
		return nil, fmt.Errorf("apropos: %w", err)
	}

	data := out.Bytes()
	for _, line := range bytes.Split(data, []byte("\n")) {
		name := aproposLineName(string(line))
		if name == "" {
			continue
		}
		key := refresolve.Canonicalize(refresolve.Parse(name), manCaseSensitive)
		cache.SetValid(key)
	}

	doc := docring.NewBuffer(AproposDocumentName, data)
	return doc, nil
}

// aproposLineName extracts the "name(section)" token from one line of
// `apropos .` output, e.g. "printf (3)  - formatted output conversion".
func aproposLineName(line string) string {
	i := strings.IndexByte(line, '(')
	if i <= 0 {
		return ""
	}
	j := strings.IndexByte(line[i:], ')')
	if j < 0 {
		return ""
	}
	name := strings.TrimSpace(line[:i])
	section := line[i+1 : i+j]
	if name == "" || section == "" {
		return ""
	}
	return name + "(" + section + ")"
}
