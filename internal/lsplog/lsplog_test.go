package lsplog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewEmptyPathIsNop(t *testing.T) {
	logger, closer, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	// A Nop logger's GetLevel reports Disabled; this is the cheapest
	// cross-check that we got zerolog.Nop() rather than a real logger.
	if logger.GetLevel().String() != "disabled" {
		t.Fatalf("GetLevel() = %q, want disabled", logger.GetLevel().String())
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lsp.log")

	logger, closer, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug().Msg("hello")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected New's logger to have written a line to the log file")
	}
}

func TestNewAppendsAcrossCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lsp.log")

	logger1, closer1, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger1.Debug().Msg("first")
	closer1.Close()

	logger2, closer2, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger2.Debug().Msg("second")
	closer2.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := len(splitLines(data)); got != 2 {
		t.Fatalf("got %d lines, want 2 (append, not truncate)", got)
	}
}

func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	return lines
}
