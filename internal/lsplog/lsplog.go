// Package lsplog wires up the --log-file debug logger: newline-delimited
// JSON, append-only, via zerolog.
package lsplog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New opens path (append, create if absent, 0600) and returns a logger
// writing to it. If path is empty, returns a no-op logger — absent
// --log-file, debug logging is disabled entirely.
func New(path string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}
	logger := zerolog.New(f).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return logger, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
