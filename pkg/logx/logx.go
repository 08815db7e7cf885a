// Package logx constructs the loggers used across the syncbench tools.
package logx

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the standard console logger. If debug is true, the level is
// lowered to Debug; otherwise Info and above are emitted. Output goes to
// stderr so tables and reports on stdout stay machine-readable.
func New(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// NewWriter creates a logger writing to w at the given level. Used by tests
// to capture output.
func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
