// Package logging builds the structured logger shared by the CLI, the loader
// and the HTTP service.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"

	"github.com/notesai/notesai/internal/config"
)

// New returns a logger that writes to stderr.
func New(cfg config.LogConfig) (*log.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter returns a logger that writes to w in the configured format.
func NewWithWriter(cfg config.LogConfig, w io.Writer) (*log.Logger, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Level))
	if name == "" {
		name = "info"
	}
	// ParseLevel does not reject unknown names, so only canonical names that
	// round-trip through Level.String are accepted.
	level := log.ParseLevel(name)
	if level.String() != name {
		return nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	var writer log.Writer
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		writer = &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    isTerminal(w),
			EndWithMessage: true,
		}
	case "json":
		writer = &log.IOWriter{Writer: w}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return &log.Logger{
		Level:      level,
		TimeFormat: "15:04:05",
		Writer:     writer,
	}, nil
}

// Discard returns a logger that drops every event.
func Discard() *log.Logger {
	return &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return log.IsTerminal(f.Fd())
}
