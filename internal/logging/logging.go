// Package logging sets up the process-wide slog logger. The TUI owns the
// terminal, so logs go to a file under the state directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DebugEnv enables debug-level logging when set to "1".
const DebugEnv = "FILLR_DEBUG"

// Open creates (or appends to) the log file at path and returns a logger
// writing to it together with a close func.
func Open(path string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f), f.Close, nil
}

// New returns a text logger writing to w.
func New(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv(DebugEnv) == "1" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
