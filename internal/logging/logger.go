// Package logging assembles the slog logger used across idlereap.
//
// Log lines are written as "YYYY-MM-DD HH:MM:SS - message key=value"
// and duplicated to stdout and a fixed log file so that both the
// terminal and the supervisor-collected file see the same stream. The
// logger is constructed once at process start and closed on exit.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options describes logger construction parameters.
type Options struct {
	// Level is the minimum level emitted. Zero value is info.
	Level slog.Level

	// LogFile, when set, duplicates output to the given file in
	// addition to stdout. Parent directories are created as needed.
	LogFile string
}

// Logger bundles a slog.Logger with the lifecycle of its log file.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New constructs the process logger.
func New(opts Options) (*Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(opts.Level)

	handlers := []slog.Handler{newLineHandler(os.Stdout, levelVar)}

	var file *os.File
	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		handlers = append(handlers, newLineHandler(f, levelVar))
	}

	return &Logger{
		Logger: slog.New(newFanoutHandler(handlers...)),
		file:   file,
	}, nil
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// NewNop returns a logger that discards everything. For tests and
// wiring code that cannot fail.
func NewNop() *Logger {
	return &Logger{Logger: slog.New(newLineHandler(io.Discard, nil))}
}
