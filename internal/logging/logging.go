// Package logging provides structured logging behind a small interface so the
// engine and storage layers stay decoupled from the backend.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
)

// Logger is the structured logging interface used throughout the application.
type Logger interface {
	// Debug logs a debug message with key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an informational message.
	Info(msg string, args ...any)
	// Warn logs a warning.
	Warn(msg string, args ...any)
	// Error logs an error.
	Error(msg string, args ...any)
	// With returns a logger carrying additional key-value pairs.
	With(args ...any) Logger
	// Shutdown flushes and releases resources.
	Shutdown() error
}

// Options selects the log destination and verbosity.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// File receives JSON log lines when set. Without it, human-readable
	// output goes to stderr.
	File string
}

type charmLogger struct {
	clogger *clog.Logger
	file    *os.File
}

// New builds a logger from the options. With a file configured the output is
// one JSON object per line; otherwise it is charm's text format on stderr.
func New(opts Options) (Logger, error) {
	level := parseLevel(opts.Level)

	if opts.File == "" {
		cl := clog.NewWithOptions(os.Stderr, clog.Options{
			ReportTimestamp: true,
			Level:           level,
		})
		return &charmLogger{clogger: cl}, nil
	}

	if dir := filepath.Dir(opts.File); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	cl := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           level,
	})
	cl.SetFormatter(clog.JSONFormatter)
	return &charmLogger{clogger: cl, file: f}, nil
}

func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func (l *charmLogger) Debug(msg string, args ...any) { l.clogger.Debug(msg, args...) }
func (l *charmLogger) Info(msg string, args ...any)  { l.clogger.Info(msg, args...) }
func (l *charmLogger) Warn(msg string, args ...any)  { l.clogger.Warn(msg, args...) }
func (l *charmLogger) Error(msg string, args ...any) { l.clogger.Error(msg, args...) }

func (l *charmLogger) With(args ...any) Logger {
	return &charmLogger{clogger: l.clogger.With(args...), file: l.file}
}

func (l *charmLogger) Shutdown() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// NewNoop returns a logger that discards everything. Tests and optional
// dependencies use it instead of nil checks.
func NewNoop() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) With(...any) Logger   { return noopLogger{} }
func (noopLogger) Shutdown() error      { return nil }
