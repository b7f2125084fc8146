// Package logging wraps log/slog over a charmbracelet/log handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Logger wraps slog.Logger
type Logger struct {
	*slog.Logger
}

// NewLogger creates a text or JSON logger writing to w at the given level
func NewLogger(level, format string, w io.Writer) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	formatter := charmlog.TextFormatter
	if format == "json" {
		formatter = charmlog.JSONFormatter
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmLevel(lvl),
		Formatter:       formatter,
		ReportTimestamp: true,
		Prefix:          "projctl",
	})

	return &Logger{slog.New(handler)}, nil
}

// Discard returns a logger that drops everything. Used by tests and
// one-shot commands that should stay quiet.
func Discard() *Logger {
	return &Logger{slog.New(charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel}))}
}

// With returns a logger carrying the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// ParseLevel converts debug, info, warn or error into a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func charmLevel(l slog.Level) charmlog.Level {
	switch {
	case l <= slog.LevelDebug:
		return charmlog.DebugLevel
	case l <= slog.LevelInfo:
		return charmlog.InfoLevel
	case l <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
