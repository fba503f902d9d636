// Package logger is the leveled key/value logger every component receives.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	std *slog.Logger
}

// New builds a logger writing to w. format is "json" or "text"; level is one
// of debug, info, warn, error and defaults to info.
func New(w io.Writer, format, level string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{std: slog.New(handler)}
}

// Default logs text at info level to stderr.
func Default() *Logger {
	return New(os.Stderr, "text", "info")
}

// Discard drops everything; used by tests and one-shot commands.
func Discard() *Logger {
	return New(io.Discard, "text", "error")
}

// With returns a child logger that always carries kvs.
func (l *Logger) With(kvs ...any) *Logger {
	return &Logger{std: l.std.With(kvs...)}
}

func (l *Logger) Debug(msg string, kvs ...any) { l.std.Debug(msg, kvs...) }
func (l *Logger) Info(msg string, kvs ...any)  { l.std.Info(msg, kvs...) }
func (l *Logger) Warn(msg string, kvs ...any)  { l.std.Warn(msg, kvs...) }
func (l *Logger) Error(msg string, kvs ...any) { l.std.Error(msg, kvs...) }

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
