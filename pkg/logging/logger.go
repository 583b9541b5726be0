// Package logging provides the structured logger used across lattice.
//
// The terminal owns stdout while an app is running, so logs go to a file (or
// are discarded). Records are JSON lines tagged with the emitting component.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger is a structured logger for lattice components
type Logger struct {
	*slog.Logger
}

// New creates a JSON logger writing to w.
func New(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler).With(slog.String("system", "lattice"))}
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// Open creates a logger appending to the file at path. An empty path yields
// a discarding logger and a no-op closer.
func Open(path string, level slog.Level) (*Logger, io.Closer, error) {
	if path == "" {
		return Discard(), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, level), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Component returns a logger tagged with a component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("component", name))}
}

// WithPath returns a logger with identity-path context
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("path", path))}
}

// WithSection returns a logger with focus-section context
func (l *Logger) WithSection(section string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("section", section))}
}

// PassCompleted logs the outcome of a render pass
func (l *Logger) PassCompleted(seq uint64, written, skipped int, d time.Duration) {
	l.Debug("render pass completed",
		slog.Uint64("pass", seq),
		slog.Int("rows_written", written),
		slog.Int("rows_skipped", skipped),
		slog.Float64("duration_ms", float64(d.Microseconds())/1000),
	)
}

// Lifecycle logs appear/disappear counts for a pass
func (l *Logger) Lifecycle(seq uint64, appeared, disappeared int) {
	if appeared == 0 && disappeared == 0 {
		return
	}
	l.Debug("lifecycle",
		slog.Uint64("pass", seq),
		slog.Int("appeared", appeared),
		slog.Int("disappeared", disappeared),
	)
}

// TaskFailed logs a background task failure
func (l *Logger) TaskFailed(path, name string, err error) {
	l.Warn("task failed",
		slog.String("path", path),
		slog.String("task", name),
		slog.String("error", err.Error()),
	)
}

// FocusChanged logs a focus transition
func (l *Logger) FocusChanged(section, from, to string) {
	l.Debug("focus changed",
		slog.String("section", section),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// WriteFailed logs an output error
func (l *Logger) WriteFailed(err error, retry bool) {
	l.Error("output write failed",
		slog.String("error", err.Error()),
		slog.Bool("retry", retry),
	)
}
