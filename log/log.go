// Package log provides structured logging with context support for migration
// runs.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

type logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Logger is the default logger used by the package-level logging functions.
var Logger logger = New(os.Stdout, "text", slog.LevelInfo, nil) //nolint:gochecknoglobals

// SetDefault sets the default logger used by the package-level logging
// functions.
func SetDefault(l logger) {
	Logger = l
}

type contextKey string

const (
	// RunIDKey is the context key for the migration run ID.
	RunIDKey contextKey = "runId"
	// DatabaseNameKey is the context key for the target database name.
	DatabaseNameKey contextKey = "database"
	// CollectionKey is the context key for the ledger collection name.
	CollectionKey contextKey = "collection"
)

// runKeys are the context values every log record carries when present.
var runKeys = []contextKey{ //nolint:gochecknoglobals
	RunIDKey,
	DatabaseNameKey,
	CollectionKey,
}

type contextHandler struct {
	slog.Handler
	extraKeys map[string]any
}

// Handle copies known context values onto the record before delegating to the
// wrapped handler.
func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, key := range runKeys {
		if value, ok := ctx.Value(key).(string); ok {
			r.AddAttrs(slog.String(string(key), value))
		}
	}

	for name, key := range h.extraKeys {
		if value, ok := ctx.Value(key).(string); ok {
			r.AddAttrs(slog.String(name, value))
		}
	}

	if err := h.Handler.Handle(ctx, r); err != nil {
		return fmt.Errorf("failed to handle log record: %w", err)
	}
	return nil
}

// New creates a slog.Logger writing to w in the given format ("json" or
// "text", defaulting to text), at the given level. extraKeys maps attribute
// names to additional context keys to lift onto every record.
func New(w io.Writer, format string, level slog.Level, extraKeys map[string]any) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	if format == "json" {
		return slog.New(&contextHandler{slog.NewJSONHandler(w, opts), extraKeys})
	}
	return slog.New(&contextHandler{slog.NewTextHandler(w, opts), extraKeys})
}

// Debug logs a message at Debug level.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// DebugContext logs a message at Debug level with context.
func DebugContext(ctx context.Context, msg string, args ...any) {
	Logger.DebugContext(ctx, msg, args...)
}

// Info logs a message at Info level.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// InfoContext logs a message at Info level with context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	Logger.InfoContext(ctx, msg, args...)
}

// Warn logs a message at Warn level.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// WarnContext logs a message at Warn level with context.
func WarnContext(ctx context.Context, msg string, args ...any) {
	Logger.WarnContext(ctx, msg, args...)
}

// Error logs a message at Error level.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// ErrorContext logs a message at Error level with context.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	Logger.ErrorContext(ctx, msg, args...)
}
