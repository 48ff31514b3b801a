package fastq

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with parser-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithSource adds an input name field to the logger.
func (l *Logger) WithSource(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", name),
	}
}

// LogParse logs a completed parse call.
func (l *Logger) LogParse(ctx context.Context, bytes, records int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "parse failed",
			"bytes", bytes,
			"records", records,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "parse completed",
			"bytes", bytes,
			"records", records,
			"duration", duration,
		)
	}
}

// LogChunk logs the outcome of one parallel chunk.
func (l *Logger) LogChunk(ctx context.Context, chunk Chunk, records int, err error) {
	if err != nil {
		l.WarnContext(ctx, "chunk failed",
			"chunk", chunk.Index,
			"start", chunk.Start,
			"end", chunk.End,
			"records", records,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "chunk completed",
			"chunk", chunk.Index,
			"bytes", chunk.Len(),
			"records", records,
		)
	}
}

// LogRecovery logs a recovery parse.
func (l *Logger) LogRecovery(ctx context.Context, kept, flagged, violations int) {
	if violations > 0 {
		l.WarnContext(ctx, "recovered from malformed records",
			"kept", kept,
			"flagged", flagged,
			"violations", violations,
		)
	} else {
		l.DebugContext(ctx, "recovery parse clean",
			"kept", kept,
		)
	}
}
