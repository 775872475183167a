package xstd

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with allocator-specific helpers.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithComponent adds a component field to the logger.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// WithAllocator adds an allocator field naming the allocator implementation.
func (l *Logger) WithAllocator(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("allocator", name),
	}
}

// Slog returns the underlying *slog.Logger, for options such as
// debug.WithLogger.
func (l *Logger) Slog() *slog.Logger {
	return l.Logger
}

// LogAllocFailure logs a failed allocation of size bytes.
func (l *Logger) LogAllocFailure(ctx context.Context, op string, size uint64, err error) {
	l.WarnContext(ctx, "allocation failed",
		"op", op,
		"size", size,
		"code", CodeOf(err).String(),
		"error", err,
	)
}

// LogLeak logs a block that is still live at teardown.
func (l *Logger) LogLeak(ctx context.Context, addr uintptr, size uint64) {
	l.ErrorContext(ctx, "leaked block",
		"addr", addr,
		"size", size,
	)
}

// LogLeakSummary logs the outcome of a leak check.
func (l *Logger) LogLeakSummary(ctx context.Context, blocks int, bytes uint64) {
	if blocks > 0 {
		l.ErrorContext(ctx, "leak check failed",
			"blocks", blocks,
			"bytes", bytes,
		)
	} else {
		l.InfoContext(ctx, "leak check passed")
	}
}
