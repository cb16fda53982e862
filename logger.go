package crep

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with engine-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses the default text handler to stderr.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogMerge logs an interval merge operation.
func (l *Logger) LogMerge(ctx context.Context, how How, leftRows, rightRows, outRows int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "merge failed",
			"how", string(how),
			"left_rows", leftRows,
			"right_rows", rightRows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "merge completed",
			"how", string(how),
			"left_rows", leftRows,
			"right_rows", rightRows,
			"out_rows", outRows,
			"duration", duration,
		)
	}
}

// LogOverlay logs an unbalanced (overlay) merge operation.
func (l *Logger) LogOverlay(ctx context.Context, baseRows, overrideRows, outRows int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "overlay merge failed",
			"base_rows", baseRows,
			"override_rows", overrideRows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "overlay merge completed",
			"base_rows", baseRows,
			"override_rows", overrideRows,
			"out_rows", outRows,
			"duration", duration,
		)
	}
}

// LogMergeEvent logs an event fold operation.
func (l *Logger) LogMergeEvent(ctx context.Context, intervalRows, eventRows, outRows int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "event merge failed",
			"interval_rows", intervalRows,
			"event_rows", eventRows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "event merge completed",
			"interval_rows", intervalRows,
			"event_rows", eventRows,
			"out_rows", outRows,
			"duration", duration,
		)
	}
}

// LogAggregate logs a constant-run aggregation.
func (l *Logger) LogAggregate(ctx context.Context, inRows, outRows int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "aggregate failed", "rows", inRows, "error", err)
	} else {
		l.DebugContext(ctx, "aggregate completed",
			"in_rows", inRows,
			"out_rows", outRows,
			"duration", duration,
		)
	}
}

// LogResample logs a fixed-length re-segmentation.
func (l *Logger) LogResample(ctx context.Context, length float64, outRows int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "resample failed", "length", length, "error", err)
	} else {
		l.DebugContext(ctx, "resample completed",
			"length", length,
			"out_rows", outRows,
			"duration", duration,
		)
	}
}
