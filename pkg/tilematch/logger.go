package tilematch

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ukaji3/tilematch-go/pkg/tilematch/parser"
)

// Logger wraps slog.Logger with matcher-specific helpers.
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
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithRunID tags every record with the run identifier.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithFile adds the file being processed.
func (l *Logger) WithFile(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("file", path),
	}
}

// LogParseFailure logs a source row left without a cell id.
func (l *Logger) LogParseFailure(ctx context.Context, err *RowParseError) {
	l.DebugContext(ctx, "row has no cell",
		"row", err.Row,
		"value", err.Value,
		"reason", err.Reason,
	)
}

// LogBatch logs a completed reference batch.
func (l *Logger) LogBatch(ctx context.Context, s parser.BatchStats) {
	l.InfoContext(ctx, "reference batch scanned",
		"batch", s.Batch,
		"rows", s.Rows,
		"kept", s.Kept,
		"scanned", s.Scanned,
		"matched", s.Matched,
	)
}

// LogRun logs the outcome of a run.
func (l *Logger) LogRun(ctx context.Context, output string, rows int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"duration", d,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"output", output,
			"rows", rows,
			"duration", d,
		)
	}
}
