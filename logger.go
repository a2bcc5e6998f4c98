package erisieve

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with sieve-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithThreshold adds a threshold field to the logger.
func (l *Logger) WithThreshold(threshold float64) *Logger {
	return &Logger{
		Logger: l.Logger.With("threshold", threshold),
	}
}

// WithShells adds a shell count field to the logger.
func (l *Logger) WithShells(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("shells", n),
	}
}

// WithFunctions adds a basis function count field to the logger.
func (l *Logger) WithFunctions(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("functions", n),
	}
}

// LogBuild logs a magnitude table build.
func (l *Logger) LogBuild(shells, functions, quartets int, duration time.Duration, err error) {
	if err != nil {
		l.Error("table build failed",
			"shells", shells,
			"functions", functions,
			"error", err,
		)
	} else {
		l.Info("table build completed",
			"shells", shells,
			"functions", functions,
			"quartets", quartets,
			"duration", duration,
		)
	}
}

// LogRebuild logs a threshold change and the resulting list sizes.
func (l *Logger) LogRebuild(threshold float64, shellPairs, functionPairs int, duration time.Duration) {
	l.Debug("threshold applied",
		"threshold", threshold,
		"shell_pairs", shellPairs,
		"function_pairs", functionPairs,
		"duration", duration,
	)
}

// LogSnapshotWrite logs a snapshot write operation.
func (l *Logger) LogSnapshotWrite(bytes int64, duration time.Duration, err error) {
	if err != nil {
		l.Error("snapshot write failed",
			"error", err,
		)
	} else {
		l.Info("snapshot written",
			"bytes", bytes,
			"duration", duration,
		)
	}
}

// LogSnapshotRead logs a snapshot read operation.
func (l *Logger) LogSnapshotRead(bytes int64, duration time.Duration, err error) {
	if err != nil {
		l.Error("snapshot read failed",
			"error", err,
		)
	} else {
		l.Info("snapshot loaded",
			"bytes", bytes,
			"duration", duration,
		)
	}
}
