package core

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

var logger *slog.Logger

// InitLogger installs a tint handler writing to w as the process-wide logger
func InitLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	noColor := true
	if f, ok := w.(*os.File); ok && (f == os.Stderr || f == os.Stdout) {
		noColor = false
	}

	l := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		AddSource:  verbose,
		NoColor:    noColor,
	}))

	slog.SetDefault(l)
	logger = l
	return l
}

// GetLogger returns the global logger
func GetLogger() *slog.Logger {
	if logger == nil {
		InitLogger(os.Stderr, false) // Default to non-verbose if not initialized
	}
	return logger
}

// LogWriter adapts the logger to an io.Writer, one record per line
func LogWriter(l *slog.Logger, level slog.Level) io.Writer {
	return slog.NewLogLogger(l.Handler(), level).Writer()
}

// LogDuration logs the duration of an operation
// Usage: defer LogDuration(logger, "operation_name", time.Now())
func LogDuration(logger *slog.Logger, operation string, start time.Time) {
	duration := time.Since(start)
	logger.Debug("completed",
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	)
}

// WithTool creates a logger with tool execution context
func WithTool(logger *slog.Logger, toolName string, args map[string]any) *slog.Logger {
	return logger.With(
		"tool", toolName,
		"tool_args", args,
	)
}

// Preview truncates s for log output
func Preview(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
