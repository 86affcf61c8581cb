// Package bootstrap builds process-wide infrastructure shared by the commands.
package bootstrap

import (
	"io"
	"log/slog"
	"os"

	"github.com/abgdnv/storefront/pkg/logger"
)

// NewLogger creates a JSON slog.Logger on stderr with the specified log level.
// Stdout is left to command output.
func NewLogger(level string) *slog.Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a JSON slog.Logger writing to w, enriched with trace and request IDs.
func NewLoggerTo(w io.Writer, level string) *slog.Logger {
	logLevel := ToLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	logHandler := logger.NewContextHandler(slog.NewJSONHandler(w, loggerOpts))
	return slog.New(logHandler)
}

// ToLevel converts a string representation of a log level to slog.Level.
func ToLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
