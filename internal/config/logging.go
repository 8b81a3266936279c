package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates a dual-output logger: text to stderr, JSON to file.
// A nil stderr logs to the file only (used while the terminal UI owns the screen).
// Returns the logger and a cleanup function to close the file.
func SetupLogger(stderr io.Writer, stderrLevel slog.Level, logFile string, level slog.Level) (*slog.Logger, func() error) {
	var handlers []slog.Handler
	if stderr != nil {
		// Stderr handler (text for readability)
		handlers = append(handlers, slog.NewTextHandler(stderr, &slog.HandlerOptions{
			Level: stderrLevel,
		}))
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		if len(handlers) == 0 {
			return slog.New(slog.DiscardHandler), func() error { return nil }
		}
		// Fall back to stderr-only if file fails
		logger := slog.New(handlers[0])
		logger.Warn("failed to open log file, using stderr only", "error", err, "file", logFile)
		return logger, func() error { return nil }
	}

	// File handler (JSON for machine parsing)
	handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: level,
	}))

	logger := slog.New(slogmulti.Fanout(handlers...))

	cleanup := func() error {
		return file.Close()
	}

	return logger, cleanup
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
}
