// Package logging sets up the package-wide slog logger used by netdrv.
package logging

import (
	"io"
	"log/slog"
	"os"
)

var log *slog.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init builds the global logger, writing to stderr and, if logFile is
// non-empty, also appending to that file. level is one of
// "debug"/"info"/"warn"/"error".
func Init(level string, logFile string) error {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	writers := []io.Writer{os.Stderr}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: lvl})
	log = slog.New(handler)
	slog.SetDefault(log)

	return nil
}

// Log returns the current global logger.
func Log() *slog.Logger {
	return log
}
