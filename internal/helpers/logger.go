package helpers

import (
	"io"
	"log/slog"
	"os"
)

// NewNoopLogger returns a logger that discards everything.
func NewNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewJSONLogger returns the application logger writing JSON lines to stdout.
func NewJSONLogger(level slog.Leveler, callerTrace bool) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: callerTrace,
		Level:     level,
	}))
}
