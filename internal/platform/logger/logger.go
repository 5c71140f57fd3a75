package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Structured JSON on stdout so log lines
// stay machine-readable alongside the audit and activity files.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// Discard returns a logger that drops everything. Test helper.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
