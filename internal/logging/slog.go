package logging

import (
	"io"
	"log/slog"
	"os"
)

// New JSON-логгер в stdout.
func New(level slog.Level) *slog.Logger {
	return NewWriter(os.Stdout, level)
}

func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h)
}
