package logger

import (
	"io"
	"log/slog"
	"os"
)

func New(env string) *slog.Logger {
	return NewWriter(os.Stdout, env)
}

// NewWriter logs JSON at info in prod and text at debug everywhere else.
func NewWriter(w io.Writer, env string) *slog.Logger {
	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(h).With("service", "asso-backend")
}
