package runtime

import (
	"io"
	"log/slog"
	"os"
)

func NewLogger(service string) *slog.Logger {
	return NewLoggerTo(os.Stdout, service, ParseLevel(Getenv("LOG_LEVEL", "info")))
}

func NewLoggerTo(w io.Writer, service string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With("service", service)
}
