package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger: JSON to stdout, info level.
// Services and handlers receive it by injection rather than via slog.Default.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
