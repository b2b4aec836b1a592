package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup creates a configured *slog.Logger, sets it as the default, and
// returns it. Level accepts debug/info/warn/error (case-insensitive, default
// info). Format "pretty" switches to the tint handler for local development;
// anything else uses the plain text handler.
func Setup(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var handler slog.Handler
	if strings.EqualFold(format, "pretty") {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: lvl,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
