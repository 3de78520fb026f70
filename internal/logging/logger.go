package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Config controls how the process logger is built
type Config struct {
	Level  string
	Format string
}

// FromEnv reads logger settings from LOG_LEVEL and LOG_FORMAT.
// Unset or unrecognised values fall back to info level text output.
func FromEnv() Config {
	return Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	}
}

// New builds a slog.Logger configured according to the provided config.
// Logs go to stderr so the run summary on stdout stays machine readable.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
