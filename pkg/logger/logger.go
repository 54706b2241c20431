package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Unvanquished/unvanquished-tray-browser/pkg/config"
)

// Setup creates the application logger from the logging config. Output goes
// to stderr so the oneshot server listing on stdout stays clean.
func Setup(cfg config.LoggingConfig) *slog.Logger {
	return New(cfg, os.Stderr)
}

// New builds a logger writing to w.
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
