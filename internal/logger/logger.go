package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/accounts-replay-ledger/internal/config"
)

// NewLogger creates a JSON slog.Logger on stderr, leaving stdout to the balance report
func NewLogger(cfg *config.Config) *slog.Logger {
	return NewLoggerWithWriter(cfg, os.Stderr)
}

// NewLoggerWithWriter creates a JSON slog.Logger writing to w
func NewLoggerWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source code location to log output
		AddSource: level == slog.LevelDebug,
	}

	handler := slog.NewJSONHandler(w, opts)
	logger := slog.New(handler)

	logger.Debug("logger initialized", "level", level, "app", cfg.Application.Name)

	return logger
}
