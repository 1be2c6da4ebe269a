// Package logging provides structured logging with file rotation.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	Enabled    bool   // false discards all output
	FilePath   string // empty = stderr only
	MaxSizeMB  int    // max size in MB before rotation
	MaxBackups int    // max number of old log files to retain
	MaxAgeDays int    // max age in days to retain old log files
	Compress   bool   // compress rotated files
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		Enabled:    true,
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// Setup initializes the global slog logger with the given configuration.
// Returns a cleanup function that should be called on shutdown.
func Setup(cfg Config) (func() error, error) {
	w, cleanup, err := output(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(NewHandler(w, cfg)))
	return cleanup, nil
}

// NewHandler builds the slog handler for cfg writing to w.
func NewHandler(w io.Writer, cfg Config) slog.Handler {
	if !cfg.Enabled {
		w = io.Discard
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func output(cfg Config) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		return io.Discard, noop, nil
	}
	if cfg.FilePath == "" {
		return os.Stderr, noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
	return lj, lj.Close, nil
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
