// Package logging builds the process slog.Logger from config.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sowferyowman/BiomechFit-app/internal/config"
)

// New returns a logger writing to stdout, a rotating file, or both. The
// returned closer flushes and closes the file; it is a no-op for stdout only.
func New(cfg config.LogConfig) (*slog.Logger, io.Closer) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)

	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:  cfg.File,
			MaxSize:   50, // megabytes
			MaxAge:    30, // days
			LocalTime: false,
			Compress:  true,
		}
		closer = file
		out = file
		if cfg.ToStdout() {
			out = io.MultiWriter(os.Stdout, file)
		}
	}

	return NewWithWriter(out, cfg), closer
}

// NewWithWriter returns a logger writing to w with cfg's level and format.
func NewWithWriter(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to slog.Level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
