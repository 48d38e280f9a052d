// Package logger provides opinionated logging capabilities for the lore system
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	writers []io.Writer
}

// New constructs a *slog.Logger. By default records go to os.Stdout at Info
// level through slog's text handler. Use WithPretty for colorized CLI output
// via charmbracelet/log, or WithJSON for structured service logs.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:   slog.LevelInfo,
		writers: []io.Writer{os.Stdout},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	var w io.Writer
	if len(cfg.writers) == 1 {
		w = cfg.writers[0]
	} else {
		w = io.MultiWriter(cfg.writers...)
	}

	return slog.New(newHandler(cfg, w))
}

func newHandler(cfg *config, w io.Writer) slog.Handler {
	switch {
	case cfg.pretty:
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel(cfg.level),
			ReportCaller:    cfg.source,
			ReportTimestamp: true,
		})

	case cfg.json:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		})

	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		})
	}
}

func charmLevel(level slog.Level) charmlog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmlog.DebugLevel
	case level <= slog.LevelInfo:
		return charmlog.InfoLevel
	case level <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
