package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"starrlist/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int

	// Fallback receives log output when the file cannot be opened.
	// Defaults to stderr.
	Fallback io.Writer
}

// New constructs a slog logger writing JSON records to a rotating log file.
// When the log file cannot be initialized it warns on stdout and falls back
// to a console handler, so a broken log directory never blocks a hook run.
func New(opts Options) *slog.Logger {
	level := parseLevel(opts.Level)

	if opts.FilePath != "" {
		if err := probeLogFile(opts.FilePath); err != nil {
			fmt.Printf("WARNING: could not initialize file logging: %v\n", err)
		} else {
			writer := &lumberjack.Logger{
				Filename:   opts.FilePath,
				MaxSize:    opts.MaxSizeMB,
				MaxBackups: opts.MaxBackups,
			}
			return slog.New(newJSONHandler(writer, level))
		}
	}

	fallback := opts.Fallback
	if fallback == nil {
		fallback = os.Stderr
	}
	return slog.New(slog.NewTextHandler(fallback, &slog.HandlerOptions{Level: level}))
}

// NewFromConfig builds the rotating file logger for an application variant.
func NewFromConfig(cfg *config.Config, app string) *slog.Logger {
	if cfg == nil {
		return New(Options{})
	}
	return New(Options{
		Level:      cfg.Logging.Level,
		FilePath:   cfg.LogPath(app),
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// probeLogFile verifies the log file is writable before handing the path to
// the rotating writer, which defers opening until the first record.
func probeLogFile(path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	return file.Close()
}

func newJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	opts := slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "msg"
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
