package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sonarr_trakt.log")
	logger := New(Options{Level: "info", FilePath: path, MaxSizeMB: 1, MaxBackups: 1})

	logger.Info("hello", "app", "sonarr")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"msg":"hello"`) {
		t.Fatalf("missing message in %q", line)
	}
	if !strings.Contains(line, `"level":"info"`) {
		t.Fatalf("missing lowercase level in %q", line)
	}
	if !strings.Contains(line, `"ts":`) {
		t.Fatalf("missing ts attr in %q", line)
	}
}

func TestNewFallsBackToConsole(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(blocked, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	var buf bytes.Buffer
	// The parent "directory" is a regular file, so the probe must fail.
	logger := New(Options{FilePath: filepath.Join(blocked, "app.log"), Fallback: &buf})

	logger.Warn("degraded")
	if !strings.Contains(buf.String(), "degraded") {
		t.Fatalf("fallback writer not used: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, expected := range cases {
		if got := parseLevel(input); got != expected {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, expected)
		}
	}
}
