package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"starrlist/internal/services/trakt"
)

func writeStatusTestConfig(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	stateDir := filepath.Join(base, "state")
	configPath := filepath.Join(base, "config.toml")
	body := fmt.Sprintf("[paths]\nstate_dir = %q\nlog_dir = %q\n", stateDir, filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, stateDir
}

func TestStatusCommandReportsMissingToken(t *testing.T) {
	configPath, _ := writeStatusTestConfig(t)
	t.Setenv("TRAKT_CLIENT_ID", "")
	t.Setenv("TRAKT_CLIENT_SECRET", "")

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"status", "--config", configPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	rendered := out.String()
	if !strings.Contains(rendered, "absent") {
		t.Fatalf("expected absent token state: %s", rendered)
	}
	if !strings.Contains(rendered, "missing") {
		t.Fatalf("expected missing credentials: %s", rendered)
	}
}

func TestStatusCommandReportsValidToken(t *testing.T) {
	configPath, stateDir := writeStatusTestConfig(t)
	t.Setenv("TRAKT_CLIENT_ID", "client-id")
	t.Setenv("TRAKT_CLIENT_SECRET", "client-secret")

	store := trakt.NewFileTokenStore(filepath.Join(stateDir, "trakt_tokens.json"))
	record := trakt.TokenRecord{
		AccessToken:  "a",
		RefreshToken: "r",
		CreatedAt:    time.Now().Unix(),
		ExpiresIn:    7200,
	}
	if err := store.Save(record); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"status", "--config", configPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "valid until") {
		t.Fatalf("expected valid token state: %s", out.String())
	}
}
