package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/unkn0wn-root/rhc/internal/history"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	home := t.TempDir()
	t.Setenv("RHC_CONFIG_DIR", dir)
	t.Setenv("HOME", home)

	cfg, path, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if path != filepath.Join(dir, "config.toml") {
		t.Fatalf("unexpected config path %q", path)
	}
	if cfg.DefinitionDir != filepath.Join(home, "rhc", "definitions") {
		t.Fatalf("unexpected definition dir %q", cfg.DefinitionDir)
	}
	if cfg.HistoryFile != filepath.Join(home, ".rhc_history.toml") {
		t.Fatalf("unexpected history file %q", cfg.HistoryFile)
	}
	if cfg.HistoryBackend != history.BackendFile || cfg.MaxHistoryItems != 1000 {
		t.Fatalf("unexpected history defaults %+v", cfg)
	}
	if cfg.LogFile != filepath.Join(dir, "rhc.log") || cfg.LogLevel != "info" {
		t.Fatalf("unexpected log defaults %q %q", cfg.LogFile, cfg.LogLevel)
	}
	if cfg.Timeout() != 0 {
		t.Fatalf("expected no timeout by default, got %v", cfg.Timeout())
	}
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RHC_CONFIG_DIR", dir)
	payload := `
request_definition_directory = "/defs"
environment_directory = "/envs"
history_backend = "sqlite"
max_history_items = 25
timeout_seconds = 30
connect_timeout_seconds = 2

[colors]
selected_fg = "lightgreen"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RHC_MAX_HISTORY_ITEMS", "7")
	t.Setenv("RHC_COLORS_PROMPT_FG", "cyan")

	cfg, _, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DefinitionDir != "/defs" || cfg.EnvironmentDir != "/envs" {
		t.Fatalf("unexpected dirs %q %q", cfg.DefinitionDir, cfg.EnvironmentDir)
	}
	if cfg.HistoryBackend != history.BackendSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.HistoryBackend)
	}
	if filepath.Ext(cfg.HistoryFile) != ".db" {
		t.Fatalf("expected sqlite history file, got %q", cfg.HistoryFile)
	}
	if cfg.MaxHistoryItems != 7 {
		t.Fatalf("expected env override 7, got %d", cfg.MaxHistoryItems)
	}
	if cfg.Timeout() != 30*time.Second || cfg.ConnectTimeout() != 2*time.Second {
		t.Fatalf("unexpected timeouts %v %v", cfg.Timeout(), cfg.ConnectTimeout())
	}
	if cfg.Colors.SelectedFG != "lightgreen" || cfg.Colors.PromptFG != "cyan" {
		t.Fatalf("unexpected colours %+v", cfg.Colors)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for a missing explicit config")
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("max_history_items = [\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("history_backend = \"redis\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := Load(path); err == nil {
		t.Fatalf("expected backend error")
	}
}
