package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arena_config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServerAddress != ":8080" || cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TurnTimeout != 120*time.Second || cfg.QueueTimeout != 5*time.Minute {
		t.Fatalf("unexpected timeout defaults: %+v", cfg)
	}
	if cfg.AntiRepeatWindow != 30*time.Minute {
		t.Fatalf("unexpected anti-repeat default: %v", cfg.AntiRepeatWindow)
	}
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"address": ":9999"},
		"database": {"driver": "postgres", "dsn": "host=db"},
		"turn_timeout_seconds": 30,
		"queue_timeout_seconds": 60,
		"anti_repeat_window_minutes": 10
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServerAddress != ":9999" || cfg.DBDriver != "postgres" || cfg.DBDSN != "host=db" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.TurnTimeout != 30*time.Second || cfg.QueueTimeout != time.Minute {
		t.Fatalf("timeouts not applied: %+v", cfg)
	}
	if cfg.AntiRepeatWindow != 10*time.Minute {
		t.Fatalf("anti-repeat window not applied: %v", cfg.AntiRepeatWindow)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"server": {"address": ":9999"}}`)
	t.Setenv("ARENA_ADDR", ":7777")
	t.Setenv("ARENA_DB_DSN", "override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServerAddress != ":7777" {
		t.Fatalf("env should override file, got %s", cfg.ServerAddress)
	}
	if cfg.DBDSN != "override.db" {
		t.Fatalf("env DSN not applied, got %s", cfg.DBDSN)
	}
}

func TestRejectsMalformedTemplate(t *testing.T) {
	path := writeConfig(t, `{"templates": [{"id": "tiny", "name": "Tiny", "members": []}]}`)
	if _, err := Load(path); err == nil {
		t.Fatal("template with wrong member count should be rejected")
	}
}
