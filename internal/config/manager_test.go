package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewManager(path)
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "config.yaml", `
discord:
  token: "abc"
announce:
  guilds: ["My Guild"]
  channels: ["terrorzone"]
  every: "15s"
datepoll:
  guilds: []
  channels: []
  cron: "30 20 * * 6"
store:
  driver: sqlite
  path: ./tz.db
source:
  tzinfo_url: "https://example.org/tz"
  runewizard_url: "https://example.org/rw"
  api_token: "t"
  contact: "c"
  platform: "p"
  repo: "r"
logging:
  level: debug
  console: true
  file:
    enabled: false
    path: ""
`)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Discord.Token != "abc" {
		t.Fatalf("token = %q", cfg.Discord.Token)
	}
	if len(cfg.Announce.Guilds) != 1 || cfg.Announce.Guilds[0] != "My Guild" {
		t.Fatalf("announce guilds = %v", cfg.Announce.Guilds)
	}

	// Absent vs empty must be preserved.
	if cfg.DatePoll.Guilds == nil {
		t.Fatal("explicit empty list decoded as nil")
	}
	if len(cfg.DatePoll.Guilds) != 0 {
		t.Fatalf("datepoll guilds = %v", cfg.DatePoll.Guilds)
	}
	if cfg.Telegram.ChatIDs != nil {
		t.Fatal("absent list decoded as non-nil")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "config.json", `{"discord":{"token":"x"},"annnounce":{}}`)
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "config.json", `{"discord":{"token":"x"}}{"more":true}`)
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestGetReturnsCommitted(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "config.json", `{"discord":{"token":"x"}}`)
	if m.Get() != nil {
		t.Fatal("Get before Load should be nil")
	}
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Get() != cfg {
		t.Fatal("Get should return the committed config")
	}
}
