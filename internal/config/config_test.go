package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StateFile != "data/bankroll_state.json" || cfg.Session.MaxMinutes != 30 || cfg.Currency != "R$" {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if err := cfg.ValidateBot(); err == nil {
		t.Error("ValidateBot passed without telegram settings")
	}
	if cfg.SessionLimit() != 30*time.Minute {
		t.Errorf("session limit = %v", cfg.SessionLimit())
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
state_file: /tmp/state.json
timezone: UTC-3
currency: "$"
session:
  max_minutes: 45
telegram:
  bot_token: file-token
  chat_id: "1"
schedule:
  weekly_cron: "0 0 9 * * 0"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SESSION_MAX_MINUTES", "20")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("bot token = %q, want env override", cfg.Telegram.BotToken)
	}
	if cfg.Session.MaxMinutes != 20 || cfg.Currency != "$" || cfg.StateFile != "/tmp/state.json" {
		t.Errorf("config = %+v", cfg)
	}
	if err := cfg.ValidateBot(); err != nil {
		t.Errorf("ValidateBot: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatal(err)
	}
	if _, off := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone(); off != -3*3600 {
		t.Errorf("offset = %d, want -10800", off)
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		zone   string
		offset int
		ok     bool
	}{
		{"UTC", 0, true},
		{"UTC+5:30", 5*3600 + 1800, true},
		{"utc-3", -3 * 3600, true},
		{"UTC+99", 0, false},
		{"Mars/Olympus", 0, false},
	}
	for _, tt := range tests {
		cfg := &Config{Timezone: tt.zone}
		loc, err := cfg.Location()
		if (err == nil) != tt.ok {
			t.Errorf("Location(%q) err = %v", tt.zone, err)
			continue
		}
		if !tt.ok {
			continue
		}
		if _, off := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone(); off != tt.offset {
			t.Errorf("Location(%q) offset = %d, want %d", tt.zone, off, tt.offset)
		}
	}
}

func TestValidateBot_BadCron(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "none.yaml"))
	cfg.Telegram.BotToken, cfg.Telegram.ChatID = "t", "1"
	cfg.Schedule.WatchdogCron = "every minute"
	if err := cfg.ValidateBot(); err == nil {
		t.Error("expected cron parse error")
	}
}
