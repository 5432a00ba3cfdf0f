package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	StateFile string `yaml:"state_file"`
	Timezone  string `yaml:"timezone"`
	Currency  string `yaml:"currency"`
	Session   struct {
		MaxMinutes int `yaml:"max_minutes"`
	} `yaml:"session"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		MidnightCron string `yaml:"midnight_cron"`
		WatchdogCron string `yaml:"watchdog_cron"`
		WeeklyCron   string `yaml:"weekly_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Path returns the config file location.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BANKROLL_STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("BANKROLL_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("BANKROLL_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := os.Getenv("SESSION_MAX_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.MaxMinutes = n
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_MIDNIGHT"); v != "" {
		cfg.Schedule.MidnightCron = v
	}
	if v := os.Getenv("CRON_WATCHDOG"); v != "" {
		cfg.Schedule.WatchdogCron = v
	}
	if v := os.Getenv("CRON_WEEKLY"); v != "" {
		cfg.Schedule.WeeklyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.StateFile == "" {
		cfg.StateFile = "data/bankroll_state.json"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.Currency == "" {
		cfg.Currency = "R$"
	}
	if cfg.Session.MaxMinutes == 0 {
		cfg.Session.MaxMinutes = 30
	}
	if cfg.Schedule.MidnightCron == "" {
		cfg.Schedule.MidnightCron = "5 0 0 * * *"
	}
	if cfg.Schedule.WatchdogCron == "" {
		cfg.Schedule.WatchdogCron = "0 * * * * *"
	}
	if cfg.Schedule.WeeklyCron == "" {
		cfg.Schedule.WeeklyCron = "0 0 10 * * 1"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/bankroll_ledger.db"
	}

	return cfg, nil
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	if c.StateFile == "" {
		return fmt.Errorf("state_file is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Session.MaxMinutes <= 0 {
		return fmt.Errorf("session.max_minutes must be positive")
	}
	return nil
}

// ValidateBot additionally checks what the long-running bot needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"schedule.midnight_cron": c.Schedule.MidnightCron,
		"schedule.watchdog_cron": c.Schedule.WatchdogCron,
		"schedule.weekly_cron":   c.Schedule.WeeklyCron,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// SessionLimit is the configured maximum session length.
func (c *Config) SessionLimit() time.Duration {
	return time.Duration(c.Session.MaxMinutes) * time.Minute
}

// Location resolves the configured time zone. Besides IANA names it accepts
// fixed offsets such as "UTC-3" or "UTC+5:30".
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	switch name {
	case "", "Local":
		return time.Local, nil
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc, nil
	}
	if loc, ok := fixedZone(name); ok {
		return loc, nil
	}
	return nil, fmt.Errorf("timezone: unknown zone %q", name)
}

func fixedZone(name string) (*time.Location, bool) {
	rest, ok := strings.CutPrefix(strings.ToUpper(name), "UTC")
	if !ok || rest == "" {
		return nil, false
	}
	sign := 1
	switch rest[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return nil, false
	}
	hh, mm, _ := strings.Cut(rest[1:], ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h > 14 {
		return nil, false
	}
	m := 0
	if mm != "" {
		if m, err = strconv.Atoi(mm); err != nil || m >= 60 {
			return nil, false
		}
	}
	return time.FixedZone(name, sign*(h*3600+m*60)), true
}
