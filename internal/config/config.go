// Package config loads the static settings of termin-watch.
//
// Secrets and recipients come from the environment (optionally seeded from
// a .env file); everything else comes from an optional YAML file. Without a
// file the built-in defaults watch the Astana and Moscow calendars for
// dates before 1 September 2025. Settings never change after startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // report time zone must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/termin-watch/internal/criteria"
	"github.com/pfrederiksen/termin-watch/internal/notifier"
	"github.com/pfrederiksen/termin-watch/internal/scraper"
	"github.com/pfrederiksen/termin-watch/internal/slot"
)

// Environment variable names
const (
	EnvTelegramToken       = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatIDs     = "TELEGRAM_CHAT_IDS"
	EnvTwitterAPIKey       = "TWITTER_API_KEY"
	EnvTwitterAPISecret    = "TWITTER_API_SECRET"
	EnvTwitterAccessToken  = "TWITTER_ACCESS_TOKEN"
	EnvTwitterAccessSecret = "TWITTER_ACCESS_SECRET"
)

// Config holds every setting of a run
type Config struct {
	SchedulerURL    string               `yaml:"scheduler_url"`
	Language        string               `yaml:"language"`
	RequestTimeout  time.Duration        `yaml:"request_timeout"`
	CheckInterval   time.Duration        `yaml:"check_interval"`
	DailyReportHour int                  `yaml:"daily_report_hour"`
	Timezone        string               `yaml:"timezone"`
	LogFile         string               `yaml:"log_file"`
	LogLevel        string               `yaml:"log_level"`
	Targets         []slot.Target        `yaml:"targets"`
	Criteria        []criteria.Criterion `yaml:"criteria"`

	TelegramToken   string                      `yaml:"-"`
	TelegramChatIDs []string                    `yaml:"-"`
	Twitter         notifier.TwitterCredentials `yaml:"-"`
}

// Default returns the settings the checker ships with
func Default() *Config {
	return &Config{
		SchedulerURL:    scraper.SchedulerURL,
		Language:        scraper.Language,
		RequestTimeout:  scraper.Timeout,
		CheckInterval:   time.Hour,
		DailyReportHour: 8,
		Timezone:        "Europe/Moscow",
		LogFile:         "checker.log",
		LogLevel:        "info",
		Targets: []slot.Target{
			{Name: "Astana", Office: "ASTANA", CalendarID: "20213868"},
			{Name: "Moscow", Office: "MOSKAU", CalendarID: "40044915"},
		},
		Criteria: []criteria.Criterion{
			criteria.BeforeDate(time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), "dates before 1 September"),
		},
	}
}

// LoadEnvFile seeds the environment from a .env file. Variables that are
// already set win. A missing file is only an error when required is set.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from defaults, the optional YAML file at
// path and the process environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	c.TelegramToken = strings.TrimSpace(getenv(EnvTelegramToken))
	c.TelegramChatIDs = splitList(getenv(EnvTelegramChatIDs))
	c.Twitter = notifier.TwitterCredentials{
		APIKey:       getenv(EnvTwitterAPIKey),
		APISecret:    getenv(EnvTwitterAPISecret),
		AccessToken:  getenv(EnvTwitterAccessToken),
		AccessSecret: getenv(EnvTwitterAccessSecret),
	}
}

// splitList splits a comma-separated list, dropping blank entries
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration for values the monitor cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.DailyReportHour < 0 || c.DailyReportHour > 23 {
		errs = append(errs, fmt.Errorf("daily_report_hour must be between 0 and 23, got %d", c.DailyReportHour))
	}
	if c.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("check_interval must be positive, got %s", c.CheckInterval))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	if len(c.Targets) == 0 {
		errs = append(errs, errors.New("at least one target is required"))
	}
	names := make(map[string]bool)
	for i, t := range c.Targets {
		if t.Name == "" || t.Office == "" || t.CalendarID == "" {
			errs = append(errs, fmt.Errorf("target %d: name, office and calendar_id are required", i))
			continue
		}
		if names[t.Name] {
			errs = append(errs, fmt.Errorf("target %d: duplicate name %q", i, t.Name))
		}
		names[t.Name] = true
	}

	for _, cr := range c.Criteria {
		if err := cr.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location returns the time zone used for the daily report
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
