package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/termin-watch/internal/criteria"
	"github.com/pfrederiksen/termin-watch/internal/slot"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvTelegramToken, "")
	t.Setenv(EnvTelegramChatIDs, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CheckInterval != time.Hour {
		t.Errorf("CheckInterval = %v, want 1h", cfg.CheckInterval)
	}
	if cfg.DailyReportHour != 8 {
		t.Errorf("DailyReportHour = %d, want 8", cfg.DailyReportHour)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want 60s", cfg.RequestTimeout)
	}
	if len(cfg.Targets) != 2 || cfg.Targets[1].Office != "MOSKAU" {
		t.Errorf("unexpected default targets %+v", cfg.Targets)
	}
	if len(cfg.Criteria) != 1 || cfg.Criteria[0].Value != "01.09.2025" {
		t.Errorf("unexpected default criteria %+v", cfg.Criteria)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
check_interval: 30m
request_timeout: 15s
daily_report_hour: 0
timezone: Asia/Almaty
targets:
  - name: Almaty
    office: ALMATY
    calendar_id: "123"
criteria:
  - kind: before_date
    value: 15.10.2025
    reason: mid October
  - kind: month_substring
    value: .11.2025
`)
	t.Setenv(EnvTelegramToken, " token ")
	t.Setenv(EnvTelegramChatIDs, "111, 222,,")
	t.Setenv(EnvTwitterAPIKey, "k")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CheckInterval != 30*time.Minute || cfg.RequestTimeout != 15*time.Second {
		t.Errorf("durations not parsed: %v %v", cfg.CheckInterval, cfg.RequestTimeout)
	}
	if cfg.DailyReportHour != 0 {
		t.Errorf("DailyReportHour = %d, want 0", cfg.DailyReportHour)
	}
	if diff := cmp.Diff([]slot.Target{{Name: "Almaty", Office: "ALMATY", CalendarID: "123"}}, cfg.Targets); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
	wantCriteria := []criteria.Criterion{
		{Kind: criteria.KindBeforeDate, Value: "15.10.2025", Reason: "mid October"},
		{Kind: criteria.KindMonthSubstring, Value: ".11.2025"},
	}
	if diff := cmp.Diff(wantCriteria, cfg.Criteria); diff != "" {
		t.Errorf("criteria mismatch (-want +got):\n%s", diff)
	}
	if cfg.TelegramToken != "token" {
		t.Errorf("TelegramToken = %q", cfg.TelegramToken)
	}
	if diff := cmp.Diff([]string{"111", "222"}, cfg.TelegramChatIDs); diff != "" {
		t.Errorf("chat IDs mismatch (-want +got):\n%s", diff)
	}
	if cfg.Twitter.Complete() {
		t.Error("partial Twitter credentials should not be complete")
	}
	if cfg.SchedulerURL == "" {
		t.Error("unset fields should keep their defaults")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"hour out of range", "daily_report_hour: 24", "daily_report_hour"},
		{"zero interval", "check_interval: 0s", "check_interval"},
		{"unknown timezone", "timezone: Mars/Olympus", "timezone"},
		{"no targets", "targets: []", "at least one target"},
		{"incomplete target", "targets:\n  - name: X", "calendar_id are required"},
		{"bad criterion", "criteria:\n  - kind: before_date\n    value: tomorrow", "invalid date"},
		{"malformed yaml", "targets: [", "parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv(EnvTelegramToken, "")
	os.Unsetenv(EnvTelegramToken)

	path := writeFile(t, ".env", "TELEGRAM_BOT_TOKEN=from-file\n")
	if err := LoadEnvFile(path, true); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv(EnvTelegramToken); got != "from-file" {
		t.Errorf("TELEGRAM_BOT_TOKEN = %q, want from-file", got)
	}

	missing := filepath.Join(t.TempDir(), ".env")
	if err := LoadEnvFile(missing, false); err != nil {
		t.Errorf("optional missing env file should be ignored, got %v", err)
	}
	if err := LoadEnvFile(missing, true); err == nil {
		t.Error("required missing env file should fail")
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc.String() != "Europe/Moscow" {
		t.Errorf("Location() = %v", loc)
	}
}
