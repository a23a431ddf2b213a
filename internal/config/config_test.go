package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataSource.Symbol != "SPY" || cfg.DataSource.Provider != "api" {
		t.Errorf("unexpected data source defaults: %+v", cfg.DataSource)
	}
	if cfg.Forecast.LookAheadMinutes != 480 {
		t.Errorf("expected look-ahead 480, got %d", cfg.Forecast.LookAheadMinutes)
	}
	if cfg.Forecast.LastDayWindow != 1 || cfg.Forecast.PeriodWindow != 50 || cfg.Forecast.DayOfWeekWindow != 50 {
		t.Errorf("unexpected windows: %+v", cfg.Forecast)
	}
	if cfg.Display.DaysBack != 3 || cfg.Display.MinutesAhead != 15 {
		t.Errorf("unexpected display defaults: %+v", cfg.Display)
	}
	if cfg.Schedule.RefreshCron != "0 * * * * *" {
		t.Errorf("expected minutely refresh, got %q", cfg.Schedule.RefreshCron)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
data_source:
  provider: yahoo
  symbol: QQQ
  lookback_days: 10
forecast:
  lookahead_minutes: 60
display:
  days_back: 5
`)
	t.Setenv("FARJAX_SYMBOL", "IWM")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataSource.Symbol != "IWM" {
		t.Errorf("expected env to override symbol, got %s", cfg.DataSource.Symbol)
	}
	if cfg.DataSource.Provider != "yahoo" || cfg.DataSource.LookbackDays != 10 {
		t.Errorf("unexpected data source: %+v", cfg.DataSource)
	}
	if cfg.Forecast.LookAheadMinutes != 60 || cfg.Display.DaysBack != 5 {
		t.Errorf("file values not applied: %+v %+v", cfg.Forecast, cfg.Display)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.HTTP.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_ExplicitZeroKept(t *testing.T) {
	path := writeConfig(t, `
forecast:
  lookahead_minutes: 0
display:
  minutes_ahead: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Forecast.LookAheadMinutes != 0 || cfg.Display.MinutesAhead != 0 {
		t.Errorf("expected explicit zeros to survive, got %d and %d",
			cfg.Forecast.LookAheadMinutes, cfg.Display.MinutesAhead)
	}
	if cfg.Forecast.PeriodWindow != 50 || cfg.Display.DaysBack != 3 {
		t.Errorf("expected absent keys to keep defaults, got %+v %+v", cfg.Forecast, cfg.Display)
	}

	t.Setenv("FARJAX_LOOKAHEAD_MINUTES", "0")
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Forecast.LookAheadMinutes != 0 {
		t.Errorf("expected env zero look-ahead, got %d", cfg.Forecast.LookAheadMinutes)
	}

	t.Setenv("FARJAX_LOOKAHEAD_MINUTES", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a non-numeric look-ahead")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "data_source: [")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"api needs base url", func(c *Config) { c.DataSource.BaseURL = "" }, "base_url"},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "ftp" }, "provider"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }, "telegram"},
		{"bad cron", func(c *Config) { c.Schedule.RefreshCron = "every minute" }, "refresh_cron"},
		{"zero window", func(c *Config) { c.Forecast.PeriodWindow = 0 }, "windows"},
		{"empty symbol", func(c *Config) { c.DataSource.Symbol = "" }, "symbol"},
		{"ok", func(c *Config) {}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			cfg.DataSource.BaseURL = "https://example.test"
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
