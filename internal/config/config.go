package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider     string `yaml:"provider"` // "api", "yahoo" or "mock"
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
		Symbol       string `yaml:"symbol"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"data_source"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Forecast struct {
		LookAheadMinutes int `yaml:"lookahead_minutes"`
		LastDayWindow    int `yaml:"last_day_window"`
		PeriodWindow     int `yaml:"period_window"`
		DayOfWeekWindow  int `yaml:"day_of_week_window"`
	} `yaml:"forecast"`
	Display struct {
		DaysBack     int `yaml:"days_back"`
		MinutesAhead int `yaml:"minutes_ahead"`
	} `yaml:"display"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Default returns the configuration used for every key the file leaves out.
func Default() *Config {
	cfg := &Config{}
	cfg.DataSource.Provider = "api"
	cfg.DataSource.Symbol = "SPY"
	cfg.DataSource.LookbackDays = 30
	cfg.Schedule.RefreshCron = "0 * * * * *"
	cfg.Schedule.ReportCron = "0 5 16 * * 1-5"
	cfg.Forecast.LookAheadMinutes = 480
	cfg.Forecast.LastDayWindow = 1
	cfg.Forecast.PeriodWindow = 50
	cfg.Forecast.DayOfWeekWindow = 50
	cfg.Display.DaysBack = 3
	cfg.Display.MinutesAhead = 15
	cfg.HTTP.Addr = ":8080"
	cfg.Database.SQLitePath = "data/farjax.db"
	return cfg
}

// Load reads config from a YAML file over the defaults, then applies environment variable overrides.
// Keys present in the file win over defaults even when their value is zero.
func Load(path string) (*Config, error) {
	cfg := Default()

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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("FARJAX_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("FARJAX_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("FARJAX_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("FARJAX_SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("FARJAX_LOOKAHEAD_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("FARJAX_LOOKAHEAD_MINUTES: %w", err)
		}
		cfg.Forecast.LookAheadMinutes = n
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}

	return cfg, nil
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "api":
		if c.DataSource.BaseURL == "" {
			return errors.New("data_source.base_url is required for the api provider")
		}
	case "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not one of api, yahoo, mock", c.DataSource.Provider)
	}
	if c.DataSource.Symbol == "" {
		return errors.New("data_source.symbol is required")
	}
	if c.DataSource.LookbackDays < 1 {
		return errors.New("data_source.lookback_days must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Forecast.LookAheadMinutes < 0 {
		return errors.New("forecast.lookahead_minutes must not be negative")
	}
	if c.Forecast.LastDayWindow < 1 || c.Forecast.PeriodWindow < 1 || c.Forecast.DayOfWeekWindow < 1 {
		return errors.New("forecast windows must be positive")
	}
	if c.Display.DaysBack < 1 || c.Display.MinutesAhead < 0 {
		return errors.New("display.days_back must be positive and display.minutes_ahead not negative")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.RefreshCron); err != nil {
		return fmt.Errorf("schedule.refresh_cron: %w", err)
	}
	if _, err := parser.Parse(c.Schedule.ReportCron); err != nil {
		return fmt.Errorf("schedule.report_cron: %w", err)
	}
	return nil
}
