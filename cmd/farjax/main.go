package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"Farjax/internal/collector"
	"Farjax/internal/config"
	"Farjax/internal/recorder"
	"Farjax/internal/strategy"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "farjax",
	Short: "Intraday 5-minute close estimator",
	Long: `Farjax pulls 5-minute bars for one symbol, estimates the close of every
bar in the current session from historic deltas, and scores each estimate
once the real close is known.`,
	SilenceUsage: true,
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultPath, "path to the YAML config file")

	rootCmd.AddCommand(serveCmd, onceCmd, historyCmd)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 400}
	default:
		return collector.NewAPIFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	}
}

// openRecorder falls back to a no-op recorder when the database cannot be opened.
func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newCollector(cfg *config.Config, archive collector.Archive) *collector.Collector {
	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.LookbackDays,
		time.Duration(cfg.Forecast.LookAheadMinutes)*time.Minute)
	col.Archive = archive
	return col
}

func strategyParams(cfg *config.Config) strategy.Params {
	return strategy.Params{
		LastDayWindow:   cfg.Forecast.LastDayWindow,
		PeriodWindow:    cfg.Forecast.PeriodWindow,
		DayOfWeekWindow: cfg.Forecast.DayOfWeekWindow,
	}
}
