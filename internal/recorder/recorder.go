package recorder

import (
	"time"

	"Farjax/internal/model"
)

// RefreshRun is one pipeline execution as seen by the scheduler.
type RefreshRun struct {
	Symbol    string
	StartedAt time.Time
	Duration  time.Duration
	Candles   int
	Synthetic int
	Trigger   string // "cron", "manual" or "startup"
	Err       string
}

// Recorder archives raw bars and refresh history. Computed estimates are never stored.
type Recorder interface {
	RecordBars(symbol string, candles []model.Candle) error
	LoadBars(symbol string, since time.Time) ([]model.RawBar, error)
	RecordRefresh(run *RefreshRun) error
	RecentRefreshes(limit int) ([]RefreshRun, error)
	Close() error
}
