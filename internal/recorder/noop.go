package recorder

import (
	"time"

	"Farjax/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBars(_ string, _ []model.Candle) error            { return nil }
func (n *NoopRecorder) LoadBars(_ string, _ time.Time) ([]model.RawBar, error) { return nil, nil }
func (n *NoopRecorder) RecordRefresh(_ *RefreshRun) error                      { return nil }
func (n *NoopRecorder) RecentRefreshes(_ int) ([]RefreshRun, error)            { return nil, nil }
func (n *NoopRecorder) Close() error                                           { return nil }
