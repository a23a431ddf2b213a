package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"Farjax/internal/markethours"
	"Farjax/internal/model"

	"github.com/guregu/null/v6"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "farjax.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_BarsRoundTrip(t *testing.T) {
	r := openTemp(t)
	ts := time.Date(2026, 10, 16, 9, 35, 0, 0, markethours.ET)

	candles := []model.Candle{
		{Timestamp: ts, Open: null.FloatFrom(400), High: null.FloatFrom(401), Low: null.FloatFrom(399), Close: null.FloatFrom(400.5), Volume: 1200},
		{Timestamp: ts.Add(5 * time.Minute), Open: null.FloatFrom(400.5)}, // close not parsed upstream
		{Timestamp: ts.Add(10 * time.Minute), Synthetic: true},
	}
	if err := r.RecordBars("SPY", candles); err != nil {
		t.Fatalf("record: %v", err)
	}

	// second write for the same slot replaces the first
	candles[0].Close = null.FloatFrom(400.75)
	if err := r.RecordBars("SPY", candles[:1]); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	bars, err := r.LoadBars("SPY", ts.Add(-time.Hour))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 real bars, got %d", len(bars))
	}
	if bars[0].Close != 400.75 {
		t.Errorf("expected upserted close 400.75, got %v", bars[0].Close)
	}
	if bars[1].Close != nil {
		t.Errorf("expected absent close to stay absent, got %v", bars[1].Close)
	}
	parsed, err := time.Parse(time.RFC3339, bars[0].Date)
	if err != nil || !parsed.Equal(ts) {
		t.Errorf("expected date %s, got %s (%v)", ts, bars[0].Date, err)
	}

	later, err := r.LoadBars("SPY", ts.Add(time.Minute))
	if err != nil {
		t.Fatalf("load since: %v", err)
	}
	if len(later) != 1 {
		t.Errorf("expected 1 bar after cutoff, got %d", len(later))
	}

	other, err := r.LoadBars("QQQ", ts.Add(-time.Hour))
	if err != nil || len(other) != 0 {
		t.Errorf("expected no bars for another symbol, got %d (%v)", len(other), err)
	}
}

func TestSQLiteRecorder_RefreshRuns(t *testing.T) {
	r := openTemp(t)
	start := time.Unix(1792158900, 0)

	runs := []*RefreshRun{
		{Symbol: "SPY", StartedAt: start, Duration: 1500 * time.Millisecond, Candles: 390, Synthetic: 12, Trigger: "cron"},
		{Symbol: "SPY", StartedAt: start.Add(time.Minute), Trigger: "manual", Err: "fetch bars: timeout"},
	}
	for _, run := range runs {
		if err := r.RecordRefresh(run); err != nil {
			t.Fatalf("record refresh: %v", err)
		}
	}

	got, err := r.RecentRefreshes(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].Trigger != "manual" || got[0].Err == "" {
		t.Errorf("expected newest run first, got %+v", got[0])
	}
	if got[1].Candles != 390 || got[1].Duration != 1500*time.Millisecond {
		t.Errorf("unexpected stored run: %+v", got[1])
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordBars("SPY", nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bars, err := r.LoadBars("SPY", time.Now())
	if err != nil || bars != nil {
		t.Errorf("expected nothing, got %v %v", bars, err)
	}
}
