package notifier

import (
	"strings"
	"testing"
	"time"

	"Farjax/internal/markethours"
	"Farjax/internal/model"

	"github.com/guregu/null/v6"
)

func sampleSnapshot() *model.Snapshot {
	closedAt := time.Date(2026, 10, 16, 15, 55, 0, 0, markethours.ET)
	return &model.Snapshot{
		Symbol:      "SPY",
		GeneratedAt: closedAt.Add(30 * time.Second),
		Candles: []model.Candle{
			{
				Timestamp:   closedAt.Add(5 * time.Minute),
				SessionDate: "2026-10-16",
				TimeOfDay:   "16:00",
				Synthetic:   true,
				Estimates: map[model.Strategy]*model.Estimate{
					model.StrategyOverall: {EstimatedClose: 400.25, Detail: "mean of 2 strategies"},
				},
			},
			{
				Timestamp:   closedAt,
				SessionDate: "2026-10-16",
				TimeOfDay:   "15:55",
				Close:       null.FloatFrom(400.1),
				Aggregates: map[model.Strategy]*model.Aggregate{
					model.StrategyOverall: {
						DailyScope:          77,
						DailyHitRate:        null.StringFrom("66.2%"),
						DailyHitRateNarrow:  null.StringFrom("40.3%"),
						WeeklyScope:         389,
						WeeklyHitRate:       null.StringFrom("61.0%"),
						WeeklyHitRateNarrow: null.StringFrom("35.5%"),
					},
				},
			},
		},
	}
}

func TestFormatAccuracyReport(t *testing.T) {
	msg := FormatAccuracyReport(sampleSnapshot())
	for _, want := range []string{"SPY accuracy", "As of 15:55 close 400.10", "66.2% (narrow 40.3%) over 77", "Last TD: n/a"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in report:\n%s", want, msg)
		}
	}
}

func TestFormatNextEstimate(t *testing.T) {
	msg := FormatNextEstimate(sampleSnapshot())
	if !strings.Contains(msg, "2026-10-16 16:00") {
		t.Errorf("expected next slot in message:\n%s", msg)
	}
	if !strings.Contains(msg, "Overall: <b>400.25</b>") {
		t.Errorf("expected overall estimate in message:\n%s", msg)
	}

	done := sampleSnapshot()
	done.Candles = done.Candles[1:]
	if msg := FormatNextEstimate(done); !strings.Contains(msg, "Session complete") {
		t.Errorf("expected session complete, got:\n%s", msg)
	}
}

func TestFormatNilSnapshot(t *testing.T) {
	if msg := FormatAccuracyReport(nil); !strings.Contains(msg, "No data yet") {
		t.Errorf("unexpected message: %s", msg)
	}
	if msg := FormatNextEstimate(nil); !strings.Contains(msg, "No data yet") {
		t.Errorf("unexpected message: %s", msg)
	}
}
