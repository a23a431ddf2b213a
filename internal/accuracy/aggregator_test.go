package accuracy

import (
	"fmt"
	"testing"
	"time"

	"Farjax/internal/markethours"
	"Farjax/internal/model"
	"Farjax/internal/strategy"

	"github.com/guregu/null/v6"
)

func scored(day int, hhmm string, accuracy ...float64) model.Candle {
	ts, err := time.ParseInLocation("2006-01-02 15:04", fmt.Sprintf("2026-10-%02d %s", day, hhmm), markethours.ET)
	if err != nil {
		panic(err)
	}
	p := markethours.Project(ts)
	c := model.Candle{
		Timestamp:     ts,
		SessionDate:   p.SessionDate,
		TimeOfDay:     p.TimeOfDay,
		WeekOfYear:    p.WeekOfYear,
		DayOfWeek:     p.DayOfWeek,
		SequenceIndex: markethours.SequenceIndex(ts),
		Close:         null.FloatFrom(100),
	}
	if len(accuracy) > 0 {
		c.Estimates = map[model.Strategy]*model.Estimate{
			model.StrategyLastTradingDay: {
				Accuracy: null.FloatFrom(accuracy[0]),
				Bucket:   strategy.Classify(accuracy[0]),
			},
		}
	}
	return c
}

func synthetic(day int, hhmm string) model.Candle {
	c := scored(day, hhmm)
	c.Close = null.Float{}
	c.Synthetic = true
	return c
}

func TestAggregate_Daily(t *testing.T) {
	candles := []model.Candle{
		synthetic(16, "09:50"),
		scored(16, "09:45", -0.80),
		scored(16, "09:40", 0.40),
		scored(16, "09:35", 0.10),
	}
	out := Aggregate(candles)

	tests := []struct {
		idx    int
		scope  int
		rate   string
		narrow string
	}{
		{3, 1, "100.0%", "100.0%"},
		{2, 2, "100.0%", "50.0%"},
		{1, 3, "66.7%", "33.3%"},
		{0, 3, "66.7%", "33.3%"},
	}
	for _, tt := range tests {
		a := out[tt.idx].Aggregate(model.StrategyLastTradingDay)
		if a == nil {
			t.Fatalf("candle %d: expected aggregate", tt.idx)
		}
		if a.DailyScope != tt.scope {
			t.Errorf("candle %d: expected scope %d, got %d", tt.idx, tt.scope, a.DailyScope)
		}
		if a.DailyHitRate.String != tt.rate || a.DailyHitRateNarrow.String != tt.narrow {
			t.Errorf("candle %d: expected %s/%s, got %s/%s", tt.idx, tt.rate, tt.narrow,
				a.DailyHitRate.String, a.DailyHitRateNarrow.String)
		}
	}

	// a strategy with no scored candles still has a scope, so it reads 0%
	if a := out[1].Aggregate(model.StrategyPeriodAverage); a == nil || a.DailyHitRate.String != "0.0%" {
		t.Errorf("expected 0.0%% for unscored strategy, got %+v", a)
	}
}

func TestAggregate_WeeklySpansDays(t *testing.T) {
	candles := []model.Candle{
		scored(16, "09:35", 0.90),
		scored(15, "15:55", 0.20),
		scored(15, "16:00", 0.30),
		scored(9, "09:35", 0.10), // previous ISO week
	}
	out := Aggregate(candles)

	a := out[0].Aggregate(model.StrategyLastTradingDay)
	if a == nil {
		t.Fatal("expected aggregate")
	}
	if a.DailyScope != 1 || a.DailyHitRate.String != "0.0%" {
		t.Errorf("expected daily 0.0%% over 1, got %s over %d", a.DailyHitRate.String, a.DailyScope)
	}
	if a.WeeklyScope != 3 || a.WeeklyHitRate.String != "66.7%" || a.WeeklyHitRateNarrow.String != "33.3%" {
		t.Errorf("expected weekly 66.7%%/33.3%% over 3, got %s/%s over %d",
			a.WeeklyHitRate.String, a.WeeklyHitRateNarrow.String, a.WeeklyScope)
	}

	if a := out[3].Aggregate(model.StrategyLastTradingDay); a == nil || a.WeeklyScope != 1 {
		t.Errorf("expected the earlier week to stand alone, got %+v", a)
	}
}

func TestAggregate_EmptyScope(t *testing.T) {
	candles := []model.Candle{
		synthetic(16, "09:40"),
		synthetic(16, "09:35"),
	}
	out := Aggregate(candles)
	for i, c := range out {
		if c.Aggregates != nil {
			t.Errorf("candle %d: expected no aggregates for an empty scope, got %v", i, c.Aggregates)
		}
	}
}

func TestAggregate_DailyAbsentWhenOnlyWeekHasData(t *testing.T) {
	candles := []model.Candle{
		synthetic(16, "09:35"),
		scored(15, "16:00", 0.10),
	}
	out := Aggregate(candles)
	a := out[0].Aggregate(model.StrategyLastTradingDay)
	if a == nil {
		t.Fatal("expected weekly aggregate")
	}
	if a.DailyHitRate.Valid || a.DailyScope != 0 {
		t.Errorf("expected absent daily rate, got %+v", a.DailyHitRate)
	}
	if a.WeeklyHitRate.String != "100.0%" {
		t.Errorf("expected weekly 100.0%%, got %s", a.WeeklyHitRate.String)
	}
}
