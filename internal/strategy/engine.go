package strategy

import (
	"fmt"

	"Farjax/internal/calculator"
	"Farjax/internal/markethours"
	"Farjax/internal/model"

	"github.com/guregu/null/v6"
)

// Params sets how many historic pairs each base strategy averages.
type Params struct {
	LastDayWindow   int
	PeriodWindow    int
	DayOfWeekWindow int
}

// DefaultParams returns the standard windows.
func DefaultParams() Params {
	return Params{
		LastDayWindow:   1,
		PeriodWindow:    50,
		DayOfWeekWindow: 50,
	}
}

// window returns the pair limit for s and whether candidates must share the weekday.
func (p Params) window(s model.Strategy) (int, bool) {
	switch s {
	case model.StrategyLastTradingDay:
		return p.LastDayWindow, false
	case model.StrategyPeriodAverage:
		return p.PeriodWindow, false
	case model.StrategyDayOfWeekAverage:
		return p.DayOfWeekWindow, true
	default:
		return 0, false
	}
}

// Estimate returns a copy of candles with every strategy's estimate attached and scored.
// Input order is preserved and OHLCV values are never touched.
// A strategy that cannot estimate a candle leaves it without an entry.
func Estimate(candles []model.Candle, p Params) []model.Candle {
	idx := newIndex(candles)
	out := make([]model.Candle, len(candles))

	for i := range candles {
		c := candles[i]
		c.Aggregates = nil
		estimates := make(map[model.Strategy]*model.Estimate, len(model.AllStrategies))
		for _, s := range model.BaseStrategies {
			if e := idx.estimate(&candles[i], s, p); e != nil {
				Score(e, c.Close)
				estimates[s] = e
			}
		}
		if e := overall(estimates); e != nil {
			Score(e, c.Close)
			estimates[model.StrategyOverall] = e
		}
		c.Estimates = nil
		if len(estimates) > 0 {
			c.Estimates = estimates
		}
		out[i] = c
	}
	return out
}

// estimate runs the paired-delta algorithm for one candle and one base strategy.
func (idx *index) estimate(c *model.Candle, s model.Strategy, p Params) *model.Estimate {
	limit, sameWeekday := p.window(s)
	if limit <= 0 {
		return nil
	}
	if c.TimeOfDay == markethours.OpeningTime {
		return idx.estimateOpening(c, sameWeekday, limit)
	}

	prev, ok := idx.sameDay(c.SessionDate, c.SequenceIndex-1)
	if !ok {
		return nil
	}
	anchor := prev
	if prev.Synthetic || !prev.HasClose() {
		if anchor, ok = idx.anchor(c); !ok {
			return nil
		}
	}
	offset := c.SequenceIndex - anchor.SequenceIndex

	hist := idx.historic(c, sameWeekday, limit, nil)
	if len(hist) == 0 {
		return nil
	}

	var sum float64
	for _, h := range hist {
		// a missing pair counts as a zero delta
		if paired, ok := idx.sameDay(h.SessionDate, h.SequenceIndex-offset); ok && paired.HasClose() {
			sum += calculator.Round2(h.Close.Float64 - paired.Close.Float64)
		}
	}
	avg := calculator.Round2(sum / float64(len(hist)))
	base := anchor.Close.Float64

	return &model.Estimate{
		EstimatedClose: calculator.Round2(base + avg),
		AverageDelta:   avg,
		Pairs:          len(hist),
		Detail: describe(hist, fmt.Sprintf("%s-%s", anchor.TimeOfDay, c.TimeOfDay), avg,
			fmt.Sprintf("%s close %.2f", anchor.TimeOfDay, base)),
	}
}

// estimateOpening anchors the first slot of a session to its own open.
func (idx *index) estimateOpening(c *model.Candle, sameWeekday bool, limit int) *model.Estimate {
	if !c.Open.Valid || !c.HasClose() {
		return nil
	}
	hist := idx.historic(c, sameWeekday, limit, func(h *model.Candle) bool { return h.Open.Valid })
	if len(hist) == 0 {
		return nil
	}

	var sum float64
	for _, h := range hist {
		sum += calculator.Round2(h.Close.Float64 - h.Open.Float64)
	}
	avg := calculator.Round2(sum / float64(len(hist)))
	base := c.Open.Float64

	return &model.Estimate{
		EstimatedClose: calculator.Round2(base + avg),
		AverageDelta:   avg,
		Pairs:          len(hist),
		Detail: describe(hist, "open-"+c.TimeOfDay, avg,
			fmt.Sprintf("%s open %.2f", c.TimeOfDay, base)),
	}
}

// describe renders the derivation trace, e.g.
// "2026-10-15 09:35-09:40: 1 pair, avg delta +0.10 on 09:35 close 400.00".
func describe(hist []*model.Candle, span string, avg float64, base string) string {
	newest := hist[0].SessionDate
	oldest := hist[len(hist)-1].SessionDate
	days := newest
	if oldest != newest {
		days = oldest + ".." + newest
	}
	unit := "pairs"
	if len(hist) == 1 {
		unit = "pair"
	}
	return fmt.Sprintf("%s %s: %d %s, avg delta %+.2f on %s", days, span, len(hist), unit, avg, base)
}

// overall averages whichever base estimates are present.
func overall(estimates map[model.Strategy]*model.Estimate) *model.Estimate {
	closes := make([]null.Float, 0, len(model.BaseStrategies))
	deltas := make([]null.Float, 0, len(model.BaseStrategies))
	pairs := 0
	for _, s := range model.BaseStrategies {
		e, ok := estimates[s]
		if !ok {
			continue
		}
		closes = append(closes, null.FloatFrom(e.EstimatedClose))
		deltas = append(deltas, null.FloatFrom(e.AverageDelta))
		pairs += e.Pairs
	}
	mean, n, err := calculator.CalculatePresentMean(closes)
	if err != nil {
		return nil
	}
	avgDelta, _, _ := calculator.CalculatePresentMean(deltas)

	unit := "strategies"
	if n == 1 {
		unit = "strategy"
	}
	return &model.Estimate{
		EstimatedClose: calculator.Round2(mean),
		AverageDelta:   calculator.Round2(avgDelta),
		Pairs:          pairs,
		Detail:         fmt.Sprintf("mean of %d %s", n, unit),
	}
}
