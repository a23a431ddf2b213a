package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// RawBar is one row as returned by the upstream data source.
// Numeric fields stay untyped so a malformed value can be detected per field.
type RawBar struct {
	Name   string      `json:"name"`
	Date   string      `json:"date"`
	Open   interface{} `json:"open"`
	High   interface{} `json:"high"`
	Low    interface{} `json:"low"`
	Close  interface{} `json:"close"`
	Volume interface{} `json:"volume"`
}

// Candle is a single 5-minute bar plus everything derived from it.
type Candle struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`

	// String projections of Timestamp, compared instead of doing date math.
	SessionDate string `json:"session_date"`
	TimeOfDay   string `json:"time_of_day"`
	WeekOfYear  string `json:"week_of_year"`
	DayOfWeek   string `json:"day_of_week"`

	// SequenceIndex = slot index + 90 * weekday.
	SequenceIndex int `json:"sequence_index"`

	Open   null.Float `json:"open"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Close  null.Float `json:"close"`
	Volume float64    `json:"volume"`

	Synthetic bool `json:"synthetic"`

	Estimates  map[Strategy]*Estimate  `json:"estimates,omitempty"`
	Aggregates map[Strategy]*Aggregate `json:"aggregates,omitempty"`
}

// HasClose reports whether the bar has closed with a usable price.
func (c *Candle) HasClose() bool { return c.Close.Valid }

// Estimate returns the estimate for s, or nil when none was produced.
func (c *Candle) Estimate(s Strategy) *Estimate {
	if c.Estimates == nil {
		return nil
	}
	return c.Estimates[s]
}

// Aggregate returns the accuracy rollup for s, or nil when its scope was empty.
func (c *Candle) Aggregate(s Strategy) *Aggregate {
	if c.Aggregates == nil {
		return nil
	}
	return c.Aggregates[s]
}

// Snapshot is one fully annotated series, newest candle first.
type Snapshot struct {
	Symbol      string    `json:"symbol"`
	GeneratedAt time.Time `json:"generated_at"`
	SessionEnd  time.Time `json:"session_end"`
	Candles     []Candle  `json:"candles"`
}

// LastClosed returns the newest candle with a close, or nil.
func (s *Snapshot) LastClosed() *Candle {
	for i := range s.Candles {
		if s.Candles[i].HasClose() {
			return &s.Candles[i]
		}
	}
	return nil
}

// Next returns the slot right after the newest closed candle, or nil when
// that candle ends the series.
func (s *Snapshot) Next() *Candle {
	for i := range s.Candles {
		if s.Candles[i].HasClose() {
			if i == 0 {
				return nil
			}
			return &s.Candles[i-1]
		}
	}
	if n := len(s.Candles); n > 0 {
		return &s.Candles[n-1]
	}
	return nil
}

// SyntheticCount returns how many placeholder candles the snapshot holds.
func (s *Snapshot) SyntheticCount() int {
	n := 0
	for i := range s.Candles {
		if s.Candles[i].Synthetic {
			n++
		}
	}
	return n
}
