package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"Farjax/internal/markethours"
	"Farjax/internal/model"

	"github.com/guregu/null/v6"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars []model.RawBar
	Err  error

	// Used to generate bars when Bars is nil.
	Price float64
	Now   time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol string, lookbackDays int) ([]model.RawBar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	now := m.Now
	if now.IsZero() {
		now = time.Now()
	}
	return GenerateMockBars(symbol, m.Price, now, lookbackDays), nil
}

// GenerateMockBars builds `days` sessions of deterministic bars up to now.
func GenerateMockBars(symbol string, basePrice float64, now time.Time, days int) []model.RawBar {
	if days <= 0 {
		days = 1
	}
	var bars []model.RawBar
	end := markethours.CurrentSessionEnd(now)
	for d := 0; d < days; d++ {
		for i, slot := range markethours.Slots(end) {
			if slot.After(now) {
				break
			}
			drift := float64(d)*0.37 + float64(i)*0.01
			p := basePrice + math.Sin(float64(i)/6)*1.5 - drift
			bars = append(bars, model.RawBar{
				Name:   symbol,
				Date:   slot.Format(time.RFC3339),
				Open:   round(p - 0.05),
				High:   round(p + 0.2),
				Low:    round(p - 0.2),
				Close:  round(p),
				Volume: float64(1000000 + i*1000),
			})
		}
		end = markethours.PriorSessionEnd(end)
	}
	return bars
}

func round(v float64) float64 { return math.Round(v*100) / 100 }

// Collector orchestrates bar fetching, normalization and session gap-filling.
type Collector struct {
	Fetcher      Fetcher
	Archive      Archive
	Symbol       string
	LookbackDays int
	LookAhead    time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, lookbackDays int, lookAhead time.Duration) *Collector {
	return &Collector{
		Fetcher:      fetcher,
		Symbol:       symbol,
		LookbackDays: lookbackDays,
		LookAhead:    lookAhead,
	}
}

// Collect fetches bars and returns the gap-filled series, newest first.
func (c *Collector) Collect(ctx context.Context, now time.Time) ([]model.Candle, error) {
	raw, err := c.Fetcher.FetchBars(ctx, c.Symbol, c.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}

	if c.Archive != nil {
		fetched := NormalizeBars(c.Symbol, raw)
		if err := c.Archive.RecordBars(c.Symbol, fetched); err != nil {
			log.Printf("[WARN] archive bars: %v", err)
		}
		since := markethours.CurrentSessionEnd(now).AddDate(0, 0, -c.LookbackDays)
		archived, err := c.Archive.LoadBars(c.Symbol, since)
		if err != nil {
			log.Printf("[WARN] load archived bars: %v", err)
		} else {
			// fetched rows come last so they win over archived ones
			merged := make([]model.RawBar, 0, len(archived)+len(raw))
			raw = append(append(merged, archived...), raw...)
		}
	}

	candles := DropUnclosed(NormalizeBars(c.Symbol, raw), now)
	return Synthesize(candles, markethours.CurrentSessionEnd(now), now, c.LookAhead), nil
}

// DropUnclosed removes bars stamped after now. Such a bar is still forming, so its
// price is not a close; Synthesize puts a placeholder in its slot instead.
func DropUnclosed(candles []model.Candle, now time.Time) []model.Candle {
	out := make([]model.Candle, 0, len(candles))
	for _, c := range candles {
		if c.Timestamp.After(now) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// NormalizeBars converts upstream rows into candles sorted oldest first.
// Rows with an unparseable date or outside the session are dropped; unparseable prices become absent.
// When two rows share a timestamp the later row wins.
func NormalizeBars(symbol string, raw []model.RawBar) []model.Candle {
	byTime := make(map[int64]model.Candle, len(raw))
	var badDate, offSession int
	for _, r := range raw {
		ts, err := parseDate(r.Date)
		if err != nil {
			badDate++
			continue
		}
		if markethours.SlotIndex(ts) < 0 {
			offSession++
			continue
		}
		name := r.Name
		if name == "" {
			name = symbol
		}
		c := NewCandle(strings.ToUpper(name), ts)
		c.Open = toNullFloat(r.Open)
		c.High = toNullFloat(r.High)
		c.Low = toNullFloat(r.Low)
		c.Close = toNullFloat(r.Close)
		if v, ok := toFloat(r.Volume); ok {
			c.Volume = v
		}
		byTime[ts.Unix()] = c
	}
	if badDate > 0 {
		log.Printf("[WARN] dropped %d bars with unparseable dates", badDate)
	}
	if offSession > 0 {
		log.Printf("[INFO] skipped %d bars outside session hours", offSession)
	}

	candles := make([]model.Candle, 0, len(byTime))
	for _, c := range byTime {
		candles = append(candles, c)
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Timestamp.Before(candles[j].Timestamp) })
	return candles
}

// NewCandle returns an empty candle at ts with every derived time field set.
func NewCandle(symbol string, ts time.Time) model.Candle {
	ts = ts.In(markethours.ET)
	p := markethours.Project(ts)
	return model.Candle{
		Symbol:        symbol,
		Timestamp:     ts,
		SessionDate:   p.SessionDate,
		TimeOfDay:     p.TimeOfDay,
		WeekOfYear:    p.WeekOfYear,
		DayOfWeek:     p.DayOfWeek,
		SequenceIndex: markethours.SequenceIndex(ts),
	}
}

var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseDate accepts RFC 3339 or zone-less ISO-like stamps; zone-less stamps are exchange time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(markethours.ET), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, markethours.ET); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toNullFloat(v interface{}) null.Float {
	f, ok := toFloat(v)
	return null.NewFloat(f, ok)
}
