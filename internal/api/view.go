package api

import (
	"time"

	"Farjax/internal/calculator"
	"Farjax/internal/markethours"
	"Farjax/internal/model"
)

// Table window around now, as shown next to the chart.
const (
	tableBehind = 10 * time.Minute
	tableAhead  = 5 * time.Minute
)

// ViewParams are the presentation filters applied to a snapshot.
type ViewParams struct {
	DaysBack     int
	MinutesAhead int
}

// ReferenceTimes mark where real data ends on the chart.
type ReferenceTimes struct {
	Now  time.Time `json:"now"`
	Last string    `json:"last,omitempty"`
	Next string    `json:"next,omitempty"`
}

// View is a filtered snapshot ready for rendering.
type View struct {
	Symbol          string         `json:"symbol"`
	GeneratedAt     time.Time      `json:"generated_at"`
	SessionEnd      time.Time      `json:"session_end"`
	PastTradingDays int            `json:"past_trading_days"`
	Reference       ReferenceTimes `json:"reference"`
	PriceLow        float64        `json:"price_low"`
	PriceHigh       float64        `json:"price_high"`
	Candles         []model.Candle `json:"candles"` // oldest first
	Table           []model.Candle `json:"table"`   // newest first
}

// BuildView keeps the candles after sessionEnd-DaysBack and up to now+MinutesAhead.
// It never changes the candles themselves.
func BuildView(snap *model.Snapshot, now time.Time, p ViewParams) View {
	from := snap.SessionEnd.AddDate(0, 0, -p.DaysBack)
	to := now.Add(time.Duration(p.MinutesAhead) * time.Minute)

	v := View{
		Symbol:          snap.Symbol,
		GeneratedAt:     snap.GeneratedAt,
		SessionEnd:      snap.SessionEnd,
		PastTradingDays: (len(snap.Candles) + markethours.SlotsPerSession - 1) / markethours.SlotsPerSession,
		Reference:       ReferenceTimes{Now: now},
		Candles:         []model.Candle{},
		Table:           []model.Candle{},
	}

	// snapshot candles are newest first
	for i := len(snap.Candles) - 1; i >= 0; i-- {
		c := snap.Candles[i]
		if c.Timestamp.After(from) && !c.Timestamp.After(to) {
			v.Candles = append(v.Candles, c)
		}
	}
	for _, c := range snap.Candles {
		if c.Timestamp.After(now.Add(-tableBehind)) && !c.Timestamp.After(now.Add(tableAhead)) {
			v.Table = append(v.Table, c)
		}
	}

	for i := range v.Candles {
		if !v.Candles[i].HasClose() {
			v.Reference.Next = v.Candles[i].TimeOfDay
			if i > 0 {
				v.Reference.Last = v.Candles[i-1].TimeOfDay
			}
			break
		}
	}

	// y-axis domain; left at zero when nothing in range has traded
	if lo, hi, err := calculator.CalculateChartDomain(v.Candles); err == nil {
		v.PriceLow, v.PriceHigh = lo, hi
	}
	return v
}
