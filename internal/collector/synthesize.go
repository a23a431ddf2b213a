package collector

import (
	"sort"
	"time"

	"Farjax/internal/markethours"
	"Farjax/internal/model"
)

// Synthesize fills every slot of the session ending at sessionEnd that has no candle yet,
// up to now+lookAhead, with a placeholder. Later slots are left out entirely.
// The input is not modified; the result is sorted newest first.
func Synthesize(candles []model.Candle, sessionEnd, now time.Time, lookAhead time.Duration) []model.Candle {
	existing := make(map[int64]bool, len(candles))
	out := make([]model.Candle, len(candles), len(candles)+markethours.SlotsPerSession)
	copy(out, candles)
	symbol := ""
	for i := range candles {
		existing[candles[i].Timestamp.Unix()] = true
		if symbol == "" {
			symbol = candles[i].Symbol
		}
	}

	limit := now.Add(lookAhead)
	for _, slot := range markethours.Slots(sessionEnd) {
		if slot.After(limit) {
			continue
		}
		if existing[slot.Unix()] {
			continue
		}
		c := NewCandle(symbol, slot)
		c.Synthetic = true
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}
