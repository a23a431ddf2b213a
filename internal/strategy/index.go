package strategy

import (
	"sort"

	"Farjax/internal/markethours"
	"Farjax/internal/model"
)

type dayKey struct {
	date string
	seq  int
}

type weekdayKey struct {
	timeOfDay string
	dayOfWeek string
}

// index answers the engine's lookups without rescanning the series.
// Time-of-day lists hold positions into candles, oldest first, and only candles with a close.
type index struct {
	candles       []model.Candle
	byDay         map[dayKey]int
	byTime        map[string][]int
	byTimeWeekday map[weekdayKey][]int
}

func newIndex(candles []model.Candle) *index {
	idx := &index{
		candles:       candles,
		byDay:         make(map[dayKey]int, len(candles)),
		byTime:        make(map[string][]int),
		byTimeWeekday: make(map[weekdayKey][]int),
	}

	order := make([]int, len(candles))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return candles[order[a]].Timestamp.Before(candles[order[b]].Timestamp)
	})

	for _, i := range order {
		c := &candles[i]
		idx.byDay[dayKey{c.SessionDate, c.SequenceIndex}] = i
		if !c.HasClose() {
			continue
		}
		idx.byTime[c.TimeOfDay] = append(idx.byTime[c.TimeOfDay], i)
		wk := weekdayKey{c.TimeOfDay, c.DayOfWeek}
		idx.byTimeWeekday[wk] = append(idx.byTimeWeekday[wk], i)
	}
	return idx
}

// sameDay returns the candle at seq on date.
func (idx *index) sameDay(date string, seq int) (*model.Candle, bool) {
	i, ok := idx.byDay[dayKey{date, seq}]
	if !ok {
		return nil, false
	}
	return &idx.candles[i], true
}

// anchor returns the latest candle before c on the same day with a known close.
func (idx *index) anchor(c *model.Candle) (*model.Candle, bool) {
	first := c.SequenceIndex - c.SequenceIndex%markethours.SlotsPerDayStride
	for seq := c.SequenceIndex - 1; seq >= first; seq-- {
		if p, ok := idx.sameDay(c.SessionDate, seq); ok && p.HasClose() {
			return p, true
		}
	}
	return nil, false
}

// historic returns up to limit closed candles at c's time of day that precede c, newest first.
// keep, when non-nil, filters candidates before they count against limit.
func (idx *index) historic(c *model.Candle, sameWeekday bool, limit int, keep func(*model.Candle) bool) []*model.Candle {
	var list []int
	if sameWeekday {
		list = idx.byTimeWeekday[weekdayKey{c.TimeOfDay, c.DayOfWeek}]
	} else {
		list = idx.byTime[c.TimeOfDay]
	}
	end := sort.Search(len(list), func(k int) bool {
		return !idx.candles[list[k]].Timestamp.Before(c.Timestamp)
	})

	var out []*model.Candle
	for k := end - 1; k >= 0 && len(out) < limit; k-- {
		h := &idx.candles[list[k]]
		if keep != nil && !keep(h) {
			continue
		}
		out = append(out, h)
	}
	return out
}
