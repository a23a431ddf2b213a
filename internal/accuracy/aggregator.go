// Package accuracy rolls scored estimates up into daily and weekly hit-rates.
package accuracy

import (
	"sort"

	"Farjax/internal/calculator"
	"Farjax/internal/model"
	"Farjax/internal/strategy"

	"github.com/guregu/null/v6"
)

// group holds running hit counts for one session day or one week.
// Only real candles enter a group; positions are ordered by sequence index.
type group struct {
	seqs   []int
	hits   map[model.Strategy][]int
	narrow map[model.Strategy][]int
}

// count returns how many real members have a sequence index at or below seq.
func (g *group) count(seq int) int {
	return sort.SearchInts(g.seqs, seq+1)
}

func buildGroups(candles []model.Candle, key func(*model.Candle) string) map[string]*group {
	members := make(map[string][]*model.Candle)
	for i := range candles {
		c := &candles[i]
		if c.Synthetic {
			continue
		}
		k := key(c)
		members[k] = append(members[k], c)
	}

	groups := make(map[string]*group, len(members))
	for k, list := range members {
		sort.Slice(list, func(a, b int) bool { return list[a].SequenceIndex < list[b].SequenceIndex })
		g := &group{
			seqs:   make([]int, len(list)),
			hits:   make(map[model.Strategy][]int, len(model.AllStrategies)),
			narrow: make(map[model.Strategy][]int, len(model.AllStrategies)),
		}
		for i, c := range list {
			g.seqs[i] = c.SequenceIndex
		}
		for _, s := range model.AllStrategies {
			hits := make([]int, len(list)+1)
			narrow := make([]int, len(list)+1)
			for i, c := range list {
				hits[i+1], narrow[i+1] = hits[i], narrow[i]
				e := c.Estimate(s)
				if e == nil || !e.Accuracy.Valid {
					continue
				}
				if strategy.IsHit(e.Bucket) {
					hits[i+1]++
				}
				if strategy.IsNarrowHit(e.Bucket) {
					narrow[i+1]++
				}
			}
			g.hits[s] = hits
			g.narrow[s] = narrow
		}
		groups[k] = g
	}
	return groups
}

// Aggregate returns a copy of candles with per-strategy daily and weekly hit-rates.
// The scope of a candle is every real candle of its day (or ISO week) up to and including
// its own slot. A candle whose weekly scope is empty gets no aggregates at all.
// candles must already carry scored estimates.
func Aggregate(candles []model.Candle) []model.Candle {
	daily := buildGroups(candles, func(c *model.Candle) string { return c.SessionDate })
	weekly := buildGroups(candles, func(c *model.Candle) string { return c.WeekOfYear })

	out := make([]model.Candle, len(candles))
	for i := range candles {
		c := candles[i]
		c.Aggregates = nil

		dg, wg := daily[c.SessionDate], weekly[c.WeekOfYear]
		var dn, wn int
		if dg != nil {
			dn = dg.count(c.SequenceIndex)
		}
		if wg != nil {
			wn = wg.count(c.SequenceIndex)
		}
		if wn > 0 {
			c.Aggregates = make(map[model.Strategy]*model.Aggregate, len(model.AllStrategies))
			for _, s := range model.AllStrategies {
				a := &model.Aggregate{
					WeeklyScope:         wn,
					WeeklyHitRate:       rate(wg.hits[s][wn], wn),
					WeeklyHitRateNarrow: rate(wg.narrow[s][wn], wn),
				}
				if dn > 0 {
					a.DailyScope = dn
					a.DailyHitRate = rate(dg.hits[s][dn], dn)
					a.DailyHitRateNarrow = rate(dg.narrow[s][dn], dn)
				}
				c.Aggregates[s] = a
			}
		}
		out[i] = c
	}
	return out
}

func rate(hits, total int) null.String {
	pct, err := calculator.FormatPercent(hits, total)
	if err != nil {
		return null.String{}
	}
	return null.StringFrom(pct)
}
