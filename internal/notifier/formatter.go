package notifier

import (
	"fmt"
	"strings"

	"Farjax/internal/calculator"
	"Farjax/internal/markethours"
	"Farjax/internal/model"

	"github.com/guregu/null/v6"
)

const timeLayout = "15:04"

func orNA(s null.String) string {
	if !s.Valid {
		return "n/a"
	}
	return s.String
}

// FormatAccuracyReport summarizes every strategy's hit-rates as of the newest closed candle.
func FormatAccuracyReport(snap *model.Snapshot) string {
	if snap == nil {
		return "⏳ No data yet, the first refresh has not completed."
	}
	var b strings.Builder

	last := snap.LastClosed()
	if last == nil {
		b.WriteString(fmt.Sprintf("📊 <b>%s accuracy</b>\n\nNo closed candles yet.", snap.Symbol))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("📊 <b>%s accuracy</b> | %s\n\n", snap.Symbol, last.SessionDate))
	b.WriteString(fmt.Sprintf("As of %s close %s\n\n",
		last.Timestamp.In(markethours.ET).Format(timeLayout), calculator.FormatDollars(last.Close.Float64)))

	for _, s := range model.AllStrategies {
		a := last.Aggregate(s)
		if a == nil {
			b.WriteString(fmt.Sprintf("  %s: n/a\n", s.Label()))
			continue
		}
		b.WriteString(fmt.Sprintf("  <b>%s</b>\n", s.Label()))
		b.WriteString(fmt.Sprintf("    day:  %s (narrow %s) over %d\n",
			orNA(a.DailyHitRate), orNA(a.DailyHitRateNarrow), a.DailyScope))
		b.WriteString(fmt.Sprintf("    week: %s (narrow %s) over %d\n",
			orNA(a.WeeklyHitRate), orNA(a.WeeklyHitRateNarrow), a.WeeklyScope))
	}
	return b.String()
}

// FormatNextEstimate lists each strategy's estimate for the upcoming slot.
func FormatNextEstimate(snap *model.Snapshot) string {
	if snap == nil {
		return "⏳ No data yet, the first refresh has not completed."
	}
	next := snap.Next()
	if next == nil {
		return fmt.Sprintf("🔮 <b>%s</b>\n\nSession complete, no upcoming slot.", snap.Symbol)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔮 <b>%s next close</b> | %s %s\n\n", snap.Symbol, next.SessionDate, next.TimeOfDay))
	if last := snap.LastClosed(); last != nil {
		b.WriteString(fmt.Sprintf("Last close %s: %s\n\n", last.TimeOfDay, calculator.FormatDollars(last.Close.Float64)))
	}
	for _, s := range model.AllStrategies {
		e := next.Estimate(s)
		if e == nil {
			b.WriteString(fmt.Sprintf("  %s: n/a\n", s.Label()))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: <b>%s</b> (%s)\n", s.Label(), calculator.FormatDollars(e.EstimatedClose), e.Detail))
	}
	return b.String()
}

// FormatRefreshResult confirms a manual refresh.
func FormatRefreshResult(snap *model.Snapshot) string {
	return fmt.Sprintf("✅ Refreshed %s: %d candles (%d synthetic) at %s",
		snap.Symbol, len(snap.Candles), snap.SyntheticCount(),
		snap.GeneratedAt.In(markethours.ET).Format("2006-01-02 15:04:05"))
}

// FormatHelp lists the available commands.
func FormatHelp() string {
	return "Available commands:\n• /accuracy  hit-rates so far\n• /next  estimates for the upcoming slot\n• /refresh  pull fresh data now"
}
