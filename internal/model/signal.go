package model

import "github.com/guregu/null/v6"

// Strategy names one close-price estimation method.
type Strategy string

const (
	StrategyLastTradingDay   Strategy = "last_trading_day"
	StrategyPeriodAverage    Strategy = "period_average"
	StrategyDayOfWeekAverage Strategy = "day_of_week_average"
	StrategyOverall          Strategy = "overall"
)

// BaseStrategies are the independent strategies, in evaluation order.
var BaseStrategies = []Strategy{
	StrategyLastTradingDay,
	StrategyPeriodAverage,
	StrategyDayOfWeekAverage,
}

// AllStrategies includes the combined overall average.
var AllStrategies = []Strategy{
	StrategyOverall,
	StrategyLastTradingDay,
	StrategyPeriodAverage,
	StrategyDayOfWeekAverage,
}

// Label returns a short display name.
func (s Strategy) Label() string {
	switch s {
	case StrategyLastTradingDay:
		return "Last TD"
	case StrategyPeriodAverage:
		return "Average"
	case StrategyDayOfWeekAverage:
		return "DoW Avg"
	case StrategyOverall:
		return "Overall"
	default:
		return string(s)
	}
}

// Bucket is the categorical tier of an estimate's absolute error.
type Bucket string

const (
	BucketAccurateNarrow   Bucket = "accurate-narrow"
	BucketAccurateWide     Bucket = "accurate-wide"
	BucketInaccurateNarrow Bucket = "inaccurate-narrow"
	BucketInaccurateWide   Bucket = "inaccurate-wide"
)

// Estimate is one strategy's predicted close for a candle.
type Estimate struct {
	EstimatedClose float64    `json:"estimated_close"`
	AverageDelta   float64    `json:"average_delta"`
	Pairs          int        `json:"pairs"`
	Detail         string     `json:"detail"`
	Accuracy       null.Float `json:"accuracy"` // close - estimate, only once close is known
	Bucket         Bucket     `json:"bucket,omitempty"`
}

// Aggregate holds the daily and weekly hit-rates of one strategy up to a candle.
type Aggregate struct {
	DailyScope          int         `json:"daily_scope"`
	DailyHitRate        null.String `json:"daily_hit_rate"`
	DailyHitRateNarrow  null.String `json:"daily_hit_rate_narrow"`
	WeeklyScope         int         `json:"weekly_scope"`
	WeeklyHitRate       null.String `json:"weekly_hit_rate"`
	WeeklyHitRateNarrow null.String `json:"weekly_hit_rate_narrow"`
}
