package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Round2 rounds a dollar amount to cents, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatPercent renders hits/total as a one-decimal percentage string, e.g. "66.7%".
func FormatPercent(hits, total int) (string, error) {
	if total <= 0 {
		return "", errors.New("total must be positive")
	}
	pct := decimal.NewFromInt(int64(hits)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total)))
	return pct.StringFixed(1) + "%", nil
}

// FormatDollars renders v with two decimals.
func FormatDollars(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
