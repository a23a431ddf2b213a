package calculator

import (
	"errors"
	"math"

	"Farjax/internal/model"
)

// CalculateRange scans candles and returns the highest high and lowest low.
// Candles without prices are skipped.
func CalculateRange(candles []model.Candle) (high, low float64, err error) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := range candles {
		c := &candles[i]
		if c.High.Valid && c.High.Float64 > high {
			high = c.High.Float64
		}
		if c.Low.Valid && c.Low.Float64 < low {
			low = c.Low.Float64
		}
	}
	if math.IsInf(high, -1) || math.IsInf(low, 1) {
		return 0, 0, errors.New("no priced candles provided")
	}
	return high, low, nil
}

// CalculateChartDomain widens a price range to whole dollars for a chart axis.
func CalculateChartDomain(candles []model.Candle) (lo, hi float64, err error) {
	high, low, err := CalculateRange(candles)
	if err != nil {
		return 0, 0, err
	}
	return math.Floor(low), math.Ceil(high), nil
}
