package calculator

import (
	"errors"

	"github.com/guregu/null/v6"
)

// CalculateMean returns the arithmetic mean of values.
func CalculateMean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no values to average")
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// CalculatePresentMean averages only the valid values; absent ones are skipped, not counted as zero.
func CalculatePresentMean(values []null.Float) (mean float64, n int, err error) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			present = append(present, v.Float64)
		}
	}
	mean, err = CalculateMean(present)
	return mean, len(present), err
}
