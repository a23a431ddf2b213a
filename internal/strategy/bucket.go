package strategy

import (
	"math"

	"Farjax/internal/calculator"
	"Farjax/internal/model"

	"github.com/guregu/null/v6"
)

// Buckets maps an absolute dollar error to its accuracy tier, tightest first.
var Buckets = []struct {
	MaxError float64
	Bucket   model.Bucket
}{
	{0.25, model.BucketAccurateNarrow},
	{0.5, model.BucketAccurateWide},
	{1.0, model.BucketInaccurateNarrow},
}

// DefaultBucket is the tier for errors above 1.00.
const DefaultBucket = model.BucketInaccurateWide

// Classify maps a signed accuracy to its bucket by absolute value.
func Classify(accuracy float64) model.Bucket {
	abs := math.Abs(accuracy)
	for _, b := range Buckets {
		if abs <= b.MaxError {
			return b.Bucket
		}
	}
	return DefaultBucket
}

// IsHit reports whether a bucket implies at most 0.50 of error.
func IsHit(b model.Bucket) bool {
	return b == model.BucketAccurateNarrow || b == model.BucketAccurateWide
}

// IsNarrowHit reports whether a bucket implies at most 0.25 of error.
func IsNarrowHit(b model.Bucket) bool {
	return b == model.BucketAccurateNarrow
}

// Score fills accuracy and bucket once the candle's close is known.
// Positive accuracy means the estimate undershot.
func Score(e *model.Estimate, actual null.Float) {
	if !actual.Valid {
		e.Accuracy = null.Float{}
		e.Bucket = ""
		return
	}
	acc := calculator.Round2(actual.Float64 - e.EstimatedClose)
	e.Accuracy = null.FloatFrom(acc)
	e.Bucket = Classify(acc)
}
