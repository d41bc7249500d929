// Package features builds regression feature vectors from raw household
// signals.
package features

import (
	"math"
	"time"

	"github.com/loadpilot/loadpilot/pkg/types"
)

// Build derives the feature vector for a single hour. It is pure and total:
// any valid timestamp produces a vector. Occupancy and price are passed
// through unvalidated; generating physically plausible values is the
// caller's job.
func Build(ts time.Time, occupancy int, priceDollarsPerKWH float64) types.FeatureVector {
	hour := float64(ts.Hour())
	angle := 2 * math.Pi * hour / 24
	return types.FeatureVector{
		HourSin:            math.Sin(angle),
		HourCos:            math.Cos(angle),
		Occupancy:          float64(occupancy),
		PriceDollarsPerKWH: priceDollarsPerKWH,
	}
}
