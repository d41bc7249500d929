package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	t.Run("Unit Circle Invariant", func(t *testing.T) {
		for h := 0; h < 24; h++ {
			ts := time.Date(2025, 6, 15, h, 0, 0, 0, time.UTC)
			fv := Build(ts, 2, 0.25)
			assert.InDelta(t, 1.0, fv.HourSin*fv.HourSin+fv.HourCos*fv.HourCos, 1e-9, "hour %d", h)
		}
	})

	t.Run("Midnight And Hour 23 Are Adjacent", func(t *testing.T) {
		midnight := Build(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 1, 0.1)
		hour23 := Build(time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC), 1, 0.1)
		hour12 := Build(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), 1, 0.1)

		distTo23 := (midnight.HourSin-hour23.HourSin)*(midnight.HourSin-hour23.HourSin) +
			(midnight.HourCos-hour23.HourCos)*(midnight.HourCos-hour23.HourCos)
		distTo12 := (midnight.HourSin-hour12.HourSin)*(midnight.HourSin-hour12.HourSin) +
			(midnight.HourCos-hour12.HourCos)*(midnight.HourCos-hour12.HourCos)
		assert.Less(t, distTo23, distTo12)
	})

	t.Run("Known Values", func(t *testing.T) {
		// hour 6: sin = 1, cos = 0
		fv := Build(time.Date(2025, 6, 15, 6, 30, 0, 0, time.UTC), 3, 0.65)
		assert.InDelta(t, 1.0, fv.HourSin, 1e-9)
		assert.InDelta(t, 0.0, fv.HourCos, 1e-9)
		assert.Equal(t, 3.0, fv.Occupancy)
		assert.Equal(t, 0.65, fv.PriceDollarsPerKWH)
	})

	t.Run("Values Order", func(t *testing.T) {
		fv := Build(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 4, 0.25)
		assert.Equal(t, []float64{fv.HourSin, fv.HourCos, 4, 0.25}, fv.Values())
	})
}
