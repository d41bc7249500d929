package attribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadpilot/loadpilot/pkg/types"
)

func TestExplain(t *testing.T) {
	profile := types.DefaultProfile // k1=5.5, k2=0.7, k3=0.4, k4=0.9

	t.Run("Known Ranking", func(t *testing.T) {
		res := Explain(0.6, 2.0, 4, true, profile)
		require.Len(t, res, 4)

		assert.Equal(t, LabelPrice, res[0].Label)
		assert.InDelta(t, 3.3, res[0].Weight, 1e-9)

		assert.Equal(t, LabelDemand, res[1].Label)
		assert.InDelta(t, 2.0/0.7, res[1].Weight, 1e-9)

		assert.Equal(t, LabelOccupancy, res[2].Label)
		assert.InDelta(t, 1.6, res[2].Weight, 1e-9)

		assert.Equal(t, LabelMeal, res[3].Label)
		assert.InDelta(t, 0.9, res[3].Weight, 1e-9)

		top, ok := res.Primary()
		require.True(t, ok)
		assert.Equal(t, LabelPrice, top.Label)
	})

	t.Run("Demand Driven", func(t *testing.T) {
		res := Explain(0.1, 3.5, 1, false, profile)
		top, ok := res.Primary()
		require.True(t, ok)
		assert.Equal(t, LabelDemand, top.Label)
	})

	t.Run("Meal Time Off Zeroes The Term", func(t *testing.T) {
		res := Explain(0.1, 0.5, 0, false, profile)
		for _, fw := range res {
			if fw.Label == LabelMeal {
				assert.Zero(t, fw.Weight)
			}
		}
	})

	t.Run("Dashboard Profile Constants", func(t *testing.T) {
		res := Explain(0.6, 2.0, 4, true, types.DashboardProfile)
		byLabel := map[string]float64{}
		for _, fw := range res {
			byLabel[fw.Label] = fw.Weight
		}
		assert.InDelta(t, 1.8, byLabel[LabelPrice], 1e-9)
		assert.InDelta(t, 2.0/1.5, byLabel[LabelDemand], 1e-9)
		assert.InDelta(t, 1.6, byLabel[LabelOccupancy], 1e-9)
		assert.InDelta(t, 1.2, byLabel[LabelMeal], 1e-9)
	})
}

func TestExplainRow(t *testing.T) {
	row := types.ForecastRow{
		TS:                 time.Date(2025, 6, 16, 19, 0, 0, 0, time.UTC),
		Hour:               19,
		Occupancy:          4,
		PriceDollarsPerKWH: 0.6,
		TotalLoadKW:        2.0,
		MealTime:           true,
	}
	res := ExplainRow(row, types.DefaultProfile)
	top, ok := res.Primary()
	require.True(t, ok)
	assert.Equal(t, LabelPrice, top.Label)
}
