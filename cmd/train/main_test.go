package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loadpilot/loadpilot/pkg/storage/storagemock"
	"github.com/loadpilot/loadpilot/pkg/types"
)

func mockHistory() []types.HistoricalRecord {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var recs []types.HistoricalRecord
	for i := 0; i < 3*24; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		occ := 1 + (i % 4)
		price := 0.25
		if h := ts.Hour(); (h >= 7 && h <= 10) || (h >= 18 && h <= 22) {
			price = 0.65
		}
		loads := make(map[types.Appliance]float64, len(types.Appliances))
		for j, app := range types.Appliances {
			loads[app] = 0.1 + 0.05*float64(j) + 0.1*float64(occ)
		}
		recs = append(recs, types.HistoricalRecord{
			TS:                 ts,
			Occupancy:          occ,
			PriceDollarsPerKWH: price,
			LoadKW:             loads,
		})
	}
	return recs
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes 24 Forecast Rows", func(t *testing.T) {
		history := mockHistory()
		lastTS := history[len(history)-1].TS

		var rows []types.ForecastRow
		mockS := &storagemock.MockStore{}
		mockS.On("LoadHistory", mock.Anything).Return(history, nil)
		mockS.On("WriteForecast", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			rows = args.Get(1).([]types.ForecastRow)
		}).Return(nil)

		require.NoError(t, run(ctx, mockS, "default", 24, 1.0, 42))

		mockS.AssertCalled(t, "LoadHistory", mock.Anything)
		require.Len(t, rows, 24)
		assert.True(t, rows[0].TS.Equal(lastTS.Add(time.Hour)), "forecast starts one hour after history ends")
	})

	t.Run("History Error Propagates", func(t *testing.T) {
		mockS := &storagemock.MockStore{}
		mockS.On("LoadHistory", mock.Anything).Return(nil, types.NewDataError("no rows"))

		err := run(ctx, mockS, "default", 24, 1.0, 42)
		require.Error(t, err)
		var de *types.DataError
		assert.ErrorAs(t, err, &de)
		mockS.AssertNotCalled(t, "WriteForecast", mock.Anything, mock.Anything)
	})

	t.Run("Unknown Profile Fails Before Loading", func(t *testing.T) {
		mockS := &storagemock.MockStore{}

		err := run(ctx, mockS, "aggressive", 24, 1.0, 42)
		require.Error(t, err)
		var ce *types.ConfigError
		assert.ErrorAs(t, err, &ce)
		mockS.AssertNotCalled(t, "LoadHistory", mock.Anything)
	})
}
