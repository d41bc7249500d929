package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadpilot/loadpilot/pkg/types"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Full Columns", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "history.csv",
			"datetime,occupancy,electricity_price,Fridge,Heater,Fans,Lights,TV,Microwave,Washing_Machine\n"+
				"2025-06-01 00:00:00,2,0.25,0.12,0.8,0.1,0.3,0.2,0.05,0.4\n"+
				"2025-06-01 01:00:00,1,0.25,0.12,0.7,0.1,0.1,0,0,0\n")
		c := NewCSV(path, "")
		recs, err := c.LoadHistory(ctx)
		require.NoError(t, err)
		require.Len(t, recs, 2)

		assert.True(t, recs[0].TS.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, 2, recs[0].Occupancy)
		assert.Equal(t, 0.25, recs[0].PriceDollarsPerKWH)

		heater, ok := recs[0].Load(types.ApplianceHeater)
		require.True(t, ok)
		assert.Equal(t, 0.8, heater)
	})

	t.Run("Header Whitespace Tolerated", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "history.csv",
			"datetime, occupancy ,electricity_price,Fridge \n"+
				"2025-06-01 00:00:00,2,0.25,0.12\n")
		c := NewCSV(path, "")
		recs, err := c.LoadHistory(ctx)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		v, ok := recs[0].Load(types.ApplianceFridge)
		assert.True(t, ok)
		assert.Equal(t, 0.12, v)
	})

	t.Run("Missing Appliance Column Is Visible Not Zero", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "history.csv",
			"datetime,occupancy,electricity_price,Fridge\n"+
				"2025-06-01 00:00:00,2,0.25,0.12\n")
		c := NewCSV(path, "")
		recs, err := c.LoadHistory(ctx)
		require.NoError(t, err)
		_, ok := recs[0].Load(types.ApplianceHeater)
		assert.False(t, ok)
	})

	t.Run("Empty File Is DataError", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "history.csv", "")
		c := NewCSV(path, "")
		_, err := c.LoadHistory(ctx)
		var de *types.DataError
		assert.ErrorAs(t, err, &de)
	})

	t.Run("Header Only Is DataError", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "history.csv",
			"datetime,occupancy,electricity_price,Fridge\n")
		c := NewCSV(path, "")
		_, err := c.LoadHistory(ctx)
		var de *types.DataError
		assert.ErrorAs(t, err, &de)
	})

	t.Run("Missing Required Column Is DataError", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "history.csv",
			"datetime,electricity_price,Fridge\n"+
				"2025-06-01 00:00:00,0.25,0.12\n")
		c := NewCSV(path, "")
		_, err := c.LoadHistory(ctx)
		var de *types.DataError
		require.ErrorAs(t, err, &de)
		assert.Contains(t, de.Reason, "occupancy")
	})

	t.Run("Missing File Is DataError", func(t *testing.T) {
		c := NewCSV(filepath.Join(t.TempDir(), "nope.csv"), "")
		_, err := c.LoadHistory(ctx)
		var de *types.DataError
		assert.ErrorAs(t, err, &de)
	})
}

func TestForecastRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "forecast.csv")
	c := NewCSV("", path)

	lastTS := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	var rows []types.ForecastRow
	for i := 0; i < 24; i++ {
		ts := lastTS.Add(time.Duration(i+1) * time.Hour)
		loads := map[types.Appliance]float64{}
		var total float64
		for j, app := range types.Appliances {
			v := 0.1*float64(j) + 0.01*float64(i)
			loads[app] = v
			total += v
		}
		rows = append(rows, types.ForecastRow{
			TS:                 ts,
			Hour:               ts.Hour(),
			HourSin:            0.5,
			HourCos:            -0.25,
			Occupancy:          1 + i%4,
			PriceDollarsPerKWH: 0.25,
			LoadKW:             loads,
			TotalLoadKW:        total,
			MealTime:           types.MealHours[ts.Hour()],
		})
	}

	require.NoError(t, c.WriteForecast(ctx, rows))

	got, err := c.LoadForecast(ctx)
	require.NoError(t, err)
	require.Len(t, got, 24)

	for i := range rows {
		assert.True(t, got[i].TS.Equal(rows[i].TS), "row %d ts", i)
		assert.Equal(t, rows[i].Occupancy, got[i].Occupancy, "row %d", i)
		assert.Equal(t, rows[i].LoadKW, got[i].LoadKW, "row %d loads", i)
		assert.Equal(t, rows[i].TotalLoadKW, got[i].TotalLoadKW, "row %d total must round-trip exactly", i)
		assert.Equal(t, rows[i].MealTime, got[i].MealTime, "row %d meal", i)
		assert.Equal(t, rows[i].HourSin, got[i].HourSin, "row %d sin", i)
	}
}

func TestCSVValidate(t *testing.T) {
	assert.NoError(t, NewCSV("a.csv", "b.csv").Validate())

	var ce *types.ConfigError
	assert.ErrorAs(t, NewCSV("", "b.csv").Validate(), &ce)
	assert.ErrorAs(t, NewCSV("a.csv", "").Validate(), &ce)
}
