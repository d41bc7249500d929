// Package forecast assembles the next-day hourly forecast from trained
// appliance models and a simulated future environment.
package forecast

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/loadpilot/loadpilot/pkg/features"
	"github.com/loadpilot/loadpilot/pkg/forecaster"
	"github.com/loadpilot/loadpilot/pkg/log"
	"github.com/loadpilot/loadpilot/pkg/types"
)

// DefaultHorizonHours is the canonical forecast horizon.
const DefaultHorizonHours = 24

// Simulated environment constants. Future occupancy and tariffs are not
// observations: we have no sensor or price feed for hours that haven't
// happened, so the assembler stands in for them with a fixed daily pattern.
const (
	// occupancy windows: morning routine and evening presence
	occupancyMorningStart, occupancyMorningEnd = 7, 9
	occupancyEveningStart, occupancyEveningEnd = 18, 22

	occupancyHomeBase = 3
	occupancyAwayBase = 1
	occupancyJitter   = 0.6
	occupancyMax      = 5

	// tariff windows: the high level applies during both peaks
	tariffMorningStart, tariffMorningEnd = 7, 10
	tariffEveningStart, tariffEveningEnd = 18, 22
)

// Assembler produces forecast rows for future hours. Models and Profile are
// read-only; the seed fixes the simulated environment so two runs with the
// same inputs produce identical rows.
type Assembler struct {
	models  forecaster.Set
	profile types.Profile
	seed    int64
}

// New validates the profile and returns an Assembler.
func New(models forecaster.Set, profile types.Profile, seed int64) (*Assembler, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &Assembler{models: models, profile: profile, seed: seed}, nil
}

// Assemble builds one row per hour for the next horizonHours hours starting
// one hour after lastTS. A zero horizon yields an empty sequence; a negative
// horizon is a ConfigError.
func (a *Assembler) Assemble(ctx context.Context, lastTS time.Time, horizonHours int) ([]types.ForecastRow, error) {
	if horizonHours < 0 {
		return nil, types.NewConfigError("horizonHours", "must be >= 0, got %d", horizonHours)
	}

	// fresh source per call keeps Assemble idempotent for a fixed seed
	rng := rand.New(rand.NewSource(uint64(a.seed)))
	jitter := distuv.Poisson{Lambda: occupancyJitter, Src: rng}

	rows := make([]types.ForecastRow, 0, horizonHours)
	ts := lastTS
	for i := 0; i < horizonHours; i++ {
		ts = ts.Add(time.Hour)
		h := ts.Hour()

		occupancy := simulateOccupancy(h, jitter)
		price := a.simulatePrice(h)

		fv := features.Build(ts, occupancy, price)
		loads, total := a.models.Predict(fv)

		rows = append(rows, types.ForecastRow{
			TS:                 ts,
			Hour:               h,
			HourSin:            fv.HourSin,
			HourCos:            fv.HourCos,
			Occupancy:          occupancy,
			PriceDollarsPerKWH: price,
			LoadKW:             loads,
			TotalLoadKW:        total,
			MealTime:           types.MealHours[h],
		})
	}

	log.Ctx(ctx).DebugContext(ctx, "forecast assembled",
		slog.Time("lastTS", lastTS),
		slog.Int("hours", len(rows)),
		slog.String("profile", a.profile.Name),
	)

	return rows, nil
}

func simulateOccupancy(hour int, jitter distuv.Poisson) int {
	base := occupancyAwayBase
	if (hour >= occupancyMorningStart && hour <= occupancyMorningEnd) ||
		(hour >= occupancyEveningStart && hour <= occupancyEveningEnd) {
		base = occupancyHomeBase
	}
	occ := base + int(jitter.Rand())
	if occ > occupancyMax {
		occ = occupancyMax
	}
	return occ
}

// simulatePrice is a two-level step tariff, not a continuous curve.
func (a *Assembler) simulatePrice(hour int) float64 {
	if (hour >= tariffMorningStart && hour <= tariffMorningEnd) ||
		(hour >= tariffEveningStart && hour <= tariffEveningEnd) {
		return a.profile.PeakPriceDollarsPerKWH
	}
	return a.profile.OffPeakPriceDollarsPerKWH
}

// Select returns the forecast row at the given index. Out-of-range indexes
// are a ConfigError since they come from caller configuration.
func Select(rows []types.ForecastRow, index int) (types.ForecastRow, error) {
	if index < 0 || index >= len(rows) {
		return types.ForecastRow{}, types.NewConfigError("hour", "index %d outside forecast of %d hours", index, len(rows))
	}
	return rows[index], nil
}

// SelectTime returns the forecast row covering the given timestamp.
func SelectTime(rows []types.ForecastRow, ts time.Time) (types.ForecastRow, error) {
	want := ts.Truncate(time.Hour)
	for _, row := range rows {
		if row.TS.Truncate(time.Hour).Equal(want) {
			return row, nil
		}
	}
	return types.ForecastRow{}, types.NewDataError("no forecast row covers %s", ts.Format(time.RFC3339))
}
