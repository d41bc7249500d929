// Package policy classifies forecast hours for demand response and computes
// the load-shedding adjustment. The rule is a deterministic threshold
// disjunction, not a learned control policy, despite what earlier iterations
// of this system called it.
package policy

import (
	"context"
	"log/slog"

	"github.com/loadpilot/loadpilot/pkg/log"
	"github.com/loadpilot/loadpilot/pkg/types"
)

// Decide classifies a single forecast hour and computes the post-shedding
// load. It is stateless and evaluated independently per row.
//
// An hour is peak when price >= PriceThresholdDollarsPerKWH (inclusive) or
// TotalLoadKW > LoadThresholdKW (strict). On peak, shedding curtails only
// the two flexible loads (Heater and Washing_Machine) by the profile's
// reducible fraction; every other appliance is left alone. That is a known
// simplification of the controller, not an oversight.
func Decide(ctx context.Context, row types.ForecastRow, p types.Profile) (types.DecisionResult, error) {
	if err := p.Validate(); err != nil {
		return types.DecisionResult{}, err
	}
	if row.TotalLoadKW < 0 {
		// upstream clamping failed; a negative load must never flow into
		// the explanation stage
		err := types.NewInvariantViolation("negative total load %v at %s", row.TotalLoadKW, row.TS.Format("2006-01-02T15"))
		log.Ctx(ctx).ErrorContext(ctx, "decision rejected forecast row", slog.Any("error", err))
		return types.DecisionResult{}, err
	}

	res := types.DecisionResult{
		Status:          types.StatusNormal,
		RawTotalLoadKW:  row.TotalLoadKW,
		OptimizedLoadKW: row.TotalLoadKW,
	}

	peak := row.PriceDollarsPerKWH >= p.PriceThresholdDollarsPerKWH ||
		row.TotalLoadKW > p.LoadThresholdKW
	if !peak {
		return res, nil
	}

	res.Status = types.StatusPeak
	// missing flexible-load columns contribute zero shed
	heater := row.LoadKW[types.ApplianceHeater]
	washer := row.LoadKW[types.ApplianceWashingMachine]
	res.ShedKW = p.ReducibleFraction * (heater + washer)
	res.OptimizedLoadKW = row.TotalLoadKW - res.ShedKW
	if res.OptimizedLoadKW < 0 {
		res.OptimizedLoadKW = 0
	}

	log.Ctx(ctx).DebugContext(ctx, "peak hour classified",
		slog.Int("hour", row.Hour),
		slog.Float64("price", row.PriceDollarsPerKWH),
		slog.Float64("totalLoadKW", row.TotalLoadKW),
		slog.Float64("shedKW", res.ShedKW),
	)

	return res, nil
}
