// Package attribution converts the inputs of a demand-response decision into
// ranked relative importance weights for explanation.
//
// The weights are independent linear scalings of each factor. This is a
// self-declared heuristic: there are no interaction terms and no
// SHAP/LIME-style marginal contributions, so only the rank order and sign of
// the weights mean anything.
package attribution

import (
	"github.com/loadpilot/loadpilot/pkg/types"
)

// Factor labels reported to consumers. These are display names, so they are
// not the same strings as the appliance or feature identifiers.
const (
	LabelPrice     = "Electricity Price"
	LabelDemand    = "Total Demand"
	LabelOccupancy = "Occupancy"
	LabelMeal      = "Meal Context"
)

// Explain computes one weight per factor from the same inputs the decision
// saw and returns them sorted by descending weight. The first entry is the
// primary driver.
func Explain(price, totalLoadKW float64, occupancy int, mealTime bool, p types.Profile) types.AttributionResult {
	meal := 0.0
	if mealTime {
		meal = 1.0
	}
	res := types.AttributionResult{
		{Label: LabelPrice, Weight: price * p.PriceWeightScale},
		{Label: LabelDemand, Weight: totalLoadKW / p.DemandWeightDivisor},
		{Label: LabelOccupancy, Weight: float64(occupancy) * p.OccupancyWeightScale},
		{Label: LabelMeal, Weight: meal * p.MealWeightScale},
	}
	res.Sort()
	return res
}

// ExplainRow is a convenience for explaining a forecast row directly.
func ExplainRow(row types.ForecastRow, p types.Profile) types.AttributionResult {
	return Explain(row.PriceDollarsPerKWH, row.TotalLoadKW, row.Occupancy, row.MealTime, p)
}
