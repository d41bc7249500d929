package types

import (
	"sort"
	"time"
)

// CurrentForecastVersion is the current version of the persisted forecast
// artifact. Increment this value when the column layout changes.
const CurrentForecastVersion = 1

// Appliance identifies a single metered appliance in the household.
type Appliance string

const (
	ApplianceFridge         Appliance = "Fridge"
	ApplianceHeater         Appliance = "Heater"
	ApplianceFans           Appliance = "Fans"
	ApplianceLights         Appliance = "Lights"
	ApplianceTV             Appliance = "TV"
	ApplianceMicrowave      Appliance = "Microwave"
	ApplianceWashingMachine Appliance = "Washing_Machine"
)

// Appliances is the canonical ordered appliance set. The order is the column
// order of the persisted artifacts and must be identical between training and
// inference.
var Appliances = []Appliance{
	ApplianceFridge,
	ApplianceHeater,
	ApplianceFans,
	ApplianceLights,
	ApplianceTV,
	ApplianceMicrowave,
	ApplianceWashingMachine,
}

// MealHours are the hours of the day we consider meal time. This matters for
// the attribution explanation, not for the forecast itself.
var MealHours = map[int]bool{8: true, 12: true, 13: true, 19: true, 20: true}

// HistoricalRecord is one observed hour of household state. Records are
// immutable once loaded.
type HistoricalRecord struct {
	TS                 time.Time `json:"ts"`
	Occupancy          int       `json:"occupancy"`
	PriceDollarsPerKWH float64   `json:"priceDollarsPerKWH"`

	// LoadKW holds the observed per-appliance load. An appliance absent from
	// the source data is absent from the map, not zero; use Load to
	// distinguish the two.
	LoadKW map[Appliance]float64 `json:"loadKW"`
}

// Load returns the observed load for the appliance and whether the source
// data actually had a column for it.
func (r HistoricalRecord) Load(app Appliance) (float64, bool) {
	v, ok := r.LoadKW[app]
	return v, ok
}

// FeatureVector is the regression input derived from one timestamp plus the
// occupancy and price signals. HourSin/HourCos are the cyclical encoding of
// the hour of day so that hour 23 and hour 0 are adjacent in feature space.
type FeatureVector struct {
	HourSin            float64 `json:"hourSin"`
	HourCos            float64 `json:"hourCos"`
	Occupancy          float64 `json:"occupancy"`
	PriceDollarsPerKWH float64 `json:"priceDollarsPerKWH"`
}

// Values returns the features in the canonical regression column order.
func (f FeatureVector) Values() []float64 {
	return []float64{f.HourSin, f.HourCos, f.Occupancy, f.PriceDollarsPerKWH}
}

// ForecastRow is one forecast hour. Occupancy and PriceDollarsPerKWH are
// simulated environment values, not observations; they stand in for sensor
// and tariff feeds we don't have for future hours.
type ForecastRow struct {
	TS                 time.Time `json:"ts"`
	Hour               int       `json:"hour"`
	HourSin            float64   `json:"hourSin"`
	HourCos            float64   `json:"hourCos"`
	Occupancy          int       `json:"occupancy"`
	PriceDollarsPerKWH float64   `json:"priceDollarsPerKWH"`

	// LoadKW is the predicted per-appliance load, clamped to >= 0.
	LoadKW map[Appliance]float64 `json:"loadKW"`
	// TotalLoadKW is always the exact sum of LoadKW values.
	TotalLoadKW float64 `json:"totalLoadKW"`

	MealTime bool `json:"mealTime"`
}

// Status classifies a forecast hour for demand response.
type Status string

const (
	StatusNormal Status = "normal"
	StatusPeak   Status = "peak"
)

// DecisionResult is the demand-response decision for a single forecast hour.
// It is recomputed on demand from a ForecastRow and never persisted.
type DecisionResult struct {
	Status          Status  `json:"status"`
	RawTotalLoadKW  float64 `json:"rawTotalLoadKW"`
	OptimizedLoadKW float64 `json:"optimizedLoadKW"`
	ShedKW          float64 `json:"shedKW"`
}

// FactorWeight is one named factor and its heuristic attribution weight.
// Weights are relative, not probabilistic; only rank order and sign carry
// meaning.
type FactorWeight struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// AttributionResult is the ranked explanation of a decision, sorted by
// descending weight.
type AttributionResult []FactorWeight

// Primary returns the top-ranked driver of the decision.
func (a AttributionResult) Primary() (FactorWeight, bool) {
	if len(a) == 0 {
		return FactorWeight{}, false
	}
	return a[0], true
}

// Sort orders the result by descending weight. Equal weights keep their
// original relative order so the output is stable.
func (a AttributionResult) Sort() {
	sort.SliceStable(a, func(i, j int) bool {
		return a[i].Weight > a[j].Weight
	})
}
