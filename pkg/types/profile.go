package types

import "fmt"

// Profile is a named demand-response deployment profile. Historical
// deployments hardcoded these values inline in the decision logic with at
// least four mutually inconsistent combinations; they are explicit,
// documented configuration now.
type Profile struct {
	Name string `json:"name"`

	// Decision thresholds. An hour is classified peak when the price is at
	// or above PriceThresholdDollarsPerKWH or the total forecast load is
	// strictly above LoadThresholdKW.
	PriceThresholdDollarsPerKWH float64 `json:"priceThresholdDollarsPerKWH"`
	LoadThresholdKW             float64 `json:"loadThresholdKW"`

	// ReducibleFraction is the share of the flexible loads (Heater and
	// Washing_Machine) that load shedding curtails during a peak hour.
	// Must be within [0, 1].
	ReducibleFraction float64 `json:"reducibleFraction"`

	// Attribution scaling constants. The explanation weight of each factor
	// is an independent linear term: price*PriceWeightScale,
	// totalLoad/DemandWeightDivisor, occupancy*OccupancyWeightScale and
	// mealTime*MealWeightScale.
	PriceWeightScale     float64 `json:"priceWeightScale"`
	DemandWeightDivisor  float64 `json:"demandWeightDivisor"`
	OccupancyWeightScale float64 `json:"occupancyWeightScale"`
	MealWeightScale      float64 `json:"mealWeightScale"`

	// Simulated two-level tariff used when assembling future hours.
	PeakPriceDollarsPerKWH    float64 `json:"peakPriceDollarsPerKWH"`
	OffPeakPriceDollarsPerKWH float64 `json:"offPeakPriceDollarsPerKWH"`
}

// Named deployment profiles. DefaultProfile resolves the threshold ambiguity
// across the historical variants: 0.4 $/kWh and 2.0 kW were the pair the
// production dashboard actually decided with.
var (
	DefaultProfile = Profile{
		Name:                        "default",
		PriceThresholdDollarsPerKWH: 0.4,
		LoadThresholdKW:             2.0,
		ReducibleFraction:           0.7,
		PriceWeightScale:            5.5,
		DemandWeightDivisor:         0.7,
		OccupancyWeightScale:        0.4,
		MealWeightScale:             0.9,
		PeakPriceDollarsPerKWH:      0.65,
		OffPeakPriceDollarsPerKWH:   0.25,
	}

	// DashboardProfile keeps the attribution constants the legacy dashboard
	// rendered with.
	DashboardProfile = Profile{
		Name:                        "dashboard",
		PriceThresholdDollarsPerKWH: 0.4,
		LoadThresholdKW:             2.0,
		ReducibleFraction:           0.6,
		PriceWeightScale:            3.0,
		DemandWeightDivisor:         1.5,
		OccupancyWeightScale:        0.4,
		MealWeightScale:             1.2,
		PeakPriceDollarsPerKWH:      0.65,
		OffPeakPriceDollarsPerKWH:   0.25,
	}

	// SensitiveProfile sheds earlier and harder for constrained grids.
	SensitiveProfile = Profile{
		Name:                        "sensitive",
		PriceThresholdDollarsPerKWH: 0.15,
		LoadThresholdKW:             1.0,
		ReducibleFraction:           0.5,
		PriceWeightScale:            5.5,
		DemandWeightDivisor:         0.7,
		OccupancyWeightScale:        0.4,
		MealWeightScale:             0.9,
		PeakPriceDollarsPerKWH:      0.65,
		OffPeakPriceDollarsPerKWH:   0.25,
	}
)

// ProfileByName returns the named profile or a ConfigError for an unknown
// name.
func ProfileByName(name string) (Profile, error) {
	for _, p := range []Profile{DefaultProfile, DashboardProfile, SensitiveProfile} {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, NewConfigError("profile", "unknown profile %q", name)
}

// Validate returns a ConfigError describing the first invalid field, if any.
func (p Profile) Validate() error {
	if p.PriceThresholdDollarsPerKWH <= 0 {
		return NewConfigError("priceThresholdDollarsPerKWH", "must be > 0, got %v", p.PriceThresholdDollarsPerKWH)
	}
	if p.LoadThresholdKW <= 0 {
		return NewConfigError("loadThresholdKW", "must be > 0, got %v", p.LoadThresholdKW)
	}
	if p.ReducibleFraction < 0 || p.ReducibleFraction > 1 {
		return NewConfigError("reducibleFraction", "must be within [0, 1], got %v", p.ReducibleFraction)
	}
	if p.DemandWeightDivisor <= 0 {
		return NewConfigError("demandWeightDivisor", "must be > 0, got %v", p.DemandWeightDivisor)
	}
	if p.PriceWeightScale < 0 || p.OccupancyWeightScale < 0 || p.MealWeightScale < 0 {
		return NewConfigError("weightScales", "must be >= 0")
	}
	if p.PeakPriceDollarsPerKWH < p.OffPeakPriceDollarsPerKWH {
		return NewConfigError("peakPriceDollarsPerKWH", "peak tariff %v below off-peak %v", p.PeakPriceDollarsPerKWH, p.OffPeakPriceDollarsPerKWH)
	}
	return nil
}

// String implements fmt.Stringer for logging.
func (p Profile) String() string {
	return fmt.Sprintf("%s(price>=%.2f, load>%.2f, shed %.0f%%)",
		p.Name, p.PriceThresholdDollarsPerKWH, p.LoadThresholdKW, p.ReducibleFraction*100)
}
