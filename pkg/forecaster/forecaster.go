// Package forecaster trains one regression model per appliance and predicts
// non-negative hourly loads for future feature vectors.
package forecaster

import (
	"context"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/loadpilot/loadpilot/pkg/features"
	"github.com/loadpilot/loadpilot/pkg/log"
	"github.com/loadpilot/loadpilot/pkg/types"
)

// numCoeffs is the intercept plus the four features.
const numCoeffs = 5

// Model is a trained per-appliance ridge regression. It is immutable after
// Fit and safe for concurrent use.
type Model struct {
	appliance types.Appliance
	beta      *mat.VecDense
}

// Appliance returns the appliance this model was trained for.
func (m *Model) Appliance() types.Appliance { return m.appliance }

// Predict returns the predicted load in kW for the given features, clamped
// to >= 0. A negative regression output is a policy error, not a physical
// state, so it never leaves this package.
func (m *Model) Predict(fv types.FeatureVector) float64 {
	row := append([]float64{1}, fv.Values()...)
	var yhat float64
	for i, v := range row {
		yhat += v * m.beta.AtVec(i)
	}
	if yhat < 0 {
		return 0
	}
	return yhat
}

// Fit trains a model for one appliance on the full history. It returns a
// DataError when the history is empty or when the appliance column is absent
// from every record: defaulting to zero there would produce a
// plausible-looking but meaningless forecast. A record missing the column is
// still used with zero contribution; only a fully absent column is fatal.
func Fit(ctx context.Context, history []types.HistoricalRecord, app types.Appliance, lambda float64) (*Model, error) {
	if lambda < 0 {
		return nil, types.NewConfigError("lambda", "ridge penalty must be >= 0, got %v", lambda)
	}
	if len(history) == 0 {
		return nil, types.NewDataError("no historical records to train %s on", app)
	}

	xData := make([]float64, 0, len(history)*numCoeffs)
	yData := make([]float64, 0, len(history))
	seen := false
	for _, rec := range history {
		fv := features.Build(rec.TS, rec.Occupancy, rec.PriceDollarsPerKWH)
		xData = append(xData, 1)
		xData = append(xData, fv.Values()...)

		load, ok := rec.Load(app)
		if ok {
			seen = true
		}
		yData = append(yData, load)
	}
	if !seen {
		return nil, types.NewDataError("appliance column %s absent from all %d records", app, len(history))
	}

	x := mat.NewDense(len(history), numCoeffs, xData)
	y := mat.NewVecDense(len(history), yData)
	beta := solveRidge(x, y, lambda)

	log.Ctx(ctx).DebugContext(ctx, "fitted appliance model",
		slog.String("appliance", string(app)),
		slog.Int("records", len(history)),
		slog.Float64("lambda", lambda),
	)

	return &Model{appliance: app, beta: beta}, nil
}

// solveRidge solves (XᵀX + λI)β = Xᵀy via Cholesky, falling back to a thin
// SVD pseudo-inverse when the normal equations are not positive definite.
func solveRidge(x *mat.Dense, y *mat.VecDense, lambda float64) *mat.VecDense {
	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	n, _ := xtx.Dims()
	for i := 0; i < n; i++ {
		xtx.Set(i, i, xtx.At(i, i)+lambda)
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sym.SetSym(i, j, xtx.At(i, j))
		}
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var chol mat.Cholesky
	if chol.Factorize(sym) {
		beta := mat.NewVecDense(n, nil)
		if err := chol.SolveVecTo(beta, &xty); err == nil {
			return beta
		}
	}

	var svd mat.SVD
	svd.Factorize(x, mat.SVDThin)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sv := svd.Values(nil)

	var uty mat.VecDense
	uty.MulVec(u.T(), y)
	for i, s := range sv {
		if s > 1e-12 {
			uty.SetVec(i, uty.AtVec(i)/s)
		} else {
			uty.SetVec(i, 0)
		}
	}

	beta := mat.NewVecDense(n, nil)
	beta.MulVec(&v, &uty)
	return beta
}

// Set holds one trained model per appliance.
type Set map[types.Appliance]*Model

// FitAll trains one independent model per appliance. Appliances share no
// parameters, so training order is irrelevant.
func FitAll(ctx context.Context, history []types.HistoricalRecord, apps []types.Appliance, lambda float64) (Set, error) {
	set := make(Set, len(apps))
	for _, app := range apps {
		m, err := Fit(ctx, history, app, lambda)
		if err != nil {
			return nil, err
		}
		set[app] = m
	}
	return set, nil
}

// Predict queries every model in the set and returns the per-appliance loads
// plus their exact sum. Models are evaluated in the canonical appliance
// order so the floating-point sum is identical across runs.
func (s Set) Predict(fv types.FeatureVector) (map[types.Appliance]float64, float64) {
	loads := make(map[types.Appliance]float64, len(s))
	var total float64
	for _, app := range types.Appliances {
		m, ok := s[app]
		if !ok {
			continue
		}
		v := m.Predict(fv)
		loads[app] = v
		total += v
	}
	return loads, total
}
