package geostat

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Kriging is a best-linear-unbiased interpolator over a fitted variogram
// model. The left-hand system (semivariance matrix bordered with the
// unbiasedness constraint and, for drift kriging, the covariate columns) is
// factorized once at construction; each prediction solves one right-hand
// side.
type Kriging struct {
	points []Point
	model  VariogramModel
	drift  int // number of external drift terms

	lu  mat.LU
	dim int
}

// NewOrdinaryKriging builds an ordinary kriging predictor, which assumes an
// unknown but constant mean over the study area.
func NewOrdinaryKriging(points []Point, model VariogramModel) (*Kriging, error) {
	return newKriging(points, model, 0)
}

// NewDriftKriging builds a kriging-with-external-drift predictor using the
// first ndrift covariates of each observation as linear drift terms.
// Every observation, and every later query point, must carry that many
// covariates.
func NewDriftKriging(points []Point, model VariogramModel, ndrift int) (*Kriging, error) {
	if ndrift < 1 {
		return nil, fmt.Errorf("kriging: ndrift must be at least 1")
	}
	return newKriging(points, model, ndrift)
}

func newKriging(points []Point, model VariogramModel, drift int) (*Kriging, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("kriging: %w", ErrTooFewPoints)
	}
	for i, p := range points {
		if len(p.Covariates) < drift {
			return nil, fmt.Errorf("kriging: observation %d has %d covariates, drift needs %d",
				i, len(p.Covariates), drift)
		}
	}

	dim := n + 1 + drift
	a := mat.NewDense(dim, dim, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			g := model.Gamma(model.Distance(points[i], points[j]))
			a.Set(i, j, g)
			a.Set(j, i, g)
		}
		a.Set(i, n, 1)
		a.Set(n, i, 1)
		for d := 0; d < drift; d++ {
			a.Set(i, n+1+d, points[i].Covariates[d])
			a.Set(n+1+d, i, points[i].Covariates[d])
		}
	}

	k := &Kriging{points: points, model: model, drift: drift, dim: dim}
	k.lu.Factorize(a)
	// A quick solvability probe; duplicate locations make the system
	// exactly singular.
	probe := mat.NewVecDense(dim, nil)
	if err := k.lu.SolveVecTo(probe, false, mat.NewVecDense(dim, nil)); err != nil {
		return nil, fmt.Errorf("kriging: factorize %dx%d system (duplicate locations?): %w", dim, dim, ErrSingular)
	}
	return k, nil
}

// Predict returns the kriging estimate at the query point.
func (k *Kriging) Predict(at Point) (float64, error) {
	value, _, err := k.PredictVariance(at)
	return value, err
}

// PredictVariance returns the kriging estimate together with the kriging
// variance at the query point.
func (k *Kriging) PredictVariance(at Point) (float64, float64, error) {
	if len(at.Covariates) < k.drift {
		return 0, 0, fmt.Errorf("kriging: query has %d covariates, drift needs %d: %w",
			len(at.Covariates), k.drift, ErrMissingCovariates)
	}

	n := len(k.points)
	b := mat.NewVecDense(k.dim, nil)
	for i, p := range k.points {
		b.SetVec(i, k.model.Gamma(k.model.Distance(at, p)))
	}
	b.SetVec(n, 1)
	for d := 0; d < k.drift; d++ {
		b.SetVec(n+1+d, at.Covariates[d])
	}

	sol := mat.NewVecDense(k.dim, nil)
	if err := k.lu.SolveVecTo(sol, false, b); err != nil {
		return 0, 0, fmt.Errorf("kriging: solve at (%g, %g): %w", at.X, at.Y, ErrSingular)
	}

	var value, variance float64
	for i, p := range k.points {
		value += sol.AtVec(i) * p.Value
	}
	// sigma² = sum lambda_i gamma_i0 + mu (+ drift multipliers).
	for i := 0; i < k.dim; i++ {
		variance += sol.AtVec(i) * b.AtVec(i)
	}
	if variance < 0 {
		variance = 0
	}
	return value, variance, nil
}
