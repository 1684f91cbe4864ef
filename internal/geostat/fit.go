package geostat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	fitMaxIterations = 50
	fitTolerance     = 1e-8
)

// FitResult carries a fitted model together with its weighted sum of squared
// errors, so alternative shapes can be compared.
type FitResult struct {
	Model VariogramModel
	WSSE  float64
}

// FitVariogram fits nugget, partial sill, and range of the starting model to
// an empirical semivariogram by weighted least squares, with Cressie-style
// weights Nh/h². The start's Type and Anis are kept; its parameters seed the
// Gauss-Newton iteration. On non-convergence the best parameters seen so far
// are returned along with ErrNoConvergence.
func FitVariogram(sample []VariogramBin, start VariogramModel) (FitResult, error) {
	if len(sample) < 3 {
		return FitResult{}, fmt.Errorf("fit: %d lags, need at least 3: %w", len(sample), ErrTooFewPoints)
	}
	if start.Range <= 0 || start.PartialSill <= 0 {
		return FitResult{}, fmt.Errorf("fit: starting range and partial sill must be positive")
	}

	n := len(sample)
	weights := make([]float64, n)
	for i, b := range sample {
		weights[i] = float64(b.Pairs) / (b.Distance * b.Distance)
	}

	model := start
	best := FitResult{Model: model, WSSE: wsse(sample, weights, model)}

	for iter := 0; iter < fitMaxIterations; iter++ {
		jac := mat.NewDense(n, 3, nil)
		res := mat.NewVecDense(n, nil)
		for i, b := range sample {
			sw := math.Sqrt(weights[i])
			jac.Set(i, 0, sw)
			jac.Set(i, 1, sw*model.structure(b.Distance))
			jac.Set(i, 2, sw*model.structureGradient(b.Distance))
			res.SetVec(i, sw*(b.Gamma-model.Gamma(b.Distance)))
		}

		var delta mat.VecDense
		if err := delta.SolveVec(jac, res); err != nil {
			return best, fmt.Errorf("fit: normal equations: %w", ErrSingular)
		}

		next := model
		next.Nugget = math.Max(0, model.Nugget+delta.AtVec(0))
		next.PartialSill = math.Max(fitTolerance, model.PartialSill+delta.AtVec(1))
		next.Range = math.Max(fitTolerance, model.Range+delta.AtVec(2))

		score := wsse(sample, weights, next)
		if score < best.WSSE {
			best = FitResult{Model: next, WSSE: score}
		}

		if converged(model, next) {
			return best, nil
		}
		model = next
	}
	return best, ErrNoConvergence
}

// FitShape fits one model shape with heuristic starting values.
func FitShape(sample []VariogramBin, typ ModelType) (FitResult, error) {
	if len(sample) < 3 {
		return FitResult{}, fmt.Errorf("fit: %d lags, need at least 3: %w", len(sample), ErrTooFewPoints)
	}
	start := heuristicStart(sample)
	start.Type = typ
	return FitVariogram(sample, start)
}

// AutoFit fits all three model shapes with heuristic starting values and
// returns the one with the lowest weighted SSE. Shapes that fail to
// converge are skipped; if none converges the best failing fit is returned
// with ErrNoConvergence.
func AutoFit(sample []VariogramBin) (FitResult, error) {
	var best FitResult
	bestOK := false
	var fallback FitResult
	haveFallback := false

	for _, typ := range []ModelType{Spherical, Exponential, Gaussian} {
		result, err := FitShape(sample, typ)
		if err != nil {
			if !haveFallback || result.WSSE < fallback.WSSE {
				fallback = result
				haveFallback = true
			}
			continue
		}
		if !bestOK || result.WSSE < best.WSSE {
			best = result
			bestOK = true
		}
	}
	if !bestOK {
		return fallback, ErrNoConvergence
	}
	return best, nil
}

// heuristicStart seeds the fit: nugget from the shortest lag, sill from the
// mean of the outer third of lags, range from half the largest lag distance.
func heuristicStart(sample []VariogramBin) VariogramModel {
	nugget := sample[0].Gamma / 2

	outer := sample[2*len(sample)/3:]
	var sill float64
	for _, b := range outer {
		sill += b.Gamma
	}
	sill /= float64(len(outer))

	psill := sill - nugget
	if psill <= 0 {
		psill = sill
		nugget = 0
	}

	return VariogramModel{
		Nugget:      nugget,
		PartialSill: psill,
		Range:       sample[len(sample)-1].Distance / 2,
	}
}

func wsse(sample []VariogramBin, weights []float64, m VariogramModel) float64 {
	var sum float64
	for i, b := range sample {
		r := b.Gamma - m.Gamma(b.Distance)
		sum += weights[i] * r * r
	}
	return sum
}

func converged(prev, next VariogramModel) bool {
	for _, pair := range [][2]float64{
		{prev.Nugget, next.Nugget},
		{prev.PartialSill, next.PartialSill},
		{prev.Range, next.Range},
	} {
		scale := math.Max(math.Abs(pair[0]), 1)
		if math.Abs(pair[1]-pair[0])/scale > fitTolerance*100 {
			return false
		}
	}
	return true
}
