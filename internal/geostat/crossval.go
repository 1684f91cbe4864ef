package geostat

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// InterpolatorFactory builds an interpolator from a training subset.
// Used by cross-validation to rebuild the predictor without the held-out
// observation.
type InterpolatorFactory func(points []Point) (Interpolator, error)

// CVResidual is one leave-one-out record: the held-out observation, its
// prediction from the remaining points, and the residual.
type CVResidual struct {
	Point     Point
	Predicted float64
	Residual  float64
}

// CVScores summarizes a leave-one-out run.
type CVScores struct {
	ME          float64 // mean error (bias)
	RMSE        float64
	Correlation float64 // Pearson r between observed and predicted
	Residuals   []CVResidual
}

// LeaveOneOut predicts every observation from the remaining ones and scores
// the result. Held-out points whose prediction fails with ErrNoNeighbors are
// skipped; any other prediction error aborts the run.
func LeaveOneOut(points []Point, build InterpolatorFactory) (CVScores, error) {
	if len(points) < 3 {
		return CVScores{}, fmt.Errorf("loocv: %w", ErrTooFewPoints)
	}

	rest := make([]Point, 0, len(points)-1)
	var scores CVScores
	var observed, predicted []float64
	var sumErr, sumSq float64

	for i, held := range points {
		rest = rest[:0]
		rest = append(rest, points[:i]...)
		rest = append(rest, points[i+1:]...)

		interp, err := build(rest)
		if err != nil {
			return CVScores{}, fmt.Errorf("loocv: rebuild without point %d: %w", i, err)
		}
		pred, err := interp.Predict(held)
		if err != nil {
			if errors.Is(err, ErrNoNeighbors) {
				continue
			}
			return CVScores{}, fmt.Errorf("loocv: predict point %d: %w", i, err)
		}

		r := pred - held.Value
		scores.Residuals = append(scores.Residuals, CVResidual{
			Point:     held,
			Predicted: pred,
			Residual:  r,
		})
		observed = append(observed, held.Value)
		predicted = append(predicted, pred)
		sumErr += r
		sumSq += r * r
	}

	n := float64(len(scores.Residuals))
	if n == 0 {
		return CVScores{}, ErrNoNeighbors
	}
	scores.ME = sumErr / n
	scores.RMSE = math.Sqrt(sumSq / n)
	scores.Correlation = stat.Correlation(observed, predicted, nil)
	return scores, nil
}
