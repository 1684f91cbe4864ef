package geostat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idwFactory(power float64) InterpolatorFactory {
	return func(points []Point) (Interpolator, error) {
		return NewIDW(points, power)
	}
}

func TestLeaveOneOutTransect(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, Value: 0},
		{X: 1, Y: 0, Value: 10},
		{X: 2, Y: 0, Value: 20},
	}

	scores, err := LeaveOneOut(points, idwFactory(2))
	require.NoError(t, err)
	require.Len(t, scores.Residuals, 3)

	// Holding out an endpoint predicts from (d=1, d=2) neighbors:
	// (10/1 + 20/4) / (1 + 1/4) = 12, so the endpoint residuals are ±12
	// and the center residual is 0.
	assert.InDelta(t, 12.0, scores.Residuals[0].Residual, 1e-12)
	assert.InDelta(t, 0.0, scores.Residuals[1].Residual, 1e-12)
	assert.InDelta(t, -12.0, scores.Residuals[2].Residual, 1e-12)

	assert.InDelta(t, 0.0, scores.ME, 1e-12)
	assert.InDelta(t, 9.798, scores.RMSE, 1e-3)
	assert.InDelta(t, -1.0, scores.Correlation, 1e-12)
}

func TestLeaveOneOutWithKriging(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, Value: 10},
		{X: 2, Y: 0, Value: 20},
		{X: 0, Y: 2, Value: 30},
		{X: 2, Y: 2, Value: 40},
		{X: 1, Y: 1, Value: 25},
	}
	model := VariogramModel{Type: Exponential, Nugget: 0, PartialSill: 5, Range: 4}

	scores, err := LeaveOneOut(points, func(train []Point) (Interpolator, error) {
		return NewOrdinaryKriging(train, model)
	})
	require.NoError(t, err)
	assert.Len(t, scores.Residuals, 5)
	assert.Greater(t, scores.RMSE, 0.0)
}

func TestLeaveOneOutSkipsUnreachablePoints(t *testing.T) {
	// The outlier station has no neighbor within the radius, so it is
	// skipped rather than failing the run.
	points := []Point{
		{X: 0, Y: 0, Value: 1},
		{X: 1, Y: 0, Value: 2},
		{X: 0.5, Y: 1, Value: 3},
		{X: 1000, Y: 1000, Value: 4},
	}
	scores, err := LeaveOneOut(points, func(train []Point) (Interpolator, error) {
		w, err := NewIDW(train, 2)
		if err != nil {
			return nil, err
		}
		w.MaxDistance = 5
		return w, nil
	})
	require.NoError(t, err)
	assert.Len(t, scores.Residuals, 3)
}

// boundedPredictor fails with a wrapped ErrNoNeighbors outside its radius.
type boundedPredictor struct {
	inner  *IDW
	radius float64
}

func (b boundedPredictor) Predict(at Point) (float64, error) {
	for _, p := range b.inner.points {
		if distance(at, p) <= b.radius {
			return b.inner.Predict(at)
		}
	}
	return 0, fmt.Errorf("predict at (%g, %g): %w", at.X, at.Y, ErrNoNeighbors)
}

func TestLeaveOneOutSkipsWrappedNoNeighbors(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, Value: 1},
		{X: 1, Y: 0, Value: 2},
		{X: 0.5, Y: 1, Value: 3},
		{X: 1000, Y: 1000, Value: 4},
	}
	scores, err := LeaveOneOut(points, func(train []Point) (Interpolator, error) {
		w, err := NewIDW(train, 2)
		if err != nil {
			return nil, err
		}
		return boundedPredictor{inner: w, radius: 5}, nil
	})
	require.NoError(t, err)
	assert.Len(t, scores.Residuals, 3)
}

func TestLeaveOneOutTooFewPoints(t *testing.T) {
	_, err := LeaveOneOut([]Point{{X: 0}, {X: 1}}, idwFactory(2))
	assert.ErrorIs(t, err, ErrTooFewPoints)
}
