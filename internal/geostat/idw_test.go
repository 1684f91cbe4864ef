package geostat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDWExactAtObservation(t *testing.T) {
	w, err := NewIDW([]Point{{X: 0, Y: 0, Value: 3.5}, {X: 1, Y: 1, Value: 9}}, 2)
	require.NoError(t, err)

	v, err := w.Predict(Point{X: 1, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)
}

func TestIDWMidpointIsMean(t *testing.T) {
	w, err := NewIDW([]Point{{X: 0, Y: 0, Value: 0}, {X: 1, Y: 0, Value: 10}}, 2)
	require.NoError(t, err)

	v, err := w.Predict(Point{X: 0.5, Y: 0})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v, 1e-12)
}

func TestIDWPowerPullsTowardNearest(t *testing.T) {
	points := []Point{{X: 0, Y: 0, Value: 0}, {X: 1, Y: 0, Value: 10}}
	at := Point{X: 0.25, Y: 0}

	low, err := NewIDW(points, 1)
	require.NoError(t, err)
	high, err := NewIDW(points, 5)
	require.NoError(t, err)

	vLow, err := low.Predict(at)
	require.NoError(t, err)
	vHigh, err := high.Predict(at)
	require.NoError(t, err)

	// The query sits nearer the zero-valued station; a higher power
	// weights that station more heavily.
	assert.Less(t, vHigh, vLow)
}

func TestIDWMaxNeighbors(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, Value: 2},
		{X: 1, Y: 0, Value: 100},
		{X: 2, Y: 0, Value: 100},
	}
	w, err := NewIDW(points, 2)
	require.NoError(t, err)
	w.MaxNeighbors = 1

	v, err := w.Predict(Point{X: 0.1, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestIDWMaxDistance(t *testing.T) {
	w, err := NewIDW([]Point{{X: 0, Y: 0, Value: 1}}, 2)
	require.NoError(t, err)
	w.MaxDistance = 1

	_, err = w.Predict(Point{X: 10, Y: 10})
	assert.ErrorIs(t, err, ErrNoNeighbors)
}

func TestIDWRejectsBadArguments(t *testing.T) {
	_, err := NewIDW(nil, 2)
	assert.ErrorIs(t, err, ErrTooFewPoints)

	_, err = NewIDW([]Point{{X: 0, Y: 0}}, 0)
	assert.Error(t, err)
}
