package geostat

import (
	"fmt"
	"math"
	"sort"
)

// IDW is an inverse-distance-weighted interpolator. A prediction is the
// weighted mean of the observations, each weighted by 1/d^Power. With
// MaxNeighbors > 0 only the nearest MaxNeighbors observations contribute;
// with MaxDistance > 0 observations farther than MaxDistance are excluded.
type IDW struct {
	Power        float64
	MaxNeighbors int
	MaxDistance  float64

	points []Point
}

// NewIDW builds an IDW interpolator over the observations.
func NewIDW(points []Point, power float64) (*IDW, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("idw: %w", ErrTooFewPoints)
	}
	if power <= 0 {
		return nil, fmt.Errorf("idw: power must be positive, got %g", power)
	}
	return &IDW{Power: power, points: points}, nil
}

type neighbor struct {
	dist  float64
	value float64
}

// Predict returns the IDW estimate at the query location. A query that
// coincides with an observation returns the observed value exactly.
func (w *IDW) Predict(at Point) (float64, error) {
	neighbors := make([]neighbor, 0, len(w.points))
	for _, p := range w.points {
		d := distance(at, p)
		if d == 0 {
			return p.Value, nil
		}
		if w.MaxDistance > 0 && d > w.MaxDistance {
			continue
		}
		neighbors = append(neighbors, neighbor{dist: d, value: p.Value})
	}
	if len(neighbors) == 0 {
		return 0, ErrNoNeighbors
	}

	if w.MaxNeighbors > 0 && len(neighbors) > w.MaxNeighbors {
		sort.Slice(neighbors, func(i, j int) bool {
			return neighbors[i].dist < neighbors[j].dist
		})
		neighbors = neighbors[:w.MaxNeighbors]
	}

	var num, den float64
	for _, nb := range neighbors {
		wt := 1 / math.Pow(nb.dist, w.Power)
		num += wt * nb.value
		den += wt
	}
	return num / den, nil
}
