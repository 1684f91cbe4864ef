package geostat

import (
	"fmt"
	"math"
)

// VariogramBin is one lag of an empirical semivariogram: the mean separation
// distance of the pairs that fell in the lag, their mean semivariance, and
// how many pairs contributed.
type VariogramBin struct {
	Distance float64
	Gamma    float64
	Pairs    int
}

// SemivariogramOptions tune the empirical semivariogram.
type SemivariogramOptions struct {
	// Cutoff is the maximum pair separation considered. Zero picks a
	// third of the bounding-box diagonal.
	Cutoff float64

	// Bins is the number of equal-width lags up to the cutoff.
	// Zero picks 15.
	Bins int

	// Directional variogram: only pairs whose separation azimuth lies
	// within Tolerance degrees of Direction (degrees from north) are
	// counted. Tolerance zero means omnidirectional.
	Direction float64
	Tolerance float64
}

// Semivariogram bins every point pair with separation at or below the cutoff
// into equal-width lags. Empty lags are dropped; fewer than two usable lags
// is an error.
func Semivariogram(points []Point, opts SemivariogramOptions) ([]VariogramBin, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("semivariogram: %w", ErrTooFewPoints)
	}

	cutoff := opts.Cutoff
	if cutoff <= 0 {
		r := Bounds(points)
		dx := r.Max[0] - r.Min[0]
		dy := r.Max[1] - r.Min[1]
		cutoff = math.Sqrt(dx*dx+dy*dy) / 3
	}
	bins := opts.Bins
	if bins <= 0 {
		bins = 15
	}
	width := cutoff / float64(bins)

	sumDist := make([]float64, bins)
	sumGamma := make([]float64, bins)
	counts := make([]int, bins)

	for i := 0; i < len(points); i++ {
		for j := 0; j < i; j++ {
			d := distance(points[i], points[j])
			if d == 0 || d > cutoff {
				continue
			}
			if opts.Tolerance > 0 && !inDirection(points[i], points[j], opts.Direction, opts.Tolerance) {
				continue
			}
			k := int(d / width)
			if k >= bins {
				k = bins - 1
			}
			diff := points[i].Value - points[j].Value
			sumDist[k] += d
			sumGamma[k] += diff * diff / 2
			counts[k]++
		}
	}

	sample := make([]VariogramBin, 0, bins)
	for k := 0; k < bins; k++ {
		if counts[k] == 0 {
			continue
		}
		n := float64(counts[k])
		sample = append(sample, VariogramBin{
			Distance: sumDist[k] / n,
			Gamma:    sumGamma[k] / n,
			Pairs:    counts[k],
		})
	}
	if len(sample) < 2 {
		return nil, fmt.Errorf("semivariogram: %d usable lags: %w", len(sample), ErrTooFewPoints)
	}
	return sample, nil
}

// inDirection reports whether the pair azimuth falls within tol degrees of
// the requested direction, treating a pair and its reverse as equivalent.
func inDirection(p, q Point, direction, tol float64) bool {
	azimuth := math.Atan2(q.X-p.X, q.Y-p.Y) * 180 / math.Pi
	diff := math.Mod(azimuth-direction, 180)
	if diff < -90 {
		diff += 180
	} else if diff > 90 {
		diff -= 180
	}
	return math.Abs(diff) <= tol
}
