package geostat

import "fmt"

// Thin collapses stations closer together than spacing into a single point
// at their centroid with the mean value and mean covariates. Kriging
// requires this when a network contains duplicate or near-duplicate
// locations, which make the system singular.
//
// The implementation snaps points to a square binning lattice of the given
// spacing and averages each occupied bin.
func Thin(points []Point, spacing float64) ([]Point, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("thin: %w", ErrTooFewPoints)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("thin: spacing must be positive, got %g", spacing)
	}

	r := Bounds(points)

	type cell struct{ cx, cy int }
	type bin struct {
		sum   Point
		count int
	}
	bins := make(map[cell]*bin, len(points))

	ncov := len(points[0].Covariates)
	for _, p := range points {
		key := cell{
			cx: int((p.X - r.Min[0]) / spacing),
			cy: int((p.Y - r.Min[1]) / spacing),
		}
		b, ok := bins[key]
		if !ok {
			b = &bin{sum: Point{Covariates: make([]float64, ncov)}}
			bins[key] = b
		}
		b.sum.X += p.X
		b.sum.Y += p.Y
		b.sum.Value += p.Value
		for i := 0; i < ncov && i < len(p.Covariates); i++ {
			b.sum.Covariates[i] += p.Covariates[i]
		}
		b.count++
	}

	thinned := make([]Point, 0, len(bins))
	for _, b := range bins {
		n := float64(b.count)
		out := Point{
			X:     b.sum.X / n,
			Y:     b.sum.Y / n,
			Value: b.sum.Value / n,
		}
		if ncov > 0 {
			out.Covariates = make([]float64, ncov)
			for i := range out.Covariates {
				out.Covariates[i] = b.sum.Covariates[i] / n
			}
		}
		thinned = append(thinned, out)
	}
	return thinned, nil
}
