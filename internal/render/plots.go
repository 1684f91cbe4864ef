package render

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/carlesmila/geoblog/internal/geostat"
)

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
	mapWidth   = 6 * vg.Inch
	mapHeight  = 6 * vg.Inch

	curveSamples = 120
)

// VariogramPlot renders the empirical semivariogram as points with the
// fitted model curves drawn over it.
func VariogramPlot(path, title string, sample []geostat.VariogramBin, models map[string]geostat.VariogramModel) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "distance"
	p.Y.Label.Text = "semivariance"

	xys := make(plotter.XYs, len(sample))
	var maxDist float64
	for i, b := range sample {
		xys[i] = plotter.XY{X: b.Distance, Y: b.Gamma}
		if b.Distance > maxDist {
			maxDist = b.Distance
		}
	}
	points, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("variogram plot: %w", err)
	}
	p.Add(points)
	p.Legend.Add("sample", points)

	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		m := models[name]
		curve := make(plotter.XYs, curveSamples)
		for j := range curve {
			h := maxDist * float64(j+1) / curveSamples
			curve[j] = plotter.XY{X: h, Y: m.Gamma(h)}
		}
		line, err := plotter.NewLine(curve)
		if err != nil {
			return fmt.Errorf("variogram plot: %w", err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("variogram plot: %w", err)
	}
	return nil
}

// ScatterPlot renders paired values (e.g. observed vs cross-validation
// predicted, or temperature vs elevation) with an identity line when
// identity is true.
func ScatterPlot(path, title, xLabel, yLabel string, xs, ys []float64, identity bool) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("scatter plot: %d x values vs %d y values", len(xs), len(ys))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	xys := make(plotter.XYs, len(xs))
	for i := range xs {
		xys[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	points, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("scatter plot: %w", err)
	}
	p.Add(points)

	if identity && len(xs) > 0 {
		lo, hi := xs[0], xs[0]
		for _, v := range append(append([]float64{}, xs...), ys...) {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		line, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
		if err != nil {
			return fmt.Errorf("scatter plot: %w", err)
		}
		line.Color = plotutil.Color(1)
		p.Add(line)
	}

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("scatter plot: %w", err)
	}
	return nil
}

// gridXYZ adapts a prediction grid to the heat map's lattice interface,
// mapping NoData cells to NaN so they are left blank.
type gridXYZ struct {
	grid     *geostat.Grid
	variance bool
}

func (g gridXYZ) Dims() (int, int) { return g.grid.Width, g.grid.Height }

func (g gridXYZ) X(c int) float64 { return g.grid.X(c) }

func (g gridXYZ) Y(r int) float64 { return g.grid.Y(r) }

func (g gridXYZ) Z(c, r int) float64 {
	row := g.grid.Height - 1 - r
	var v float64
	if g.variance {
		v = g.grid.VarianceAt(row, c)
	} else {
		v = g.grid.At(row, c)
	}
	if v == geostat.NoData {
		return math.NaN()
	}
	return v
}

// MapPNG renders the interpolated surface as a heat map with the stations
// drawn on top.
func MapPNG(path, title string, grid *geostat.Grid, stations []geostat.Point) error {
	return mapPNG(path, title, gridXYZ{grid: grid}, stations)
}

// VarianceMapPNG renders the kriging variance surface.
func VarianceMapPNG(path, title string, grid *geostat.Grid) error {
	return mapPNG(path, title, gridXYZ{grid: grid, variance: true}, nil)
}

func mapPNG(path, title string, data plotter.GridXYZ, stations []geostat.Point) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	heat := plotter.NewHeatMap(data, palette.Heat(12, 1))
	p.Add(heat)

	if len(stations) > 0 {
		xys := make(plotter.XYs, len(stations))
		for i, s := range stations {
			xys[i] = plotter.XY{X: s.X, Y: s.Y}
		}
		points, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("map: %w", err)
		}
		p.Add(points)
	}

	if err := p.Save(mapWidth, mapHeight, path); err != nil {
		return fmt.Errorf("map: %w", err)
	}
	return nil
}
