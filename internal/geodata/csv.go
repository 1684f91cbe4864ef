// Package geodata loads the tabular, vector, and raster inputs of the
// analyses and brings them into a common coordinate reference system.
package geodata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/carlesmila/geoblog/internal/geostat"
)

// CSVColumns names the columns of a station table. Covariates is optional.
type CSVColumns struct {
	X          string
	Y          string
	Value      string
	Covariates []string
}

// ReadStationsCSV reads a station table with a header row into observation
// points. Rows with unparseable numbers are an error naming the line.
func ReadStationsCSV(path string, cols CSVColumns) ([]geostat.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stations csv: %w", err)
	}
	defer f.Close()

	points, err := parseStations(f, cols)
	if err != nil {
		return nil, fmt.Errorf("stations csv %s: %w", path, err)
	}
	return points, nil
}

func parseStations(r io.Reader, cols CSVColumns) ([]geostat.Point, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	col := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("missing column %q", name)
		}
		return i, nil
	}
	xi, err := col(cols.X)
	if err != nil {
		return nil, err
	}
	yi, err := col(cols.Y)
	if err != nil {
		return nil, err
	}
	vi, err := col(cols.Value)
	if err != nil {
		return nil, err
	}
	ci := make([]int, len(cols.Covariates))
	for k, name := range cols.Covariates {
		if ci[k], err = col(name); err != nil {
			return nil, err
		}
	}

	var points []geostat.Point
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p := geostat.Point{}
		if p.X, err = strconv.ParseFloat(record[xi], 64); err != nil {
			return nil, fmt.Errorf("line %d: column %q: %w", line, cols.X, err)
		}
		if p.Y, err = strconv.ParseFloat(record[yi], 64); err != nil {
			return nil, fmt.Errorf("line %d: column %q: %w", line, cols.Y, err)
		}
		if p.Value, err = strconv.ParseFloat(record[vi], 64); err != nil {
			return nil, fmt.Errorf("line %d: column %q: %w", line, cols.Value, err)
		}
		for k, idx := range ci {
			v, err := strconv.ParseFloat(record[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %q: %w", line, cols.Covariates[k], err)
			}
			p.Covariates = append(p.Covariates, v)
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	return points, nil
}
