package geostat

import "errors"

var (
	// ErrNoNeighbors is returned when no observation falls within the
	// search radius of a prediction location.
	ErrNoNeighbors = errors.New("geostat: no neighbors within search radius")

	// ErrNoConvergence is returned by the variogram fitter when the
	// iteration limit is reached before the parameters settle.
	ErrNoConvergence = errors.New("geostat: variogram fit did not converge")

	// ErrSingular is returned when the kriging system cannot be solved,
	// typically because of duplicate station locations.
	ErrSingular = errors.New("geostat: singular kriging system")

	// ErrTooFewPoints is returned when an operation needs more
	// observations than it was given.
	ErrTooFewPoints = errors.New("geostat: too few points")

	// ErrMissingCovariates is returned by drift kriging when a query
	// point lacks the covariates the drift terms need.
	ErrMissingCovariates = errors.New("geostat: missing drift covariates")
)
