package geostat

import "math"

// ModelType names a parametric semivariogram shape.
type ModelType string

const (
	Spherical   ModelType = "spherical"
	Exponential ModelType = "exponential"
	Gaussian    ModelType = "gaussian"
)

// VariogramModel is a fitted parametric semivariogram curve.
//
// Gamma(0) is zero; Gamma jumps to Nugget immediately off the origin and
// approaches Nugget+PartialSill (the sill) near Range. For the exponential
// and gaussian shapes Range is the practical range at which ~95% of the sill
// is reached.
type VariogramModel struct {
	Type        ModelType
	Nugget      float64
	PartialSill float64
	Range       float64

	// Anis, when non-nil, replaces euclidean separation with the
	// anisotropic distance before evaluating the curve.
	Anis *Anisotropy
}

// Sill is the total variance the model levels off at.
func (m VariogramModel) Sill() float64 { return m.Nugget + m.PartialSill }

// Gamma evaluates the semivariance at separation distance h >= 0.
func (m VariogramModel) Gamma(h float64) float64 {
	if h == 0 {
		return 0
	}
	return m.Nugget + m.PartialSill*m.structure(h)
}

// Covariance evaluates the covariogram C(h) = Sill - Gamma(h), used to state
// kriging systems in covariance form.
func (m VariogramModel) Covariance(h float64) float64 {
	return m.Sill() - m.Gamma(h)
}

// Distance returns the separation between two points under the model's
// anisotropy, or the euclidean distance if the model is isotropic.
func (m VariogramModel) Distance(p, q Point) float64 {
	if m.Anis != nil {
		return m.Anis.Distance(p, q)
	}
	return distance(p, q)
}

// structure is the unit-sill, zero-nugget part of the curve.
func (m VariogramModel) structure(h float64) float64 {
	u := h / m.Range
	switch m.Type {
	case Spherical:
		if u >= 1 {
			return 1
		}
		return 1.5*u - 0.5*u*u*u
	case Exponential:
		return 1 - math.Exp(-3*u)
	case Gaussian:
		return 1 - math.Exp(-3*u*u)
	}
	return 1
}

// structureGradient returns the partial derivative of Gamma with respect to
// Range, used by the weighted least-squares fitter.
func (m VariogramModel) structureGradient(h float64) float64 {
	u := h / m.Range
	switch m.Type {
	case Spherical:
		if u >= 1 {
			return 0
		}
		return m.PartialSill * (-1.5*u + 1.5*u*u*u) / m.Range
	case Exponential:
		return m.PartialSill * math.Exp(-3*u) * (-3 * u / m.Range)
	case Gaussian:
		return m.PartialSill * math.Exp(-3*u*u) * (-6 * u * u / m.Range)
	}
	return 0
}
