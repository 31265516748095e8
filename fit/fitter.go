// Package fit holds the parametric models used on a sweep once the
// detectors have had their say: a hinge fit for the lasing threshold, a
// power law for I·dV/dI, a family of Lorentzians for resonances and an
// ordinary polynomial fit for drift curves.
//
// Nonlinear problems are solved with Levenberg-Marquardt from
// github.com/maorshutman/lm using a numerical Jacobian. Bounded
// parameters are mapped through MINUIT style transforms so that the
// unconstrained solver never leaves the feasible box.
package fit

import "github.com/HamletTheHamster/Sweep-Analysis-in-Go/internal/numeric"

// DefaultMaxIterations caps Jacobian evaluations per nonlinear fit.
const DefaultMaxIterations = 1000

// Fitter carries the solver settings shared by every model.
type Fitter struct {
	MaxIterations int `yaml:"max_iterations"`
}

// New returns a Fitter with default settings.
func New() *Fitter {
	return &Fitter{MaxIterations: DefaultMaxIterations}
}

func (f *Fitter) iterations() int {
	if f == nil || f.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return f.MaxIterations
}

// Result is what every fit reports. Fitted and Residuals are aligned with
// the x values passed in; entries for non-finite input pairs are NaN.
// Goodness is R² except for Lorentzians, where it is Q.
type Result struct {
	Params    []float64
	Fitted    []float64
	Residuals []float64
	ResNorm   float64
	Goodness  float64
}

func newResult(
	params, x, y []float64,
	model func(p []float64, x float64) float64,
) Result {

	res := Result{
		Params:    params,
		Fitted:    make([]float64, len(x)),
		Residuals: make([]float64, len(x)),
	}
	for i := range x {
		res.Fitted[i] = model(params, x[i])
		res.Residuals[i] = y[i] - res.Fitted[i]
	}
	res.ResNorm = numeric.SumSquares(res.Residuals)
	return res
}
