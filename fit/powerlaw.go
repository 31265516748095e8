package fit

import (
	"fmt"
	"math"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/internal/numeric"
)

// PowerLaw is a·I^b + c fitted to I·dV/dI. Current and IR are the points
// that entered the fit.
type PowerLaw struct {
	A, B, C float64
	Current []float64
	IR      []float64
	Result
}

func (p PowerLaw) String() string {
	return fmt.Sprintf("Fit: %.4f * I^%.4f + %.4f", p.A, p.B, p.C)
}

// Eval returns a·I^b + c.
func (p PowerLaw) Eval(current float64) float64 {
	return powerLaw([]float64{p.A, p.B, p.C}, current)
}

func powerLaw(p []float64, x float64) float64 {
	return p[0]*math.Pow(x, p[1]) + p[2]
}

var powerLawStart = []float64{0.01, 1.0, 0.1}

// DiffResistance differentiates V(I), forms I·dV/dI and fits a power law to
// the positive-current part of it.
func (f *Fitter) DiffResistance(
	current, voltage []float64,
) (
	PowerLaw,
	error,
) {

	s := sweep.Sweep{Current: current, Signal: voltage}
	if err := s.Validate(); err != nil {
		return PowerLaw{}, err
	}
	i, v, _ := s.Finite()
	if len(i) < 3 {
		return PowerLaw{}, fmt.Errorf("%w: %d finite points", sweep.ErrInsufficientData, len(i))
	}

	r := numeric.Gradient(v, i)
	var x, y []float64
	for k := range i {
		ir := i[k] * r[k]
		if i[k] > 0 && numeric.IsFinite(ir) {
			x = append(x, i[k])
			y = append(y, ir)
		}
	}
	if len(x) < len(powerLawStart) {
		return PowerLaw{}, fmt.Errorf("%w: %d points with positive current", sweep.ErrInsufficientData, len(x))
	}

	params, err := f.solve(problem{
		size: len(x),
		residuals: func(dst, p []float64) {
			for k := range x {
				dst[k] = powerLaw(p, x[k]) - y[k]
			}
		},
		start: append([]float64(nil), powerLawStart...),
	})
	if err != nil {
		return PowerLaw{}, err
	}

	res := newResult(params, x, y, powerLaw)
	res.Goodness = numeric.RSquared(y, res.Fitted)

	return PowerLaw{
		A:       params[0],
		B:       params[1],
		C:       params[2],
		Current: x,
		IR:      y,
		Result:  res,
	}, nil
}
