package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/internal/numeric"
)

// Piecewise is a hinge: flat at Baseline below Ith, rising with Slope above.
type Piecewise struct {
	Ith      float64
	Slope    float64
	Baseline float64
	Result
}

// Hinge evaluates the piecewise-linear threshold model.
func Hinge(ith, slope, baseline, current float64) float64 {
	if current < ith {
		return baseline
	}
	return slope*(current-ith) + baseline
}

func hinge(p []float64, x float64) float64 {
	return Hinge(p[0], p[1], p[2], x)
}

// Piecewise fits the hinge model to an LI curve. Ith is held inside the
// current range and the slope is kept non-negative.
func (f *Fitter) Piecewise(
	current, signal []float64,
) (
	Piecewise,
	error,
) {

	s := sweep.Sweep{Current: current, Signal: signal}
	if err := s.Validate(); err != nil {
		return Piecewise{}, err
	}
	x, y, _ := s.Finite()
	if len(x) < 3 {
		return Piecewise{}, fmt.Errorf("%w: piecewise fit needs 3 finite points, have %d", sweep.ErrInsufficientData, len(x))
	}

	xMin, xMax := floats.Min(x), floats.Max(x)
	yMin, yMax := floats.Min(y), floats.Max(y)
	if xMax == xMin || yMax == yMin {
		return Piecewise{}, fmt.Errorf("%w: flat sweep", sweep.ErrDegenerateInput)
	}

	// Solve on y scaled to [0, 1] so the solver tolerances mean the same
	// thing for W and mW data.
	scale := yMax - yMin
	yn := make([]float64, len(y))
	for i, v := range y {
		yn[i] = (v - yMin) / scale
	}

	lims := []limit{
		{lo: xMin, hi: xMax},
		{lo: 0, hi: math.Inf(1)},
		{lo: math.Inf(-1), hi: math.Inf(1)},
	}
	startSlope := 1 / (xMax - xMin)
	start := []float64{numeric.Mean(x), startSlope, 0}

	norm, err := f.solve(problem{
		size: len(x),
		residuals: func(dst, p []float64) {
			for i := range x {
				dst[i] = hinge(p, x[i]) - yn[i]
			}
		},
		start:  start,
		limits: lims,
	})
	if err != nil {
		return Piecewise{}, err
	}

	if lims[0].pinned(norm[0]) {
		return Piecewise{}, fmt.Errorf("%w: threshold pinned at %g", sweep.ErrFitDivergence, norm[0])
	}
	if norm[1] <= edge*startSlope {
		return Piecewise{}, fmt.Errorf("%w: zero slope", sweep.ErrFitDivergence)
	}
	params := []float64{norm[0], norm[1] * scale, norm[2]*scale + yMin}

	res := newResult(params, current, signal, hinge)
	res.Goodness = numeric.RSquared(signal, res.Fitted)

	return Piecewise{
		Ith:      params[0],
		Slope:    params[1],
		Baseline: params[2],
		Result:   res,
	}, nil
}
