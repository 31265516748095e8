package fit

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/optimize"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
)

// problem is one least-squares fit: residuals(dst, p) fills dst with
// model - data for the parameter vector p.
type problem struct {
	size      int
	residuals func(dst, p []float64)
	start     []float64
	limits    []limit
}

// solve runs Levenberg-Marquardt on the transformed variables and maps the
// answer back. Reaching the iteration cap, a singular step, a solver
// error or a non-finite answer are all reported as ErrFitDivergence.
func (f *Fitter) solve(
	pr problem,
) (
	out []float64,
	err error,
) {

	// lm panics on a singular normal-equation step.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", sweep.ErrFitDivergence, r)
		}
	}()

	dim := len(pr.start)
	lims := pr.limits
	if lims == nil {
		lims, _ = (*Bounds)(nil).limits(dim)
	}

	toExternal := func(dst, u []float64) {
		for i := range u {
			dst[i] = lims[i].external(u[i])
		}
	}

	p := make([]float64, dim)
	fn := func(dst, u []float64) {
		toExternal(p, u)
		pr.residuals(dst, p)
	}

	u0 := make([]float64, dim)
	for i, v := range pr.start {
		u0[i] = lims[i].internal(v)
	}

	maxIter := f.iterations()
	jacobian := lm.NumJac{Func: fn}

	toBeSolved := lm.LMProblem{
		Dim:        dim,
		Size:       pr.size,
		Func:       fn,
		Jac:        jacobian.Jac,
		InitParams: u0,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	results, err := lm.LM(toBeSolved, &lm.Settings{Iterations: maxIter, ObjectiveTol: 1e-16})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sweep.ErrFitDivergence, err)
	}
	if results.Status == optimize.IterationLimit {
		return nil, fmt.Errorf("%w: no convergence after %d iterations", sweep.ErrFitDivergence, maxIter)
	}

	out = make([]float64, dim)
	toExternal(out, results.X)
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: parameter %d is %v", sweep.ErrFitDivergence, i, v)
		}
	}
	return out, nil
}
