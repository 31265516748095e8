package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/internal/numeric"
)

// Form selects one of the Lorentzian parameterisations. The suffix c adds
// a constant offset as the last parameter.
//
//	1   1/(p1(x²+1))
//	2   p1/(x²+p2)
//	3   p1/((x-p2)²+p3)
type Form string

const (
	Form1  Form = "1"
	Form1c Form = "1c"
	Form2  Form = "2"
	Form2c Form = "2c"
	Form3  Form = "3"
	Form3c Form = "3c"
)

// ParseForm accepts the six form names.
func ParseForm(s string) (Form, error) {
	switch f := Form(s); f {
	case Form1, Form1c, Form2, Form2c, Form3, Form3c:
		return f, nil
	}
	return "", fmt.Errorf("unknown lorentzian form %q", s)
}

// NumParams is the length of the parameter vector for the form.
func (f Form) NumParams() int {
	switch f {
	case Form1:
		return 1
	case Form1c, Form2:
		return 2
	case Form2c, Form3:
		return 3
	case Form3c:
		return 4
	}
	return 0
}

// HasOffset reports whether the last parameter is a constant offset.
func (f Form) HasOffset() bool {
	return f == Form1c || f == Form2c || f == Form3c
}

// HasCenter reports whether p2 is a free centre position.
func (f Form) HasCenter() bool {
	return f == Form3 || f == Form3c
}

// Eval evaluates the form at x.
func (f Form) Eval(p []float64, x float64) float64 {
	var v float64
	switch f {
	case Form1, Form1c:
		v = 1 / (p[0] * (x*x + 1))
	case Form2, Form2c:
		v = p[0] / (x*x + p[1])
	case Form3, Form3c:
		d := x - p[1]
		v = p[0] / (d*d + p[2])
	default:
		return math.NaN()
	}
	if f.HasOffset() {
		v += p[len(p)-1]
	}
	return v
}

// StartParams is the default initial guess: a peak in the middle of x,
// a tenth of the span wide, sitting on min(y).
func (f Form) StartParams(x, y []float64) []float64 {
	p3 := math.Pow((floats.Max(x)-floats.Min(x))/10, 2)
	p2 := (floats.Max(x) + floats.Min(x)) / 2
	p1 := floats.Max(y) * p3
	c := floats.Min(y)

	switch f {
	case Form1:
		return []float64{p1}
	case Form1c:
		return []float64{p1, c}
	case Form2:
		return []float64{p1, p3}
	case Form2c:
		return []float64{p1, p3, c}
	case Form3:
		return []float64{p1, p2, p3}
	case Form3c:
		return []float64{p1, p2, p3, c}
	}
	return nil
}

// Lorentzian is a fitted Lorentzian. Jacobian is d(yfit)/dp at the
// solution, one row per x. Q is centre/FWHM and is zero for forms without
// a centre.
type Lorentzian struct {
	Form     Form
	Jacobian *mat.Dense
	Q        float64
	R2       float64
	Result
}

// Center of the peak, or NaN when the form has none.
func (l Lorentzian) Center() float64 {
	if !l.Form.HasCenter() {
		return math.NaN()
	}
	return l.Params[1]
}

// FWHM is 2·sqrt(p3) for the centred forms, NaN otherwise.
func (l Lorentzian) FWHM() float64 {
	if !l.Form.HasCenter() || l.Params[2] <= 0 {
		return math.NaN()
	}
	return 2 * math.Sqrt(l.Params[2])
}

// Lorentz fits one of the Lorentzian forms to (x, y). A nil p0 uses
// StartParams; bounds may be nil.
func (f *Fitter) Lorentz(
	x, y []float64,
	form Form,
	p0 []float64,
	bounds *Bounds,
) (
	Lorentzian,
	error,
) {

	n := form.NumParams()
	if n == 0 {
		return Lorentzian{}, fmt.Errorf("unknown lorentzian form %q", form)
	}
	s := sweep.Sweep{Current: x, Signal: y}
	if err := s.Validate(); err != nil {
		return Lorentzian{}, err
	}
	xs, ys, _ := s.Finite()
	if len(xs) < n {
		return Lorentzian{}, fmt.Errorf("%w: form %s needs %d points, have %d", sweep.ErrInsufficientData, form, n, len(xs))
	}

	if p0 == nil {
		p0 = form.StartParams(xs, ys)
	}
	if len(p0) != n {
		return Lorentzian{}, fmt.Errorf("%w: form %s takes %d parameters, got %d", sweep.ErrMismatchedLengths, form, n, len(p0))
	}
	lims, err := bounds.limits(n)
	if err != nil {
		return Lorentzian{}, err
	}

	params, err := f.solve(problem{
		size: len(xs),
		residuals: func(dst, p []float64) {
			for i := range xs {
				dst[i] = form.Eval(p, xs[i]) - ys[i]
			}
		},
		start:  append([]float64(nil), p0...),
		limits: lims,
	})
	if err != nil {
		return Lorentzian{}, err
	}

	l := Lorentzian{
		Form:     form,
		Jacobian: centralJacobian(form.Eval, params, x),
		Result:   newResult(params, x, y, form.Eval),
	}
	l.R2 = numeric.RSquared(y, l.Fitted)
	if fwhm := l.FWHM(); !math.IsNaN(fwhm) && fwhm > 0 {
		l.Q = l.Center() / fwhm
	}
	l.Goodness = l.Q
	return l, nil
}

// centralJacobian differentiates model with respect to each parameter
// using a step of sqrt(eps)·(|p|+1).
func centralJacobian(
	model func(p []float64, x float64) float64,
	params, x []float64,
) *mat.Dense {

	step := math.Sqrt(2.220446049250313e-16)
	jac := mat.NewDense(len(x), len(params), nil)
	up := make([]float64, len(params))
	down := make([]float64, len(params))

	for j := range params {
		copy(up, params)
		copy(down, params)
		dp := step * (math.Abs(params[j]) + 1)
		up[j] += dp
		down[j] -= dp
		for i, xi := range x {
			jac.Set(i, j, (model(up, xi)-model(down, xi))/(2*dp))
		}
	}
	return jac
}
