package fit

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/internal/numeric"
)

// Polynomial holds coefficients highest power first.
type Polynomial struct {
	Coeffs []float64
	Result
}

// Eval uses Horner's rule.
func (p Polynomial) Eval(x float64) float64 {
	return horner(p.Coeffs, x)
}

func horner(c []float64, x float64) float64 {
	var v float64
	for _, k := range c {
		v = v*x + k
	}
	return v
}

var superscripts = []string{"", "", "²", "³", "⁴", "⁵", "⁶", "⁷", "⁸", "⁹"}

func (p Polynomial) String() string {
	var b strings.Builder
	b.WriteString("Fit: y = ")
	deg := len(p.Coeffs) - 1
	for i, c := range p.Coeffs {
		pow := deg - i
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%.3e", c)
		switch {
		case pow == 1:
			b.WriteString("x")
		case pow > 1 && pow < len(superscripts):
			b.WriteString("x" + superscripts[pow])
		case pow > 1:
			fmt.Fprintf(&b, "x^%d", pow)
		}
	}
	return b.String()
}

// Polyfit is a linear least-squares polynomial fit of the given degree over
// the finite pairs of (x, y).
func Polyfit(
	x, y []float64,
	degree int,
) (
	Polynomial,
	error,
) {

	if degree < 0 {
		return Polynomial{}, fmt.Errorf("negative degree %d", degree)
	}
	s := sweep.Sweep{Current: x, Signal: y}
	if err := s.Validate(); err != nil {
		return Polynomial{}, err
	}
	xs, ys, _ := s.Finite()
	if len(xs) < degree+1 {
		return Polynomial{}, fmt.Errorf("%w: degree %d needs %d points, have %d", sweep.ErrInsufficientData, degree, degree+1, len(xs))
	}

	cols := degree + 1
	a := mat.NewDense(len(xs), cols, nil)
	for i, xi := range xs {
		v := 1.0
		for j := cols - 1; j >= 0; j-- {
			a.Set(i, j, v)
			v *= xi
		}
	}

	var coef mat.VecDense
	if err := coef.SolveVec(a, mat.NewVecDense(len(ys), ys)); err != nil {
		return Polynomial{}, fmt.Errorf("%w: %v", sweep.ErrDegenerateInput, err)
	}

	c := make([]float64, cols)
	for j := range c {
		c[j] = coef.AtVec(j)
	}

	res := newResult(c, x, y, horner)
	res.Goodness = numeric.RSquared(y, res.Fitted)
	return Polynomial{Coeffs: c, Result: res}, nil
}
