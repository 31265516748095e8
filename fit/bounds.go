package fit

import (
	"fmt"
	"math"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
)

// Bounds constrains parameters elementwise. A nil slice, or an infinite
// entry, leaves that side open.
type Bounds struct {
	Lower []float64
	Upper []float64
}

func (b *Bounds) limits(dim int) ([]limit, error) {

	lims := make([]limit, dim)
	for i := range lims {
		lims[i] = limit{lo: math.Inf(-1), hi: math.Inf(1)}
	}
	if b == nil {
		return lims, nil
	}
	if b.Lower != nil && len(b.Lower) != dim || b.Upper != nil && len(b.Upper) != dim {
		return nil, fmt.Errorf("%w: bounds need %d entries", sweep.ErrMismatchedLengths, dim)
	}
	for i := range lims {
		if b.Lower != nil && !math.IsNaN(b.Lower[i]) {
			lims[i].lo = b.Lower[i]
		}
		if b.Upper != nil && !math.IsNaN(b.Upper[i]) {
			lims[i].hi = b.Upper[i]
		}
		if lims[i].lo >= lims[i].hi {
			return nil, fmt.Errorf("%w: bound %d is empty [%g, %g]", sweep.ErrDegenerateInput, i, lims[i].lo, lims[i].hi)
		}
	}
	return lims, nil
}

// limit maps an unconstrained solver variable u onto [lo, hi].
type limit struct {
	lo, hi float64
}

// edge keeps start values off the flat spots of the transforms.
const edge = 1e-6

func (l limit) external(u float64) float64 {
	loOK, hiOK := !math.IsInf(l.lo, 0), !math.IsInf(l.hi, 0)
	switch {
	case loOK && hiOK:
		return l.lo + (l.hi-l.lo)*(math.Sin(u)+1)/2
	case loOK:
		return l.lo + math.Sqrt(u*u+1) - 1
	case hiOK:
		return l.hi + 1 - math.Sqrt(u*u+1)
	}
	return u
}

func (l limit) internal(p float64) float64 {
	loOK, hiOK := !math.IsInf(l.lo, 0), !math.IsInf(l.hi, 0)
	switch {
	case loOK && hiOK:
		s := 2*(p-l.lo)/(l.hi-l.lo) - 1
		return math.Asin(math.Max(-1+edge, math.Min(1-edge, s)))
	case loOK:
		d := math.Max(p-l.lo, edge)
		return math.Sqrt((d+1)*(d+1) - 1)
	case hiOK:
		d := math.Max(l.hi-p, edge)
		return math.Sqrt((d+1)*(d+1) - 1)
	}
	return p
}

// pinned reports whether p sits on a finite bound.
func (l limit) pinned(p float64) bool {
	tol := edge * math.Max(1, math.Abs(p))
	if !math.IsInf(l.lo, 0) && !math.IsInf(l.hi, 0) {
		tol = edge * (l.hi - l.lo)
	}
	return !math.IsInf(l.lo, 0) && p-l.lo <= tol || !math.IsInf(l.hi, 0) && l.hi-p <= tol
}
