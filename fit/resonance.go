package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
)

// FindPeaks returns the indices of local maxima at or above minHeight.
// A flat top counts once, at its middle sample (rounded down). The first
// and last samples are never peaks.
func FindPeaks(y []float64, minHeight float64) []int {

	var peaks []int
	for i := 1; i < len(y)-1; i++ {
		if !(y[i] > y[i-1]) {
			continue
		}
		j := i
		for j+1 < len(y)-1 && y[j+1] == y[i] {
			j++
		}
		if y[j+1] < y[i] && y[i] >= minHeight {
			peaks = append(peaks, (i+j)/2)
		}
		i = j
	}
	return peaks
}

// Resonance is a Lorentzian fitted to one peak of a spectrum.
type Resonance struct {
	Peak   int
	Center float64
	FWHM   float64
	Q      float64
	R2     float64
	X      []float64
	Y      []float64 // normalised to the window maximum
	Fit    Lorentzian
}

// Resonance fits a centred Lorentzian with offset to the samples within
// halfWindow of peak. The window is normalised to its maximum and shifted
// so the peak sits at zero before fitting; Center is reported in the
// original x units.
func (f *Fitter) Resonance(
	x, y []float64,
	peak, halfWindow int,
) (
	Resonance,
	error,
) {

	if len(x) != len(y) {
		return Resonance{}, fmt.Errorf("%w: %d x values, %d y values", sweep.ErrMismatchedLengths, len(x), len(y))
	}
	if peak < 0 || peak >= len(x) {
		return Resonance{}, fmt.Errorf("%w: peak %d outside %d samples", sweep.ErrInsufficientData, peak, len(x))
	}

	lo, hi := max(0, peak-halfWindow), min(len(x), peak+halfWindow+1)
	if hi-lo < Form3c.NumParams()+1 {
		return Resonance{}, fmt.Errorf("%w: window of %d samples", sweep.ErrInsufficientData, hi-lo)
	}

	wx := make([]float64, hi-lo)
	wy := make([]float64, hi-lo)
	copy(wy, y[lo:hi])
	top := floats.Max(wy)
	if !(top > 0) {
		return Resonance{}, fmt.Errorf("%w: window maximum %g", sweep.ErrDegenerateInput, top)
	}
	floats.Scale(1/top, wy)

	origin := x[peak]
	for i := range wx {
		wx[i] = x[lo+i] - origin
	}

	l, err := f.Lorentz(wx, wy, Form3c, nil, nil)
	if err != nil {
		return Resonance{}, err
	}

	r := Resonance{
		Peak:   peak,
		Center: l.Center() + origin,
		FWHM:   l.FWHM(),
		R2:     l.R2,
		X:      wx,
		Y:      wy,
		Fit:    l,
	}
	if r.FWHM > 0 && !math.IsNaN(r.FWHM) {
		r.Q = r.Center / r.FWHM
	}
	return r, nil
}
