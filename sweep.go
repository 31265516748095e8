// Package sweep holds the data model shared by the threshold detectors and
// curve fitters: a paired current/response measurement and the error values
// used to report why a channel produced no result.
package sweep

import (
	"fmt"
	"math"
)

// Sweep is one current ramp. Current is ascending (or nearly so) and already
// in the caller's physical units; Signal is power, log-power or voltage.
// Either slice may carry NaN from upstream parsing.
type Sweep struct {
	Current []float64
	Signal  []float64
}

// Validate checks the length invariant.
func (s Sweep) Validate() error {
	if len(s.Current) != len(s.Signal) {
		return fmt.Errorf("%w: %d currents, %d samples", ErrMismatchedLengths, len(s.Current), len(s.Signal))
	}
	if len(s.Current) < 2 {
		return fmt.Errorf("%w: %d points", ErrInsufficientData, len(s.Current))
	}
	return nil
}

// Finite returns the pairs where both values are finite, together with the
// index of each kept pair in the original sweep.
func (s Sweep) Finite() (
	current, signal []float64,
	index []int,
) {

	n := len(s.Current)
	if len(s.Signal) < n {
		n = len(s.Signal)
	}

	current = make([]float64, 0, n)
	signal = make([]float64, 0, n)
	index = make([]int, 0, n)

	for i := 0; i < n; i++ {
		if isFinite(s.Current[i]) && isFinite(s.Signal[i]) {
			current = append(current, s.Current[i])
			signal = append(signal, s.Signal[i])
			index = append(index, i)
		}
	}

	return current, signal, index
}

// FirstCurrent returns the first finite current value, or NaN.
func (s Sweep) FirstCurrent() float64 {
	for _, c := range s.Current {
		if isFinite(c) {
			return c
		}
	}
	return math.NaN()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
