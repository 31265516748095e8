// Package numeric holds the array helpers shared by the detectors and fitters.
package numeric

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Gradient returns dy/dx with second-order central differences in the
// interior (non-uniform spacing allowed) and first-order differences at the
// two ends. Where one neighbour shares x the one-sided difference to the
// other is used; a point with no distinct neighbour gets 0, so the result
// stays finite for repeated x. Fewer than two points give a zero slice.
func Gradient(
	y, x []float64,
) []float64 {

	n := len(y)
	g := make([]float64, n)
	if n < 2 || len(x) != n {
		return g
	}

	g[0] = diff(y[1]-y[0], x[1]-x[0])
	g[n-1] = diff(y[n-1]-y[n-2], x[n-1]-x[n-2])

	for i := 1; i < n-1; i++ {
		hs := x[i] - x[i-1]
		hd := x[i+1] - x[i]
		switch {
		case hs == 0:
			g[i] = diff(y[i+1]-y[i], hd)
		case hd == 0:
			g[i] = diff(y[i]-y[i-1], hs)
		default:
			g[i] = (hs*hs*y[i+1] + (hd*hd-hs*hs)*y[i] - hd*hd*y[i-1]) / (hs * hd * (hd + hs))
		}
	}

	return g
}

func diff(dy, dx float64) float64 {
	if dx == 0 {
		return 0
	}
	return dy / dx
}

// CumTrapz is the running trapezoidal integral of y over x, starting at 0.
func CumTrapz(
	y, x []float64,
) []float64 {

	out := make([]float64, len(y))
	for i := 1; i < len(y) && i < len(x); i++ {
		out[i] = out[i-1] + (y[i-1]+y[i])*(x[i]-x[i-1])/2
	}
	return out
}

// RollingMean averages each trailing window of w samples. Entries without a
// full window are NaN.
func RollingMean(
	y []float64,
	w int,
) []float64 {

	out := make([]float64, len(y))
	for i := range out {
		if w < 1 || i < w-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = floats.Sum(y[i-w+1:i+1]) / float64(w)
	}
	return out
}

// Mean of y; NaN for an empty slice.
func Mean(y []float64) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	return stat.Mean(y, nil)
}

// RSquared is the coefficient of determination of fitted against y over the
// pairs where both are finite. A constant y fitted exactly scores 1.
func RSquared(
	y, fitted []float64,
) float64 {

	var obs, model []float64
	for i := range y {
		if i < len(fitted) && IsFinite(y[i]) && IsFinite(fitted[i]) {
			obs = append(obs, y[i])
			model = append(model, fitted[i])
		}
	}
	if len(obs) == 0 {
		return math.NaN()
	}

	mean := stat.Mean(obs, nil)
	var ssRes, ssTot float64
	for i := range obs {
		ssRes += (obs[i] - model[i]) * (obs[i] - model[i])
		ssTot += (obs[i] - mean) * (obs[i] - mean)
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// SumSquares is the sum of squared finite entries.
func SumSquares(r []float64) float64 {
	var s float64
	for _, v := range r {
		if IsFinite(v) {
			s += v * v
		}
	}
	return s
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MinMax of the finite entries of y. ok is false when there are none.
func MinMax(
	y []float64,
) (
	min, max float64,
	ok bool,
) {

	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range y {
		if !IsFinite(v) {
			continue
		}
		ok = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}
