package smooth

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SavGol is a Savitzky-Golay filter. The window is forced odd, at least 3
// and no longer than the signal; polyorder is clamped below the window.
// The first and last half-window are taken from a polynomial fitted to the
// first and last full window.
func SavGol(
	signal []float64,
	window, polyorder int,
) []float64 {

	n := len(signal)
	out := make([]float64, n)
	copy(out, signal)
	if n < 3 {
		return out
	}

	w := FitWindow(window, n)
	order := polyorder
	if order >= w {
		order = w - 1
	}
	if order < 0 {
		order = 0
	}
	half := w / 2

	coeffs, err := savgolCoeffs(w, order)
	if err != nil {
		return out
	}

	for i := half; i < n-half; i++ {
		out[i] = floats.Dot(coeffs, signal[i-half:i+half+1])
	}

	edge := func(seg []float64, offset int, positions []int) {
		if floats.HasNaN(seg) {
			return
		}
		poly, err := polyLeastSquares(seg, order)
		if err != nil {
			return
		}
		for _, p := range positions {
			out[offset+p] = evalPoly(poly, float64(p))
		}
	}

	head := make([]int, half)
	tail := make([]int, half)
	for k := 0; k < half; k++ {
		head[k] = k
		tail[k] = w - half + k
	}
	edge(signal[:w], 0, head)
	edge(signal[n-w:], n-w, tail)

	return out
}

// FitWindow shrinks a Savitzky-Golay window to fit n samples, keeping it odd
// and at least 3.
func FitWindow(window, n int) int {
	limit := n
	if limit%2 == 0 {
		limit--
	}
	w := window
	if w > limit {
		w = limit
	}
	if w < 3 {
		w = 3
	}
	if w%2 == 0 {
		w++
	}
	return w
}

// savgolCoeffs are the weights that evaluate, at the window centre, the
// least-squares polynomial of the given order through w samples.
func savgolCoeffs(
	w, order int,
) (
	[]float64, error,
) {

	half := w / 2
	a := mat.NewDense(w, order+1, nil)
	for k := 0; k < w; k++ {
		t := float64(k - half)
		p := 1.0
		for j := 0; j <= order; j++ {
			a.Set(k, j, p)
			p *= t
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	e0 := mat.NewVecDense(order+1, nil)
	e0.SetVec(0, 1)

	var z mat.VecDense
	if err := z.SolveVec(&ata, e0); err != nil {
		return nil, err
	}

	var c mat.VecDense
	c.MulVec(a, &z)

	return c.RawVector().Data, nil
}

// polyLeastSquares fits y[k] over positions k = 0..len(y)-1; coefficients
// lowest power first.
func polyLeastSquares(
	y []float64,
	order int,
) (
	[]float64, error,
) {

	a := mat.NewDense(len(y), order+1, nil)
	for k := range y {
		p := 1.0
		for j := 0; j <= order; j++ {
			a.Set(k, j, p)
			p *= float64(k)
		}
	}

	var coef mat.VecDense
	if err := coef.SolveVec(a, mat.NewVecDense(len(y), append([]float64(nil), y...))); err != nil {
		return nil, err
	}
	return coef.RawVector().Data, nil
}

func evalPoly(coef []float64, t float64) float64 {
	var v float64
	for j := len(coef) - 1; j >= 0; j-- {
		v = v*t + coef[j]
	}
	return v
}
