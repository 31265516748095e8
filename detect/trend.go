package detect

import (
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/internal/numeric"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/smooth"
)

// Gradient proposes indices where the smoothed slope is steeper after the
// index than before it, and where almost nothing has been emitted yet: the
// integral of the raw signal up to the index must stay under IntegralGate
// of the whole sweep's integral.
type Gradient struct {
	Window       Window
	Smoothing    smooth.Config
	IntegralGate float64
}

func (d Gradient) Method() Method { return GradientMethod }

func (d Gradient) Detect(signal, current []float64) []int {
	x, y, index := finite(signal, current)
	t, ok := newTrend(x, y, d.Smoothing, false)
	if !ok {
		return nil
	}

	var out []int
	for i := 1; i < len(y)-1; i++ {
		if !d.Window.Contains(x[i]) || !t.quiet(i, d.IntegralGate) {
			continue
		}
		if t.after(t.slope, i) > t.before(t.slope, i) {
			out = append(out, index[i])
		}
	}

	return out
}

// Elbow adds curvature to the Gradient test: the second derivative must also
// grow across the index and the slope at the index must already exceed the
// average slope before it.
type Elbow struct {
	Window       Window
	Smoothing    smooth.Config
	IntegralGate float64
}

func (d Elbow) Method() Method { return ElbowMethod }

func (d Elbow) Detect(signal, current []float64) []int {
	x, y, index := finite(signal, current)
	t, ok := newTrend(x, y, d.Smoothing, true)
	if !ok {
		return nil
	}

	var out []int
	for i := 1; i < len(y)-1; i++ {
		if !d.Window.Contains(x[i]) || !t.quiet(i, d.IntegralGate) {
			continue
		}
		slopeBefore := t.before(t.slope, i)
		if t.after(t.slope, i) <= slopeBefore {
			continue
		}
		if t.after(t.curve, i) <= t.before(t.curve, i) {
			continue
		}
		if t.slope.v[i] > slopeBefore {
			out = append(out, index[i])
		}
	}

	return out
}

// series keeps running sums so before/after means are O(1).
type series struct {
	v   []float64
	cum []float64 // cum[i] = sum of v[:i]
}

func newSeries(v []float64) series {
	cum := make([]float64, len(v)+1)
	for i, x := range v {
		cum[i+1] = cum[i] + x
	}
	return series{v: v, cum: cum}
}

type trend struct {
	slope    series
	curve    series
	integral []float64
	total    float64
}

// newTrend smooths y, differentiates it against x and integrates the raw
// signal above its minimum. ok is false when the sweep is too short or
// nothing is emitted at all.
func newTrend(
	x, y []float64,
	cfg smooth.Config,
	withCurvature bool,
) (
	trend, bool,
) {

	if len(y) < 3 {
		return trend{}, false
	}

	floor, _, _ := numeric.MinMax(y)
	lifted := make([]float64, len(y))
	for i, v := range y {
		lifted[i] = v - floor
	}
	integral := numeric.CumTrapz(lifted, x)
	total := integral[len(integral)-1]
	if !(total > 0) {
		return trend{}, false
	}

	g := numeric.Gradient(smooth.Smooth(y, cfg), x)
	t := trend{
		slope:    newSeries(g),
		integral: integral,
		total:    total,
	}
	if withCurvature {
		t.curve = newSeries(numeric.Gradient(g, x))
	}

	return t, true
}

// quiet reports whether the emission accumulated before i is within gate.
func (t trend) quiet(i int, gate float64) bool {
	return t.integral[i]/t.total <= gate
}

// before is the mean of s over [0, i).
func (t trend) before(s series, i int) float64 {
	return s.cum[i] / float64(i)
}

// after is the mean of s over [i, n).
func (t trend) after(s series, i int) float64 {
	n := len(s.v)
	return (s.cum[n] - s.cum[i]) / float64(n-i)
}
