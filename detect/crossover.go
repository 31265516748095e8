package detect

import (
	"math"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/internal/numeric"
)

// Crossover flags rising crossovers of a short moving average over a long
// one, computed on the raw signal. Cheap and steady on slow monotonic
// turn-ons; a single-sample jump can slip past it.
type Crossover struct {
	Window Window
	Short  int
	Long   int

	// Tolerance is the relative margin the short average must clear, so
	// that rounding on a flat stretch is not read as a crossing.
	Tolerance float64
}

func (d Crossover) Method() Method { return CrossoverMethod }

func (d Crossover) Detect(signal, current []float64) []int {
	if d.Short < 1 || d.Long <= d.Short {
		return nil
	}

	x, y, index := finite(signal, current)
	if len(y) < d.Long+1 {
		return nil
	}

	short := numeric.RollingMean(y, d.Short)
	long := numeric.RollingMean(y, d.Long)

	var out []int
	for i := 1; i < len(y); i++ {
		if math.IsNaN(long[i-1]) || math.IsNaN(short[i-1]) {
			continue
		}
		if short[i-1] > long[i-1] {
			continue
		}
		margin := d.Tolerance * math.Max(math.Abs(short[i]), math.Abs(long[i]))
		if short[i]-long[i] <= margin {
			continue
		}
		if d.Window.Contains(x[i]) {
			out = append(out, index[i])
		}
	}

	return out
}
