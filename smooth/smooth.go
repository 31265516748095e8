// Package smooth conditions a raw sweep before derivative-based analysis.
//
// Every filter returns a new slice the same length as its input and leaves
// the input untouched. Signals shorter than two samples come back unchanged.
package smooth

import (
	"fmt"
	"math"
	"strings"
)

// Method selects the filter applied by Smooth.
type Method int

const (
	EMA Method = iota
	Gaussian
	SavitzkyGolay
)

// Default filter parameters.
const (
	DefaultAlpha     = 0.2
	DefaultSigma     = 2.0
	DefaultWindow    = 7
	DefaultPolyOrder = 2
)

func (m Method) String() string {
	switch m {
	case EMA:
		return "ema"
	case Gaussian:
		return "gaussian"
	case SavitzkyGolay:
		return "savgol"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod accepts the names printed by String plus a few spellings
// seen in config files.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ema", "ewm", "exponential":
		return EMA, nil
	case "gaussian", "gauss":
		return Gaussian, nil
	case "savgol", "savitzky-golay", "savitzky_golay", "sg":
		return SavitzkyGolay, nil
	}
	return 0, fmt.Errorf("unknown smoothing method %q", s)
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(b []byte) error {
	parsed, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Config picks a filter and carries the parameters of all three; only the
// ones belonging to Method are read.
type Config struct {
	Method    Method  `yaml:"method"`
	Alpha     float64 `yaml:"alpha"`
	Sigma     float64 `yaml:"sigma"`
	Window    int     `yaml:"window"`
	PolyOrder int     `yaml:"polyorder"`
}

// DefaultConfig is an EMA with alpha 0.2.
func DefaultConfig() Config {
	return Config{
		Method:    EMA,
		Alpha:     DefaultAlpha,
		Sigma:     DefaultSigma,
		Window:    DefaultWindow,
		PolyOrder: DefaultPolyOrder,
	}
}

// Smooth applies the configured filter.
func Smooth(
	signal []float64,
	cfg Config,
) []float64 {

	switch cfg.Method {
	case Gaussian:
		return GaussianFilter(signal, cfg.Sigma)
	case SavitzkyGolay:
		return SavGol(signal, cfg.Window, cfg.PolyOrder)
	default:
		return ExpMovingAverage(signal, cfg.Alpha)
	}
}

// ExpMovingAverage is s[0] = x[0], s[i] = a*x[i] + (1-a)*s[i-1].
// NaN samples come out as NaN and are skipped by the running state.
func ExpMovingAverage(
	signal []float64,
	alpha float64,
) []float64 {

	out := make([]float64, len(signal))
	copy(out, signal)
	if len(signal) < 2 {
		return out
	}

	seeded := false
	var s float64
	for i, x := range signal {
		if math.IsNaN(x) {
			continue
		}
		if !seeded {
			s = x
			seeded = true
		} else {
			s += alpha * (x - s)
		}
		out[i] = s
	}

	return out
}

// GaussianFilter convolves with a Gaussian of standard deviation sigma
// samples, truncated at four sigma, reflecting at the edges. NaN neighbours
// drop out of the weighted sum.
func GaussianFilter(
	signal []float64,
	sigma float64,
) []float64 {

	n := len(signal)
	out := make([]float64, n)
	copy(out, signal)
	if n < 2 || !(sigma > 0) {
		return out
	}

	radius := int(4*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	for k := -radius; k <= radius; k++ {
		x := float64(k) / sigma
		kernel[k+radius] = math.Exp(-0.5 * x * x)
	}

	for i := range signal {
		if math.IsNaN(signal[i]) {
			continue
		}
		var sum, weight float64
		for k := -radius; k <= radius; k++ {
			v := signal[reflect(i+k, n)]
			if math.IsNaN(v) {
				continue
			}
			sum += kernel[k+radius] * v
			weight += kernel[k+radius]
		}
		out[i] = sum / weight
	}

	return out
}

// reflect maps j into [0, n) mirroring about the array edges, edge sample
// included (d c b a | a b c d | d c b a).
func reflect(j, n int) int {
	for j < 0 || j >= n {
		if j < 0 {
			j = -j - 1
		}
		if j >= n {
			j = 2*n - j - 1
		}
	}
	return j
}
