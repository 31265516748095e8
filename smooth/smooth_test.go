package smooth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(c float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func TestSmooth_ConstantIsFixedPoint(t *testing.T) {
	in := constant(3.7, 40)

	for _, m := range []Method{EMA, Gaussian, SavitzkyGolay} {
		t.Run(m.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Method = m

			got := Smooth(in, cfg)
			require.Len(t, got, len(in))
			assert.InDeltaSlice(t, in, got, 1e-9)
		})
	}
}

func TestSmooth_DoesNotModifyInput(t *testing.T) {
	in := []float64{0, 1, 0, 1, 0, 1, 0}
	saved := append([]float64(nil), in...)

	for _, m := range []Method{EMA, Gaussian, SavitzkyGolay} {
		cfg := DefaultConfig()
		cfg.Method = m
		Smooth(in, cfg)
		assert.Equal(t, saved, in, m.String())
	}
}

func TestSmooth_ShortInputUnchanged(t *testing.T) {
	for _, m := range []Method{EMA, Gaussian, SavitzkyGolay} {
		cfg := DefaultConfig()
		cfg.Method = m
		assert.Equal(t, []float64{5}, Smooth([]float64{5}, cfg))
		assert.Empty(t, Smooth(nil, cfg))
	}
}

func TestExpMovingAverage(t *testing.T) {
	got := ExpMovingAverage([]float64{0, 10, 10}, 0.2)
	assert.InDeltaSlice(t, []float64{0, 2, 3.6}, got, 1e-12)
}

func TestExpMovingAverage_NaNPassesThrough(t *testing.T) {
	got := ExpMovingAverage([]float64{math.NaN(), 0, math.NaN(), 10}, 0.5)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, 0.0, got[1])
	assert.True(t, math.IsNaN(got[2]))
	assert.InDelta(t, 5.0, got[3], 1e-12)
}

func TestGaussianFilter_SkipsNaN(t *testing.T) {
	in := constant(2, 20)
	in[7] = math.NaN()

	got := GaussianFilter(in, 2)
	assert.True(t, math.IsNaN(got[7]))
	for i, v := range got {
		if i == 7 {
			continue
		}
		assert.InDelta(t, 2.0, v, 1e-12, "index %d", i)
	}
}

func TestGaussianFilter_SpreadsImpulse(t *testing.T) {
	in := make([]float64, 21)
	in[10] = 1

	got := GaussianFilter(in, 2)
	assert.Less(t, got[10], 1.0)
	assert.Greater(t, got[9], 0.0)
	assert.InDelta(t, got[9], got[11], 1e-15)
}

func TestSavGol_PreservesQuadratic(t *testing.T) {
	in := make([]float64, 15)
	for i := range in {
		x := float64(i)
		in[i] = 0.5*x*x - 2*x + 1
	}

	got := SavGol(in, 7, 2)
	assert.InDeltaSlice(t, in, got, 1e-9)
}

func TestFitWindow(t *testing.T) {
	tests := []struct {
		window, n, want int
	}{
		{7, 100, 7},
		{7, 5, 5},
		{7, 6, 5},
		{4, 100, 5},
		{1, 100, 3},
		{9, 3, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FitWindow(tt.window, tt.n), "window=%d n=%d", tt.window, tt.n)
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("Savitzky-Golay")
	require.NoError(t, err)
	assert.Equal(t, SavitzkyGolay, m)

	_, err = ParseMethod("median")
	assert.Error(t, err)

	var u Method
	require.NoError(t, u.UnmarshalText([]byte("gaussian")))
	assert.Equal(t, Gaussian, u)
}
