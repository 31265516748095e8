package sweep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Sweep{Current: []float64{0, 1}, Signal: []float64{0, 1}}.Validate())
	assert.ErrorIs(t, Sweep{Current: []float64{0, 1}, Signal: []float64{0}}.Validate(), ErrMismatchedLengths)
	assert.ErrorIs(t, Sweep{Current: []float64{0}, Signal: []float64{0}}.Validate(), ErrInsufficientData)
}

func TestFinite(t *testing.T) {
	s := Sweep{
		Current: []float64{0, 1, math.NaN(), 3, 4},
		Signal:  []float64{0, math.Inf(1), 2, 3, 4},
	}

	current, signal, index := s.Finite()
	assert.Equal(t, []float64{0, 3, 4}, current)
	assert.Equal(t, []float64{0, 3, 4}, signal)
	assert.Equal(t, []int{0, 3, 4}, index)
}

func TestFirstCurrent(t *testing.T) {
	s := Sweep{Current: []float64{math.NaN(), 7, 8}}
	assert.Equal(t, 7.0, s.FirstCurrent())
	assert.True(t, math.IsNaN(Sweep{}.FirstCurrent()))
}
