//go:build gnuplot

package gnuplot

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	if _, err := exec.LookPath("gnuplot"); err != nil {
		t.Skip("gnuplot not installed")
	}

	current := []float64{0, 5, 10, 15, 20}
	power := []float64{0, 0, 0.1, 5, 10}
	path := filepath.Join(t.TempDir(), "preview.png")
	err := Preview(path, "dev", "Current (mA)", "Power (mW)",
		Series{Name: "ch1", X: current, Y: power},
		Series{Name: "threshold", Style: "lines", X: []float64{10, 10}, Y: []float64{0, 10}},
	)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestPointGroup_DropsNonFinite(t *testing.T) {
	nan := 0.0
	nan /= nan
	got := pointGroup([]float64{1, 2, nan, 4}, []float64{1, nan, 3, 4, 5})
	assert.Equal(t, [][]float64{{1, 4}, {1, 4}}, got)
}
