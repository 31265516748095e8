package plots

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/fit"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/liv"
)

func liCurve() (current, power []float64) {
	for i := 0; i <= 30; i++ {
		current = append(current, float64(i))
		power = append(power, fit.Hinge(10, 0.5, 0, float64(i)))
	}
	power[4] = math.NaN()
	return current, power
}

func TestLICurve_Save(t *testing.T) {
	current, power := liCurve()
	ch := liv.ChannelResult{Channel: 1, Threshold: 10, Found: true, Method: liv.MethodConsensus}

	p, err := LICurve("dev", current, power, ch)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := Save(p, dir, "dev_LI_ch1", "all")
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for _, path := range paths {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestSave_UnknownFormat(t *testing.T) {
	current, power := liCurve()
	p, err := LICurve("dev", current, power, liv.ChannelResult{})
	require.NoError(t, err)

	_, err = Save(p, t.TempDir(), "x", "bmp")
	assert.Error(t, err)
}

func TestDiffResistanceAndLorentz(t *testing.T) {
	f := fit.New()

	var current, voltage []float64
	for i := 1.0; i <= 40; i++ {
		current = append(current, i)
		voltage = append(voltage, 1+0.02*i)
	}
	pl, err := f.DiffResistance(current, voltage)
	require.NoError(t, err)

	p, err := DiffResistance("dev", pl)
	require.NoError(t, err)
	_, err = Save(p, t.TempDir(), "idvdi", "svg")
	require.NoError(t, err)

	var x, y []float64
	for i := -50; i <= 50; i++ {
		xi := float64(i) / 10
		x = append(x, xi)
		y = append(y, fit.Form3c.Eval([]float64{1, 0.2, 0.5, 0.1}, xi))
	}
	lf, err := f.Lorentz(x, y, fit.Form3c, nil, nil)
	require.NoError(t, err)

	p, err = Lorentz("resonance", x, y, lf)
	require.NoError(t, err)
	paths, err := Save(p, t.TempDir(), "lorentz", "png")
	require.NoError(t, err)
	assert.FileExists(t, paths[0])
}

func TestRecord(t *testing.T) {
	current, power := liCurve()
	rec := liv.Record{
		Name: "dev",
		Measurement: liv.Measurement{
			Current: current,
			Channels: []liv.Channel{
				{Number: 0, Power: make([]float64, len(current))},
				{Number: 1, Power: power},
			},
		},
		Channels: []liv.ChannelResult{
			{Channel: 0, Skipped: true},
			{Channel: 1, Threshold: 10, Found: true},
		},
	}

	dir := t.TempDir()
	paths, err := Record(rec, dir, "png")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "dev_LI_ch1.png")}, paths)
}

func TestBuildDataAndSpan(t *testing.T) {
	xy := buildData([]float64{1, 2, math.NaN(), 4}, []float64{1, math.Inf(1), 3})
	require.Len(t, xy, 1)
	assert.Equal(t, 1.0, xy[0].X)

	assert.Equal(t, [2]float64{0, 1}, span(nil))
	assert.Equal(t, [2]float64{1, 3}, span([]float64{2, 2}))
	r := span([]float64{0, 10})
	assert.InDelta(t, -0.5, r[0], 1e-12)
	assert.InDelta(t, 10.5, r[1], 1e-12)
}

func TestThresholds(t *testing.T) {
	var records []liv.Record
	for i := 0; i < 6; i++ {
		records = append(records, liv.Record{
			Name: fmt.Sprintf("dev%d", i),
			Channels: []liv.ChannelResult{
				{Channel: 1, Threshold: 9 + float64(i)/2, Found: true},
				{Channel: 2, Skipped: true},
			},
		})
	}

	p, err := Thresholds(records)
	require.NoError(t, err)
	_, err = Save(p, t.TempDir(), "thresholds", "png")
	require.NoError(t, err)

	_, err = Thresholds(nil)
	assert.Error(t, err)
}
