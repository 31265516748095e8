package liv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/detect"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/fit"
)

// benchCSV renders a 0..30 mA sweep the way the bench software lays it
// out: a preamble, then one labelled row per quantity.
func benchCSV(preamble int) string {
	var b strings.Builder
	for i := 0; i < preamble; i++ {
		fmt.Fprintf(&b, "Header line %d,meta\n", i)
	}

	row := func(label string, f func(i int) float64) {
		b.WriteString(label)
		for i := 0; i <= 30; i++ {
			fmt.Fprintf(&b, ",%g", f(i))
		}
		b.WriteString("\n")
	}
	lit := func(i int) float64 {
		if i < 10 {
			return 1e-6
		}
		return float64(i-10) * 0.5
	}

	row("Current (A)", func(i int) float64 { return float64(i) / 1000 })
	row("Voltage (V)", func(i int) float64 { return 1 + 0.02*float64(i) })
	row("Temperature (C)", func(int) float64 { return 25 })
	row("Wavelength (nm)", func(i int) float64 {
		c := float64(i)
		return 1310 + 0.001*c*c + 0.01*c
	})
	row("0", func(int) float64 { return 1e-32 })
	row("1", lit)
	row("ch 2", func(i int) float64 { return 0.1 * lit(i) })
	return b.String()
}

func TestReadMeasurement(t *testing.T) {
	m, err := ReadMeasurement(strings.NewReader(benchCSV(3)), "dev", ReadOptions{SkipRows: 3, CurrentScale: 1000})
	require.NoError(t, err)

	assert.Equal(t, "dev", m.Name)
	require.Len(t, m.Current, 31)
	assert.InDelta(t, 30.0, m.Current[30], 1e-9)
	assert.Len(t, m.Voltage, 31)
	assert.Len(t, m.Temperature, 31)
	assert.Len(t, m.Wavelength, 31)

	require.Len(t, m.Channels, 3)
	assert.Equal(t, 0, m.Channels[0].Number)
	assert.Equal(t, 2, m.Channels[2].Number)
	assert.Equal(t, "ch 2", m.Channels[2].Label)
}

func TestReadMeasurement_Cells(t *testing.T) {
	in := strings.Join([]string{
		"skip me",
		"Current,0.001,0.002,0.003,0.004",
		"Channel 3,1,oops,3",
		"unrelated,1,2,3,4",
		"",
	}, "\n")

	m, err := ReadMeasurement(strings.NewReader(in), "x", ReadOptions{SkipRows: 1, CurrentScale: 1000})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 3, 4}, m.Current, 1e-9)
	assert.Nil(t, m.Voltage)

	require.Len(t, m.Channels, 1)
	p := m.Channels[0].Power
	require.Len(t, p, 4)
	assert.Equal(t, 3, m.Channels[0].Number)
	assert.Equal(t, 1.0, p[0])
	assert.True(t, math.IsNaN(p[1]))
	assert.True(t, math.IsNaN(p[3]))
}

func TestReadMeasurement_NoCurrent(t *testing.T) {
	_, err := ReadMeasurement(strings.NewReader("Voltage,1,2\n1,3,4\n"), "x", ReadOptions{})
	assert.ErrorIs(t, err, ErrNoCurrent)
}

func testProcessor(t *testing.T) *Processor {
	t.Helper()

	opts := DefaultOptions()
	opts.Read.SkipRows = 2
	opts.PowerAt = []float64{20, 100}
	return NewProcessor(detect.DefaultConfig(), fit.New(), opts, nil)
}

func TestProcess(t *testing.T) {
	m, err := ReadMeasurement(strings.NewReader(benchCSV(2)), "dev", ReadOptions{SkipRows: 2, CurrentScale: 1000})
	require.NoError(t, err)

	rec := testProcessor(t).Process(m)
	require.Len(t, rec.Channels, 3)

	assert.True(t, rec.Channels[0].Skipped)
	assert.False(t, rec.Channels[0].Found)

	for _, ch := range rec.Channels[1:] {
		require.NoError(t, ch.Err, "channel %d", ch.Channel)
		assert.True(t, ch.Found)
		assert.Equal(t, MethodConsensus, ch.Method)
		assert.InDelta(t, 10.0, ch.Threshold, 1.0)
		assert.GreaterOrEqual(t, ch.Agreement, 2)
	}

	assert.Equal(t, 1, rec.DataChannel)
	assert.Equal(t, 10.0, rec.PeakPower)
	assert.InDelta(t, 30.0, rec.PeakCurrent, 1e-9)
	assert.InDelta(t, 1.6, rec.PeakVoltage, 1e-9)
	assert.InDelta(t, 1311.2, rec.PeakWavelength, 1e-9)

	assert.InDelta(t, 5.0, rec.Channels[1].PowerAt[20], 1e-9)
	assert.True(t, math.IsNaN(rec.Channels[1].PowerAt[100]))

	require.NotNil(t, rec.DiffResistance)
	assert.InDelta(t, 0.02, rec.DiffResistance.Eval(1), 1e-3)

	require.NotNil(t, rec.WavelengthFit)
	assert.InDelta(t, 0.001, rec.WavelengthFit.Coeffs[0], 1e-6)
}

func TestProcess_FallbackFit(t *testing.T) {
	// A straight decline gives the detectors nothing to agree on, and the
	// hinge fit is left to report its own failure.
	current := make([]float64, 31)
	power := make([]float64, 31)
	for i := range current {
		current[i] = float64(i)
		power[i] = 30 - float64(i)
	}
	m := Measurement{Name: "falling", Current: current, Channels: []Channel{{Number: 1, Power: power}}}

	p := testProcessor(t)
	rec := p.Process(m)
	require.Len(t, rec.Channels, 1)
	ch := rec.Channels[0]
	assert.False(t, ch.Found && ch.Method == MethodConsensus)
	if !ch.Found {
		assert.Error(t, ch.Err)
	}

	p.opts.FallbackFit = false
	rec = p.Process(m)
	assert.Error(t, rec.Channels[0].Err)
	assert.False(t, rec.Channels[0].Found)
}

func TestProcessFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.csv", "b.csv"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(benchCSV(2)), 0o644))
		paths = append(paths, path)
	}
	paths = append(paths, filepath.Join(dir, "missing.csv"))

	records, err := testProcessor(t).ProcessFiles(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Name)
	assert.Equal(t, "b", records[1].Name)
}

func TestProcessFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testProcessor(t).ProcessFiles(ctx, []string{"x.csv"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteRecords(t *testing.T) {
	m, err := ReadMeasurement(strings.NewReader(benchCSV(2)), "dev", ReadOptions{SkipRows: 2, CurrentScale: 1000})
	require.NoError(t, err)
	rec := testProcessor(t).Process(m)

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, []Record{rec}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	header := rows[0]
	assert.Equal(t, "file", header[0])
	assert.Equal(t, "power_at_20mA", header[len(header)-2])
	assert.Equal(t, "power_at_100mA", header[len(header)-1])

	noise := rows[1]
	assert.Equal(t, "0", noise[1])
	assert.Equal(t, "below noise floor", noise[14])

	data := rows[2]
	assert.Equal(t, "true", data[3])
	assert.Equal(t, "consensus", data[5])
	assert.Equal(t, "10", data[7])
	assert.Equal(t, "10", data[8])
	assert.Equal(t, "5", data[len(data)-2])
	assert.Equal(t, "", data[len(data)-1])
}

func TestToDBm(t *testing.T) {
	assert.InDelta(t, 0.0, ToDBm(1), 1e-12)
	assert.InDelta(t, 10.0, ToDBm(10), 1e-12)
	assert.True(t, math.IsInf(ToDBm(0), -1))
}
