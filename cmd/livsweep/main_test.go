package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/fit"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func literalCSV() string {
	var b strings.Builder
	b.WriteString("current,signal\n")
	for i := 0; i <= 30; i++ {
		s := 1e-6
		if i >= 10 {
			s = float64(i-10) * 0.5
		}
		fmt.Fprintf(&b, "%d,%g\n", i, s)
	}
	return b.String()
}

func TestThresholdCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sweep.csv", literalCSV())

	out, err := run(t, "threshold", path)
	require.NoError(t, err)
	assert.Contains(t, out, "threshold: 10 at index 10")
	assert.Contains(t, out, "crossover")
}

func TestThresholdCommand_NoConsensus(t *testing.T) {
	var b strings.Builder
	for i := 0; i <= 30; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, 30-i)
	}
	path := writeFile(t, t.TempDir(), "falling.csv", b.String())

	_, err := run(t, "threshold", "--fallback=false", path)
	assert.ErrorContains(t, err, "no consensus")
}

func TestLorentzCommand(t *testing.T) {
	var b strings.Builder
	for i := -100; i <= 100; i++ {
		x := float64(i) / 10
		fmt.Fprintf(&b, "%g,%g\n", x, fit.Form3c.Eval([]float64{2, 0.5, 4, 0.5}, x))
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "spectrum.csv", b.String())

	out, err := run(t, "lorentz", path, "--plot", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "form 3c")
	assert.FileExists(t, filepath.Join(dir, "spectrum_lorentz.png"))

	out, err = run(t, "lorentz", path, "--peaks")
	require.NoError(t, err)
	assert.Contains(t, out, "peak 1")

	_, err = run(t, "lorentz", path, "--form", "9")
	assert.Error(t, err)
}

func TestLIVCommand(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))

	var b strings.Builder
	row := func(label string, f func(i int) float64) {
		b.WriteString(label)
		for i := 0; i <= 30; i++ {
			fmt.Fprintf(&b, ",%g", f(i))
		}
		b.WriteString("\n")
	}
	row("Current", func(i int) float64 { return float64(i) / 1000 })
	row("Voltage", func(i int) float64 { return 1 + 0.02*float64(i) })
	row("1", func(i int) float64 {
		if i < 10 {
			return 1e-6
		}
		return float64(i-10) * 0.5
	})
	writeFile(t, data, "dev1.csv", b.String())
	writeFile(t, data, "notes.txt", "ignored")

	cfgPath := writeFile(t, dir, "livsweep.yaml", "liv:\n  read:\n    skip_rows: 0\n")
	outDir := filepath.Join(dir, "results")

	out, err := run(t, "liv", data, "--config", cfgPath, "--out", outDir, "--plots")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 1 of 1 files")

	summary, err := os.ReadFile(filepath.Join(outDir, "summary.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "dev1,1,1,true,10,consensus")

	logTxt, err := os.ReadFile(filepath.Join(outDir, "log.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(logTxt), "ch 1: Ith = 10.00 mA")

	assert.FileExists(t, filepath.Join(outDir, "dev1_LI_ch1.png"))
	assert.FileExists(t, filepath.Join(outDir, "dev1_IdVdI.png"))
}

func TestLIVCommand_GnuplotFlag(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("Current,0,0.005,0.01,0.015,0.02\n")
	b.WriteString("1,0,0,0.1,5,10\n")
	path := writeFile(t, dir, "dev.csv", b.String())
	cfgPath := writeFile(t, dir, "livsweep.yaml", "liv:\n  read:\n    skip_rows: 0\n")

	// The preview failing must not fail the run.
	out, err := run(t, "liv", path, "--config", cfgPath, "--out", filepath.Join(dir, "results"), "--gnuplot")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 1 of 1 files")
}

func TestLIVCommand_Errors(t *testing.T) {
	_, err := run(t, "liv", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = run(t, "liv", t.TempDir())
	assert.ErrorContains(t, err, "no csv files")

	_, err = run(t, "liv", "x.csv", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading config")
}
