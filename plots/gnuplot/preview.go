// Package gnuplot renders quick previews through a gnuplot binary. Importing
// it requires gnuplot on PATH: the underlying glot package looks for the
// binary at init and panics without it, so callers link it only behind the
// gnuplot build tag.
package gnuplot

import (
	"math"

	"github.com/Arafatk/glot"
)

// Series is one named point group for Preview.
type Series struct {
	Name  string
	Style string // gnuplot style: points, lines, circle, impulses
	X, Y  []float64
}

// Preview writes a gnuplot rendering of the series to path.
func Preview(
	path, title, xlabel, ylabel string,
	series ...Series,
) error {

	dimensions := 2
	persist := false
	debug := false
	plot, err := glot.NewPlot(dimensions, persist, debug)
	if err != nil {
		return err
	}
	defer plot.Close()

	for _, s := range series {
		data := pointGroup(s.X, s.Y)
		if len(data[0]) == 0 {
			continue
		}
		style := s.Style
		if style == "" {
			style = "points"
		}
		if err := plot.AddPointGroup(s.Name, style, data); err != nil {
			return err
		}
	}

	if err := plot.SetTitle(title); err != nil {
		return err
	}
	if err := plot.SetXLabel(xlabel); err != nil {
		return err
	}
	if err := plot.SetYLabel(ylabel); err != nil {
		return err
	}
	return plot.SavePlot(path)
}

// pointGroup pairs x and y into glot's column layout, dropping non-finite
// pairs.
func pointGroup(x, y []float64) [][]float64 {
	n := min(len(x), len(y))
	data := [][]float64{make([]float64, 0, n), make([]float64, 0, n)}
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		data[0] = append(data[0], x[i])
		data[1] = append(data[1], y[i])
	}
	return data
}
