// Package plots renders sweeps and fits with gonum/plot, and can hand a
// quick preview to gnuplot.
package plots

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func prepPlot(
	title, xlabel, ylabel string,
	xrange, yrange [2]float64,
) *plot.Plot {

	p := plot.New()
	p.BackgroundColor = color.RGBA{A: 0}
	p.Title.Text = title
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = 50
	p.Title.Padding = font.Length(50)

	p.X.Label.Text = xlabel
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = 36
	p.X.Label.Padding = font.Length(20)
	p.X.LineStyle.Width = vg.Points(1.5)
	p.X.Min, p.X.Max = xrange[0], xrange[1]
	p.X.Tick.LineStyle.Width = vg.Points(1.5)
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = 36

	p.Y.Label.Text = ylabel
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = 36
	p.Y.Label.Padding = font.Length(20)
	p.Y.LineStyle.Width = vg.Points(1.5)
	p.Y.Min, p.Y.Max = yrange[0], yrange[1]
	p.Y.Tick.LineStyle.Width = vg.Points(1.5)
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = 36

	p.Legend.TextStyle.Font.Variant = "Sans"
	p.Legend.TextStyle.Font.Size = 28
	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-25)
	p.Legend.YOffs = vg.Points(25)
	p.Legend.Padding = vg.Points(10)
	p.Legend.ThumbnailWidth = vg.Points(50)

	return p
}

// enclose draws the top and right borders.
func enclose(p *plot.Plot) error {
	top := plotter.XYs{{X: p.X.Min, Y: p.Y.Max}, {X: p.X.Max, Y: p.Y.Max}}
	right := plotter.XYs{{X: p.X.Max, Y: p.Y.Min}, {X: p.X.Max, Y: p.Y.Max}}

	for _, xy := range []plotter.XYs{top, right} {
		l, err := plotter.NewLine(xy)
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
	}
	return nil
}

func palette(brush int) color.RGBA {
	colors := []color.RGBA{
		{R: 27, G: 170, B: 139, A: 255},
		{R: 201, G: 104, B: 146, A: 255},
		{R: 99, G: 124, B: 198, A: 255},
		{R: 194, G: 140, B: 86, A: 255},
		{R: 7, G: 150, B: 189, A: 255},
	}
	return colors[brush%len(colors)]
}

// buildData pairs x and y, dropping points plotter would reject.
func buildData(x, y []float64) plotter.XYs {
	xy := make(plotter.XYs, 0, len(x))
	for i := range x {
		if i >= len(y) || !finite(x[i]) || !finite(y[i]) {
			continue
		}
		xy = append(xy, plotter.XY{X: x[i], Y: y[i]})
	}
	return xy
}

// span is the padded range of the finite values across sets.
func span(sets ...[]float64) [2]float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range sets {
		for _, v := range s {
			if finite(v) {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
		}
	}
	if lo > hi {
		return [2]float64{0, 1}
	}
	if lo == hi {
		return [2]float64{lo - 1, hi + 1}
	}
	pad := 0.05 * (hi - lo)
	return [2]float64{lo - pad, hi + pad}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
