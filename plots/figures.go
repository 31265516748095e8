package plots

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/fit"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/liv"
)

// LICurve plots one channel's power against current, with the threshold
// marked when one was found.
func LICurve(
	name string,
	current, power []float64,
	ch liv.ChannelResult,
) (
	*plot.Plot,
	error,
) {

	p := prepPlot(
		fmt.Sprintf("%s channel %d", name, ch.Channel),
		"Current (mA)", "Power (mW)",
		span(current), span(power),
	)

	pts, err := plotter.NewScatter(buildData(current, power))
	if err != nil {
		return nil, err
	}
	pts.GlyphStyle.Color = palette(ch.Channel)
	pts.GlyphStyle.Radius = vg.Points(5)
	pts.Shape = draw.CircleGlyph{}
	p.Add(pts)
	p.Legend.Add("data", pts)

	if ch.Found && finite(ch.Threshold) {
		l, err := plotter.NewLine(plotter.XYs{
			{X: ch.Threshold, Y: p.Y.Min},
			{X: ch.Threshold, Y: p.Y.Max},
		})
		if err != nil {
			return nil, err
		}
		l.LineStyle.Width = vg.Points(3)
		l.LineStyle.Color = palette(ch.Channel + 1)
		l.LineStyle.Dashes = []vg.Length{vg.Points(15), vg.Points(8)}
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("Ith = %.2f mA (%s)", ch.Threshold, ch.Method), l)
	}

	return p, enclose(p)
}

// DiffResistance plots I·dV/dI with its power-law fit.
func DiffResistance(
	name string,
	pl fit.PowerLaw,
) (
	*plot.Plot,
	error,
) {

	p := prepPlot(
		name+" I·dV/dI",
		"Current (mA)", "I·dV/dI (V)",
		span(pl.Current), span(pl.IR, pl.Fitted),
	)

	pts, err := plotter.NewScatter(buildData(pl.Current, pl.IR))
	if err != nil {
		return nil, err
	}
	pts.GlyphStyle.Color = palette(0)
	pts.GlyphStyle.Radius = vg.Points(5)
	pts.Shape = draw.CircleGlyph{}
	p.Add(pts)
	p.Legend.Add("I·dV/dI", pts)

	l, err := plotter.NewLine(buildData(pl.Current, pl.Fitted))
	if err != nil {
		return nil, err
	}
	l.LineStyle.Width = vg.Points(4)
	l.LineStyle.Color = palette(1)
	p.Add(l)
	p.Legend.Add(pl.String(), l)

	return p, enclose(p)
}

// Lorentz plots a spectrum window against its Lorentzian fit. The fit is
// resampled on a fine grid so narrow peaks stay smooth.
func Lorentz(
	title string,
	x, y []float64,
	lf fit.Lorentzian,
) (
	*plot.Plot,
	error,
) {

	xr := span(x)
	p := prepPlot(title, "x", "Normalized power", xr, span(y, lf.Fitted))

	pts, err := plotter.NewScatter(buildData(x, y))
	if err != nil {
		return nil, err
	}
	pts.GlyphStyle.Color = palette(2)
	pts.GlyphStyle.Radius = vg.Points(5)
	pts.Shape = draw.CircleGlyph{}
	p.Add(pts)
	p.Legend.Add("data", pts)

	const fitPts = 600
	fx := make([]float64, fitPts)
	fy := make([]float64, fitPts)
	for i := range fx {
		fx[i] = xr[0] + (xr[1]-xr[0])*float64(i)/(fitPts-1)
		fy[i] = lf.Form.Eval(lf.Params, fx[i])
	}
	l, err := plotter.NewLine(buildData(fx, fy))
	if err != nil {
		return nil, err
	}
	l.LineStyle.Width = vg.Points(4)
	l.LineStyle.Color = palette(3)
	p.Add(l)

	label := fmt.Sprintf("fit %s, R² = %.4f", lf.Form, lf.R2)
	if lf.Q != 0 && !math.IsNaN(lf.Q) {
		label = fmt.Sprintf("fit %s, Q = %.0f", lf.Form, lf.Q)
	}
	p.Legend.Add(label, l)

	return p, enclose(p)
}

// Record renders every figure for one processed file into dir and
// returns the files written.
func Record(
	rec liv.Record,
	dir, format string,
) (
	[]string,
	error,
) {

	var written []string
	m := rec.Measurement
	for i, ch := range rec.Channels {
		if ch.Skipped || i >= len(m.Channels) {
			continue
		}
		p, err := LICurve(rec.Name, m.Current, m.Channels[i].Power, ch)
		if err != nil {
			return written, fmt.Errorf("LI curve channel %d: %w", ch.Channel, err)
		}
		paths, err := Save(p, dir, fmt.Sprintf("%s_LI_ch%d", rec.Name, ch.Channel), format)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}

	if rec.DiffResistance != nil {
		p, err := DiffResistance(rec.Name, *rec.DiffResistance)
		if err != nil {
			return written, fmt.Errorf("differential resistance: %w", err)
		}
		paths, err := Save(p, dir, rec.Name+"_IdVdI", format)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}

	return written, nil
}
