package plots

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/liv"
)

// Thresholds histograms every threshold found across a batch.
func Thresholds(records []liv.Record) (*plot.Plot, error) {

	var values plotter.Values
	for _, rec := range records {
		for _, ch := range rec.Channels {
			if ch.Found && finite(ch.Threshold) {
				values = append(values, ch.Threshold)
			}
		}
	}
	if len(values) == 0 {
		return nil, errors.New("no thresholds to plot")
	}

	bins := min(20, max(1, len(values)/2))
	hist, err := plotter.NewHist(values, bins)
	if err != nil {
		return nil, err
	}
	hist.FillColor = palette(0)
	hist.LineStyle.Width = vg.Points(1.5)

	var top float64
	for _, b := range hist.Bins {
		top = max(top, b.Weight)
	}

	p := prepPlot(
		fmt.Sprintf("Thresholds (%d channels)", len(values)),
		"Threshold current (mA)", "Channels",
		span(values), [2]float64{0, top * 1.1},
	)
	p.Add(hist)

	return p, enclose(p)
}
