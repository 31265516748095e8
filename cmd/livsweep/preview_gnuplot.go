//go:build gnuplot

package main

import (
	"fmt"
	"path/filepath"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/liv"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/plots/gnuplot"
)

// previewRecord writes a gnuplot rendering of the data channel with the
// threshold marked.
func previewRecord(rec liv.Record, dir string) error {
	m := rec.Measurement
	for i, ch := range rec.Channels {
		if ch.Channel != rec.DataChannel || i >= len(m.Channels) {
			continue
		}
		series := []gnuplot.Series{{Name: fmt.Sprintf("ch %d", ch.Channel), X: m.Current, Y: m.Channels[i].Power}}
		if ch.Found {
			series = append(series, gnuplot.Series{
				Name:  "threshold",
				Style: "impulses",
				X:     []float64{ch.Threshold},
				Y:     []float64{rec.PeakPower},
			})
		}
		path := filepath.Join(dir, rec.Name+"_preview.png")
		return gnuplot.Preview(path, rec.Name, "Current (mA)", "Power (mW)", series...)
	}
	return nil
}
