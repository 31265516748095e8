//go:build !gnuplot

package main

import (
	"errors"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/liv"
)

var errNoGnuplot = errors.New("built without gnuplot support, rebuild with -tags gnuplot")

func previewRecord(liv.Record, string) error {
	return errNoGnuplot
}
