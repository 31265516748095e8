package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/internal/config"
)

var version = "dev"

type configLoader func() (*config.Config, error)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "livsweep",
		Short: "Threshold detection and curve fitting for photonic current sweeps",
		Long: `livsweep post-processes current sweeps from the LIV bench.

It finds lasing thresholds by consensus of several trend detectors, fits
I·dV/dI and wavelength drift, and fits Lorentzians to resonance spectra.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	configPath := cmd.PersistentFlags().String("config", "", "YAML configuration file")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	load := func() (*config.Config, error) {
		return config.Load(*configPath)
	}

	cmd.AddCommand(newLIVCommand(load))
	cmd.AddCommand(newThresholdCommand(load))
	cmd.AddCommand(newLorentzCommand(load))

	return cmd
}
