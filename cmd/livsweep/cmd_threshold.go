package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/detect"
)

func newThresholdCommand(load configLoader) *cobra.Command {
	var fallback bool

	cmd := &cobra.Command{
		Use:   "threshold <sweep.csv>",
		Short: "Find the threshold of a two-column current,signal sweep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			current, signal, err := readColumns(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			res, err := detect.NewAnalyzer(cfg.Detect).Threshold(current, signal)
			for _, m := range []detect.Method{detect.CrossoverMethod, detect.GradientMethod, detect.ElbowMethod} {
				if list, ok := res.Candidates[m]; ok {
					fmt.Fprintf(out, "%-9s %v\n", m, list)
				}
			}

			switch {
			case err == nil && res.PastThreshold:
				fmt.Fprintf(out, "threshold: %g (sweep starts past turn-on)\n", res.Current)
				return nil
			case err == nil:
				fmt.Fprintf(out, "threshold: %g at index %d (agreement %d)\n", res.Current, res.Index, res.Agreement)
				return nil
			case errors.Is(err, sweep.ErrNoConsensus) && fallback:
				pw, ferr := cfg.Fit.Piecewise(current, signal)
				if ferr != nil {
					return fmt.Errorf("%w; piecewise fallback: %w", err, ferr)
				}
				fmt.Fprintf(out, "threshold: %g (piecewise fit, slope %g, R² %.4f)\n", pw.Ith, pw.Slope, pw.Goodness)
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&fallback, "fallback", true, "Fit a piecewise-linear model when the detectors disagree")

	return cmd
}
