package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/fit"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/plots"
)

func newLorentzCommand(load configLoader) *cobra.Command {
	var (
		form    string
		peaks   bool
		plotDir string
	)

	cmd := &cobra.Command{
		Use:   "lorentz <spectrum.csv>",
		Short: "Fit a Lorentzian to a two-column x,y spectrum",
		Long: `Fit one Lorentzian form to the whole spectrum, or with --peaks find
every peak above the configured height and report the Q of each.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("form") {
				cfg.Lorentz.Form = form
			}
			f, err := fit.ParseForm(cfg.Lorentz.Form)
			if err != nil {
				return err
			}
			x, y, err := readColumns(args[0])
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			out := cmd.OutOrStdout()

			if !peaks {
				l, err := cfg.Fit.Lorentz(x, y, f, nil, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "form %s params %v\n", l.Form, l.Params)
				fmt.Fprintf(out, "resnorm %g  R² %.6f  Q %g\n", l.ResNorm, l.R2, l.Q)
				if plotDir == "" {
					return nil
				}
				p, err := plots.Lorentz(name, x, y, l)
				if err != nil {
					return err
				}
				_, err = plots.Save(p, plotDir, name+"_lorentz", cfg.Output.PlotFormat)
				return err
			}

			top := 0.0
			for _, v := range y {
				top = max(top, v)
			}
			found := fit.FindPeaks(y, cfg.Lorentz.PeakHeight*top)
			if len(found) == 0 {
				return fmt.Errorf("no peaks above %g of maximum", cfg.Lorentz.PeakHeight)
			}
			for i, pk := range found {
				r, err := cfg.Fit.Resonance(x, y, pk, cfg.Lorentz.HalfWindow)
				if err != nil {
					fmt.Fprintf(out, "peak %d at %g: %v\n", i+1, x[pk], err)
					continue
				}
				fmt.Fprintf(out, "peak %d at %.6g: FWHM %.4g  Q %.0f  R² %.4f\n", i+1, r.Center, r.FWHM, r.Q, r.R2)
				if plotDir != "" {
					label := fmt.Sprintf("%s_peak%d", name, i+1)
					p, err := plots.Lorentz(label, r.X, r.Y, r.Fit)
					if err != nil {
						return err
					}
					if _, err := plots.Save(p, plotDir, label, cfg.Output.PlotFormat); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&form, "form", "", "Lorentzian form: 1, 1c, 2, 2c, 3 or 3c")
	cmd.Flags().BoolVar(&peaks, "peaks", false, "Fit every peak separately and report Q")
	cmd.Flags().StringVar(&plotDir, "plot", "", "Directory to write fit plots to")

	return cmd
}
