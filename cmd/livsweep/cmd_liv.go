package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/liv"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/plots"
)

func newLIVCommand(load configLoader) *cobra.Command {
	var (
		outDir  string
		workers int
		doPlots bool
		format  string
		gnuplot bool
	)

	cmd := &cobra.Command{
		Use:   "liv <file.csv|dir> [...]",
		Short: "Process LIV measurement files",
		Long: `Read row-labelled LIV files, find the threshold of every photodiode
channel and write summary.csv and log.txt to the output directory.

Directories are expanded to the *.csv files they contain.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("out") {
				cfg.Output.Dir = outDir
			}
			if flags.Changed("workers") {
				cfg.Output.Workers = workers
			}
			if flags.Changed("plots") {
				cfg.Output.Plots = doPlots
			}
			if flags.Changed("format") {
				cfg.Output.PlotFormat = format
			}

			paths, err := expandPaths(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no csv files in %v", args)
			}

			start := time.Now()
			p := liv.NewProcessor(cfg.Detect, &cfg.Fit, cfg.LIV, slog.Default())
			records, err := p.ProcessFiles(cmd.Context(), paths, cfg.Output.Workers)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
				return err
			}
			summary := filepath.Join(cfg.Output.Dir, "summary.csv")
			if err := writeSummary(summary, records); err != nil {
				return err
			}

			logFile := []string{
				fmt.Sprintf("livsweep %s\n", version),
				fmt.Sprintf("Run: %s\n", start.Format("2006-Jan-02 15:04:05")),
				fmt.Sprintf("Files: %d read, %d processed\n", len(paths), len(records)),
			}
			for _, rec := range records {
				logFile = append(logFile, describeRecord(rec)...)

				if cfg.Output.Plots {
					if _, err := plots.Record(rec, cfg.Output.Dir, cfg.Output.PlotFormat); err != nil {
						slog.Warn("plotting failed", "file", rec.Name, "err", err)
					}
				}
				if gnuplot {
					if err := previewRecord(rec, cfg.Output.Dir); err != nil {
						slog.Warn("gnuplot preview failed", "file", rec.Name, "err", err)
					}
				}
			}
			if cfg.Output.Plots && len(records) > 1 {
				if err := thresholdHistogram(records, cfg.Output.Dir, cfg.Output.PlotFormat); err != nil {
					slog.Warn("threshold histogram failed", "err", err)
				}
			}
			logFile = append(logFile, fmt.Sprintf("Elapsed: %s\n", time.Since(start).Round(time.Millisecond)))

			if err := writeLog(cfg.Output.Dir, logFile); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d of %d files, summary in %s\n", len(records), len(paths), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Files processed in parallel")
	cmd.Flags().BoolVar(&doPlots, "plots", false, "Render LI and I·dV/dI plots")
	cmd.Flags().StringVar(&format, "format", "", "Plot format: png, svg, pdf or all")
	cmd.Flags().BoolVar(&gnuplot, "gnuplot", false, "Also write a gnuplot preview of the data channel")

	return cmd
}

func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.csv"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}

func writeSummary(path string, records []liv.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := liv.WriteRecords(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func describeRecord(rec liv.Record) []string {
	lines := []string{fmt.Sprintf("\n%s (data channel %d)\n", rec.Name, rec.DataChannel)}
	if !math.IsNaN(rec.PeakPower) {
		lines = append(lines, fmt.Sprintf("  peak %.4g mW (%.2f dBm) at %.2f mA\n", rec.PeakPower, liv.ToDBm(rec.PeakPower), rec.PeakCurrent))
	}
	for _, ch := range rec.Channels {
		switch {
		case ch.Skipped:
			lines = append(lines, fmt.Sprintf("  ch %d: below noise floor\n", ch.Channel))
		case ch.Found:
			lines = append(lines, fmt.Sprintf("  ch %d: Ith = %.2f mA (%s, agreement %d)\n", ch.Channel, ch.Threshold, ch.Method, ch.Agreement))
		default:
			lines = append(lines, fmt.Sprintf("  ch %d: no threshold: %v\n", ch.Channel, ch.Err))
		}
	}
	if rec.DiffResistance != nil {
		lines = append(lines, fmt.Sprintf("  I·dV/dI %s (R² %.4f)\n", rec.DiffResistance, rec.DiffResistance.Goodness))
	}
	if rec.WavelengthFit != nil {
		lines = append(lines, fmt.Sprintf("  wavelength %s\n", rec.WavelengthFit))
	}
	return lines
}

func thresholdHistogram(records []liv.Record, dir, format string) error {
	p, err := plots.Thresholds(records)
	if err != nil {
		return err
	}
	_, err = plots.Save(p, dir, "thresholds", format)
	return err
}

func writeLog(dir string, logFile []string) error {
	txt, err := os.Create(filepath.Join(dir, "log.txt"))
	if err != nil {
		return err
	}

	w := bufio.NewWriter(txt)
	for _, line := range logFile {
		if _, err := w.WriteString(line); err != nil {
			txt.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		txt.Close()
		return err
	}
	return txt.Close()
}
