// Package config loads the YAML settings shared by the livsweep commands.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/detect"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/fit"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/liv"
)

// Defaults that are not owned by one of the analysis packages.
const (
	DefaultOutDir         = "LIV_Results"
	DefaultWorkers        = liv.DefaultWorkers
	DefaultPlotFormat     = "png"
	DefaultLorentzForm    = string(fit.Form3c)
	DefaultPeakHeight     = 0.2
	DefaultPeakHalfWindow = 10
)

// OutputConfig controls where results go.
type OutputConfig struct {
	Dir        string `yaml:"dir,omitempty"`
	Workers    int    `yaml:"workers,omitempty"`
	Plots      bool   `yaml:"plots,omitempty"`
	PlotFormat string `yaml:"plot_format,omitempty"`
}

// LorentzConfig holds the resonance fitting settings.
type LorentzConfig struct {
	Form       string  `yaml:"form,omitempty"`
	PeakHeight float64 `yaml:"peak_height,omitempty"`
	HalfWindow int     `yaml:"half_window,omitempty"`
}

// Config is the whole file.
type Config struct {
	Detect  detect.Config `yaml:"detect"`
	Fit     fit.Fitter    `yaml:"fit"`
	LIV     liv.Options   `yaml:"liv"`
	Lorentz LorentzConfig `yaml:"lorentz"`
	Output  OutputConfig  `yaml:"output"`
}

// New returns a Config with every default filled in.
func New() *Config {
	return &Config{
		Detect: detect.DefaultConfig(),
		Fit:    fit.Fitter{MaxIterations: fit.DefaultMaxIterations},
		LIV:    liv.DefaultOptions(),
		Lorentz: LorentzConfig{
			Form:       DefaultLorentzForm,
			PeakHeight: DefaultPeakHeight,
			HalfWindow: DefaultPeakHalfWindow,
		},
		Output: OutputConfig{
			Dir:        DefaultOutDir,
			Workers:    DefaultWorkers,
			PlotFormat: DefaultPlotFormat,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Detect.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detect: %w", err))
	}
	if c.Fit.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("fit: max_iterations %d must be positive", c.Fit.MaxIterations))
	}
	if c.LIV.NoiseFloor < 0 {
		errs = append(errs, fmt.Errorf("liv: noise_floor %g is negative", c.LIV.NoiseFloor))
	}
	if c.LIV.WavelengthFitMax < c.LIV.WavelengthFitMin {
		errs = append(errs, fmt.Errorf("liv: wavelength fit range [%g, %g] is empty", c.LIV.WavelengthFitMin, c.LIV.WavelengthFitMax))
	}
	if c.LIV.Read.SkipRows < 0 {
		errs = append(errs, fmt.Errorf("liv: skip_rows %d is negative", c.LIV.Read.SkipRows))
	}
	if _, err := fit.ParseForm(c.Lorentz.Form); err != nil {
		errs = append(errs, fmt.Errorf("lorentz: %w", err))
	}
	if c.Lorentz.HalfWindow < 2 {
		errs = append(errs, fmt.Errorf("lorentz: half_window %d is too small", c.Lorentz.HalfWindow))
	}
	if c.Output.Workers < 1 {
		errs = append(errs, fmt.Errorf("output: workers %d must be positive", c.Output.Workers))
	}
	switch c.Output.PlotFormat {
	case "png", "svg", "pdf", "all":
	default:
		errs = append(errs, fmt.Errorf("output: unsupported plot format %q", c.Output.PlotFormat))
	}
	return errors.Join(errs...)
}
