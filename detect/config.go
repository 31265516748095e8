package detect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/smooth"
)

// Defaults, in the sweep's current units (mA for LIV data).
const (
	DefaultMinCurrent         = 5.0
	DefaultMaxCurrent         = 20.0
	DefaultTurnOn             = 20.0
	DefaultShortWindow        = 2
	DefaultLongWindow         = 5
	DefaultCrossoverTolerance = 1e-9
	DefaultIntegralGate       = 0.001
)

// PastThresholdPolicy decides what a sweep that already starts at or above
// the turn-on current reports.
type PastThresholdPolicy int

const (
	// ReportNone reports no threshold and ErrDegenerateInput.
	ReportNone PastThresholdPolicy = iota
	// ReportZero reports a threshold of 0.
	ReportZero
)

func (p PastThresholdPolicy) String() string {
	if p == ReportZero {
		return "zero"
	}
	return "none"
}

func (p PastThresholdPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PastThresholdPolicy) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "zero", "report-zero", "0":
		*p = ReportZero
	case "none", "report-none", "":
		*p = ReportNone
	default:
		return fmt.Errorf("unknown past-threshold policy %q", string(b))
	}
	return nil
}

// Config holds every tunable of the detection pipeline.
type Config struct {
	Window             Window              `yaml:"window"`
	TurnOn             float64             `yaml:"turn_on"`
	PastThreshold      PastThresholdPolicy `yaml:"past_threshold"`
	ShortWindow        int                 `yaml:"short_window"`
	LongWindow         int                 `yaml:"long_window"`
	CrossoverTolerance float64             `yaml:"crossover_tolerance"`
	IntegralGate       float64             `yaml:"integral_gate"`
	Smoothing          smooth.Config       `yaml:"smoothing"`
	MinAgreement       int                 `yaml:"min_agreement"`
}

// DefaultConfig returns the 5-20 mA window with EMA smoothing.
func DefaultConfig() Config {
	return Config{
		Window:             Window{Min: DefaultMinCurrent, Max: DefaultMaxCurrent},
		TurnOn:             DefaultTurnOn,
		PastThreshold:      ReportNone,
		ShortWindow:        DefaultShortWindow,
		LongWindow:         DefaultLongWindow,
		CrossoverTolerance: DefaultCrossoverTolerance,
		IntegralGate:       DefaultIntegralGate,
		Smoothing:          smooth.DefaultConfig(),
		MinAgreement:       DefaultMinAgreement,
	}
}

// Validate checks the configuration for errors
func (c Config) Validate() error {
	var errs []error
	if c.Window.Max < c.Window.Min {
		errs = append(errs, fmt.Errorf("window max %g below min %g", c.Window.Max, c.Window.Min))
	}
	if c.ShortWindow < 1 || c.LongWindow <= c.ShortWindow {
		errs = append(errs, fmt.Errorf("moving-average windows must satisfy 1 <= short < long, got %d/%d", c.ShortWindow, c.LongWindow))
	}
	if c.IntegralGate < 0 || c.IntegralGate > 1 {
		errs = append(errs, fmt.Errorf("integral gate %g outside [0, 1]", c.IntegralGate))
	}
	if c.CrossoverTolerance < 0 {
		errs = append(errs, fmt.Errorf("crossover tolerance %g is negative", c.CrossoverTolerance))
	}
	if c.MinAgreement < 1 {
		errs = append(errs, fmt.Errorf("min agreement %d must be positive", c.MinAgreement))
	}
	if c.Smoothing.Method == smooth.EMA && (c.Smoothing.Alpha <= 0 || c.Smoothing.Alpha > 1) {
		errs = append(errs, fmt.Errorf("EMA alpha %g outside (0, 1]", c.Smoothing.Alpha))
	}
	return errors.Join(errs...)
}

// Detectors builds the three configured detectors.
func (c Config) Detectors() []Detector {
	return []Detector{
		Crossover{
			Window:    c.Window,
			Short:     c.ShortWindow,
			Long:      c.LongWindow,
			Tolerance: c.CrossoverTolerance,
		},
		Gradient{
			Window:       c.Window,
			Smoothing:    c.Smoothing,
			IntegralGate: c.IntegralGate,
		},
		Elbow{
			Window:       c.Window,
			Smoothing:    c.Smoothing,
			IntegralGate: c.IntegralGate,
		},
	}
}
