package detect

import (
	"fmt"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/internal/numeric"
)

// Result is the threshold of one sweep. Index is -1 and Current is 0 unless
// Found; a past-threshold sweep under ReportZero is Found with Current 0.
type Result struct {
	Current       float64
	Index         int
	Agreement     int
	Found         bool
	PastThreshold bool
	Candidates    map[Method][]int
}

// Analyzer runs the detectors over a sweep and resolves their candidates.
type Analyzer struct {
	Detectors []Detector
	Resolver  Resolver

	// TurnOn is the current at which a device is expected to be fully on;
	// sweeps starting at or above it are not scanned. 0 disables the check.
	TurnOn float64
	Policy PastThresholdPolicy
}

// NewAnalyzer wires the three detectors from cfg.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{
		Detectors: cfg.Detectors(),
		Resolver:  Resolver{MinAgreement: cfg.MinAgreement},
		TurnOn:    cfg.TurnOn,
		Policy:    cfg.PastThreshold,
	}
}

// Threshold locates the threshold current of a sweep. Errors are the sweep
// package sentinels and are per-sweep conditions: ErrMismatchedLengths,
// ErrInsufficientData, ErrDegenerateInput (flat signal, or past threshold
// under ReportNone) and ErrNoConsensus, which still carries the candidates.
func (a *Analyzer) Threshold(
	current, signal []float64,
) (
	Result, error,
) {

	res := Result{Index: -1}

	s := sweep.Sweep{Current: current, Signal: signal}
	if err := s.Validate(); err != nil {
		return res, err
	}

	_, y, _ := s.Finite()
	if len(y) < 2 {
		return res, fmt.Errorf("%w: %d finite points", sweep.ErrInsufficientData, len(y))
	}

	if first := s.FirstCurrent(); a.TurnOn > 0 && first >= a.TurnOn {
		res.PastThreshold = true
		if a.Policy == ReportZero {
			res.Found = true
			return res, nil
		}
		return res, fmt.Errorf("%w: sweep starts at %g, at or past turn-on %g", sweep.ErrDegenerateInput, first, a.TurnOn)
	}

	if lo, hi, _ := numeric.MinMax(y); lo == hi {
		return res, fmt.Errorf("%w: constant signal %g", sweep.ErrDegenerateInput, lo)
	}

	res.Candidates = make(map[Method][]int, len(a.Detectors))
	for _, d := range a.Detectors {
		m := d.Method()
		res.Candidates[m] = append(res.Candidates[m], d.Detect(signal, current)...)
	}

	c := a.Resolver.Resolve(res.Candidates)
	res.Agreement = c.Agreement
	if !c.Found {
		return res, fmt.Errorf("%w: %s", sweep.ErrNoConsensus, FormatCandidates(res.Candidates))
	}

	res.Index = c.Index
	res.Current = current[c.Index]
	res.Found = true

	return res, nil
}
