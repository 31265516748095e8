package liv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/detect"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/fit"
	"github.com/HamletTheHamster/Sweep-Analysis-in-Go/internal/numeric"
)

const (
	DefaultNoiseFloor       = 1e-30
	DefaultPowerAtTolerance = 0.1
	DefaultWavelengthFitMin = 25.0
	DefaultWavelengthFitMax = 50.0
	DefaultWavelengthFitDeg = 2
	DefaultWorkers          = 4
)

// How a channel threshold was obtained.
const (
	MethodConsensus     = "consensus"
	MethodPiecewise     = "piecewise"
	MethodPastThreshold = "past-threshold"
)

// Options tune per-file processing.
type Options struct {
	NoiseFloor          float64     `yaml:"noise_floor"`
	FallbackFit         bool        `yaml:"fallback_fit"`
	PowerAt             []float64   `yaml:"power_at"`
	PowerAtTolerance    float64     `yaml:"power_at_tolerance"`
	WavelengthFitMin    float64     `yaml:"wavelength_fit_min"`
	WavelengthFitMax    float64     `yaml:"wavelength_fit_max"`
	WavelengthFitDegree int         `yaml:"wavelength_fit_degree"`
	Read                ReadOptions `yaml:"read"`
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() Options {
	return Options{
		NoiseFloor:          DefaultNoiseFloor,
		FallbackFit:         true,
		PowerAtTolerance:    DefaultPowerAtTolerance,
		WavelengthFitMin:    DefaultWavelengthFitMin,
		WavelengthFitMax:    DefaultWavelengthFitMax,
		WavelengthFitDegree: DefaultWavelengthFitDeg,
		Read:                DefaultReadOptions(),
	}
}

// ChannelResult is the outcome for one photodiode channel. A channel that
// could not be analysed keeps its error in Err; Skipped marks channels
// below the noise floor.
type ChannelResult struct {
	Channel    int
	Label      string
	Threshold  float64
	Found      bool
	Agreement  int
	Method     string
	Candidates map[detect.Method][]int
	PeakPower  float64
	PowerAt    map[float64]float64
	Skipped    bool
	Err        error
}

// Record is everything extracted from one file.
type Record struct {
	Name           string
	DataChannel    int
	PeakPower      float64
	PeakCurrent    float64
	PeakVoltage    float64
	PeakWavelength float64
	Channels       []ChannelResult
	DiffResistance *fit.PowerLaw
	WavelengthFit  *fit.Polynomial
	Measurement    Measurement
}

// Processor runs threshold detection and the auxiliary fits on measurements.
type Processor struct {
	analyzer *detect.Analyzer
	fitter   *fit.Fitter
	opts     Options
	logger   *slog.Logger
}

func NewProcessor(
	cfg detect.Config,
	fitter *fit.Fitter,
	opts Options,
	logger *slog.Logger,
) *Processor {

	if logger == nil {
		logger = slog.Default()
	}
	if fitter == nil {
		fitter = fit.New()
	}
	return &Processor{
		analyzer: detect.NewAnalyzer(cfg),
		fitter:   fitter,
		opts:     opts,
		logger:   logger,
	}
}

// Process analyses every channel of m. Per-channel failures are recorded
// and logged, never returned.
func (p *Processor) Process(m Measurement) Record {

	log := p.logger.With("file", m.Name)
	rec := Record{
		Name:           m.Name,
		DataChannel:    -1,
		PeakPower:      math.NaN(),
		PeakCurrent:    math.NaN(),
		PeakVoltage:    math.NaN(),
		PeakWavelength: math.NaN(),
		Measurement:    m,
	}

	bestMean := math.Inf(-1)
	for _, ch := range m.Channels {
		cr := p.channel(log, m.Current, ch)
		rec.Channels = append(rec.Channels, cr)
		if cr.Skipped {
			continue
		}
		if mean := finiteMean(ch.Power); mean > bestMean {
			bestMean = mean
			rec.DataChannel = ch.Number
		}
	}

	if data := m.channel(rec.DataChannel); data != nil {
		if i := argMax(data.Power); i >= 0 {
			rec.PeakPower = data.Power[i]
			rec.PeakCurrent = m.Current[i]
			rec.PeakVoltage = at(m.Voltage, i)
			rec.PeakWavelength = at(m.Wavelength, i)
		}
	}

	if m.Voltage != nil {
		pl, err := p.fitter.DiffResistance(m.Current, m.Voltage)
		if err != nil {
			log.Warn("differential resistance fit failed", "err", err)
		} else {
			rec.DiffResistance = &pl
			log.Debug("differential resistance", "fit", pl.String(), "r2", pl.Goodness)
		}
	}

	if m.Wavelength != nil {
		poly, err := p.wavelengthFit(m.Current, m.Wavelength)
		if err != nil {
			log.Warn("wavelength fit failed", "err", err)
		} else {
			rec.WavelengthFit = &poly
		}
	}

	return rec
}

func (p *Processor) channel(
	log *slog.Logger,
	current []float64,
	ch Channel,
) ChannelResult {

	cr := ChannelResult{
		Channel:   ch.Number,
		Label:     ch.Label,
		Threshold: math.NaN(),
		PeakPower: math.NaN(),
		PowerAt:   p.powerAt(current, ch.Power),
	}
	if i := argMax(ch.Power); i >= 0 {
		cr.PeakPower = ch.Power[i]
	}

	if !(finiteMean(ch.Power) >= p.opts.NoiseFloor) {
		cr.Skipped = true
		log.Debug("channel below noise floor", "channel", ch.Number)
		return cr
	}

	res, err := p.analyzer.Threshold(current, ch.Power)
	cr.Candidates = res.Candidates
	cr.Agreement = res.Agreement

	switch {
	case err == nil && res.PastThreshold:
		cr.Threshold, cr.Found, cr.Method = res.Current, true, MethodPastThreshold
	case err == nil:
		cr.Threshold, cr.Found, cr.Method = res.Current, true, MethodConsensus
	case errors.Is(err, sweep.ErrNoConsensus) && p.opts.FallbackFit:
		log.Debug("no consensus, trying piecewise fit", "channel", ch.Number, "err", err)
		pw, ferr := p.fitter.Piecewise(current, ch.Power)
		if ferr != nil {
			cr.Err = fmt.Errorf("%w; piecewise fallback: %w", err, ferr)
			break
		}
		cr.Threshold, cr.Found, cr.Method = pw.Ith, true, MethodPiecewise
	default:
		cr.Err = err
		if res.PastThreshold {
			cr.Method = MethodPastThreshold
		}
	}

	if cr.Err != nil {
		log.Warn("no threshold", "channel", ch.Number, "err", cr.Err)
	} else {
		log.Info("threshold", "channel", ch.Number, "current", cr.Threshold, "method", cr.Method, "agreement", cr.Agreement)
	}
	return cr
}

func (p *Processor) powerAt(current, power []float64) map[float64]float64 {
	if len(p.opts.PowerAt) == 0 {
		return nil
	}
	tol := p.opts.PowerAtTolerance
	if tol <= 0 {
		tol = DefaultPowerAtTolerance
	}

	out := make(map[float64]float64, len(p.opts.PowerAt))
	for _, want := range p.opts.PowerAt {
		out[want] = math.NaN()
		best := math.Inf(1)
		for i, c := range current {
			if d := math.Abs(c - want); d <= tol && d < best && i < len(power) {
				best = d
				out[want] = power[i]
			}
		}
	}
	return out
}

// wavelengthFit fits wavelength against current over the configured
// current range, or over every point when the range holds fewer than three.
func (p *Processor) wavelengthFit(current, wavelength []float64) (fit.Polynomial, error) {
	var x, y []float64
	for i, c := range current {
		if c >= p.opts.WavelengthFitMin && c <= p.opts.WavelengthFitMax {
			x = append(x, c)
			y = append(y, wavelength[i])
		}
	}
	if len(x) < 3 {
		x, y = current, wavelength
	}
	deg := p.opts.WavelengthFitDegree
	if deg <= 0 {
		deg = DefaultWavelengthFitDeg
	}
	return fit.Polyfit(x, y, deg)
}

// ProcessFiles reads and processes paths with up to workers files in
// flight. Records come back in input order; unreadable files are logged
// and left out.
func (p *Processor) ProcessFiles(
	ctx context.Context,
	paths []string,
	workers int,
) (
	[]Record,
	error,
) {

	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]*Record, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := p.readFile(path)
			if err != nil {
				p.logger.Warn("skipping file", "path", path, "err", err)
				return nil
			}
			rec := p.Process(m)
			results[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []Record
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, nil
}

func (p *Processor) readFile(path string) (Measurement, error) {
	f, err := os.Open(path)
	if err != nil {
		return Measurement{}, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadMeasurement(f, name, p.opts.Read)
}

func (m Measurement) channel(n int) *Channel {
	for i := range m.Channels {
		if m.Channels[i].Number == n {
			return &m.Channels[i]
		}
	}
	return nil
}

func finiteMean(v []float64) float64 {
	var s float64
	var n int
	for _, x := range v {
		if numeric.IsFinite(x) {
			s += x
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return s / float64(n)
}

func argMax(v []float64) int {
	best := -1
	for i, x := range v {
		if numeric.IsFinite(x) && (best < 0 || x > v[best]) {
			best = i
		}
	}
	return best
}

func at(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return math.NaN()
}
