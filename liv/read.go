// Package liv turns LIV measurement files into per-device records: it reads
// the row-labelled CSV written by the bench software, runs threshold
// detection on each photodiode channel and exports one summary row per
// channel.
package liv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultSkipRows     = 24
	DefaultCurrentScale = 1000 // A to mA
)

// ErrNoCurrent means the file has no current row and cannot be processed.
var ErrNoCurrent = errors.New("no current row")

// ReadOptions control how a measurement file is parsed.
type ReadOptions struct {
	SkipRows     int     `yaml:"skip_rows"`
	CurrentScale float64 `yaml:"current_scale"`
}

// DefaultReadOptions matches the bench software export.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		SkipRows:     DefaultSkipRows,
		CurrentScale: DefaultCurrentScale,
	}
}

// Channel is one photodiode row, power in mW.
type Channel struct {
	Number int
	Label  string
	Power  []float64
}

// Measurement is one LIV file. Every slice has the length of Current;
// rows that were absent are nil.
type Measurement struct {
	Name        string
	Current     []float64
	Voltage     []float64
	Temperature []float64
	Wavelength  []float64
	Channels    []Channel
}

var channelLabel = regexp.MustCompile(`(?i)^(?:ch(?:annel)?\s*)?([0-9])$`)

// ReadMeasurement parses a row-oriented CSV. The first cell of each row is
// its label; the remaining cells are samples. Unparseable cells become
// NaN and malformed lines are skipped.
func ReadMeasurement(
	r io.Reader,
	name string,
	opts ReadOptions,
) (
	Measurement,
	error,
) {

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	m := Measurement{Name: name}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			line++
			continue
		}
		if err != nil {
			return Measurement{}, fmt.Errorf("read %s: %w", name, err)
		}
		line++
		if line <= opts.SkipRows || len(rec) < 2 {
			continue
		}

		label := strings.TrimSpace(rec[0])
		values := parseRow(rec[1:])
		lower := strings.ToLower(label)

		switch {
		case strings.Contains(lower, "current"):
			if m.Current == nil {
				m.Current = values
			}
		case strings.Contains(lower, "voltage"):
			if m.Voltage == nil {
				m.Voltage = values
			}
		case strings.Contains(lower, "temperature"):
			if m.Temperature == nil {
				m.Temperature = values
			}
		case strings.Contains(lower, "wavelength"):
			if m.Wavelength == nil {
				m.Wavelength = values
			}
		default:
			if sub := channelLabel.FindStringSubmatch(label); sub != nil {
				n, _ := strconv.Atoi(sub[1])
				if !m.hasChannel(n) {
					m.Channels = append(m.Channels, Channel{Number: n, Label: label, Power: values})
				}
			}
		}
	}

	if m.Current == nil {
		return Measurement{}, fmt.Errorf("%s: %w", name, ErrNoCurrent)
	}

	scale := opts.CurrentScale
	if scale == 0 {
		scale = 1
	}
	for i := range m.Current {
		m.Current[i] *= scale
	}

	n := len(m.Current)
	m.Voltage = fitLength(m.Voltage, n)
	m.Temperature = fitLength(m.Temperature, n)
	m.Wavelength = fitLength(m.Wavelength, n)
	for i := range m.Channels {
		m.Channels[i].Power = fitLength(m.Channels[i].Power, n)
	}

	return m, nil
}

func (m *Measurement) hasChannel(n int) bool {
	for _, c := range m.Channels {
		if c.Number == n {
			return true
		}
	}
	return false
}

func parseRow(cells []string) []float64 {
	// Trailing empty cells are padding from wider rows.
	for len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// fitLength truncates or NaN-pads v to n entries. nil stays nil.
func fitLength(v []float64, n int) []float64 {
	if v == nil || len(v) == n {
		return v
	}
	out := make([]float64, n)
	copy(out, v)
	for i := len(v); i < n; i++ {
		out[i] = math.NaN()
	}
	return out
}

// ToDBm converts mW to dBm.
func ToDBm(mW float64) float64 {
	return 10 * math.Log10(mW)
}
