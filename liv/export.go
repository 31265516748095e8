package liv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

var recordHeader = []string{
	"file",
	"channel",
	"label",
	"data_channel",
	"threshold_mA",
	"method",
	"agreement",
	"peak_power_mW",
	"peak_power_dBm",
	"device_peak_power_mW",
	"device_peak_current_mA",
	"device_peak_voltage_V",
	"device_peak_wavelength_nm",
	"diff_resistance_fit",
	"error",
}

// WriteRecords writes one CSV row per channel. Missing numbers are left
// blank.
func WriteRecords(w io.Writer, records []Record) error {

	currents := powerAtCurrents(records)

	cw := csv.NewWriter(w)
	header := append([]string(nil), recordHeader...)
	for _, c := range currents {
		header = append(header, "power_at_"+formatFloat(c)+"mA")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		fitText := ""
		if rec.DiffResistance != nil {
			fitText = rec.DiffResistance.String()
		}
		for _, ch := range rec.Channels {
			errText := ""
			switch {
			case ch.Err != nil:
				errText = ch.Err.Error()
			case ch.Skipped:
				errText = "below noise floor"
			}
			row := []string{
				rec.Name,
				strconv.Itoa(ch.Channel),
				ch.Label,
				strconv.FormatBool(ch.Channel == rec.DataChannel),
				formatFloat(ch.Threshold),
				ch.Method,
				strconv.Itoa(ch.Agreement),
				formatFloat(ch.PeakPower),
				formatFloat(ToDBm(ch.PeakPower)),
				formatFloat(rec.PeakPower),
				formatFloat(rec.PeakCurrent),
				formatFloat(rec.PeakVoltage),
				formatFloat(rec.PeakWavelength),
				fitText,
				errText,
			}
			for _, c := range currents {
				v, ok := ch.PowerAt[c]
				if !ok {
					v = math.NaN()
				}
				row = append(row, formatFloat(v))
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write %s channel %d: %w", rec.Name, ch.Channel, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func powerAtCurrents(records []Record) []float64 {
	seen := map[float64]bool{}
	var out []float64
	for _, rec := range records {
		for _, ch := range rec.Channels {
			for c := range ch.PowerAt {
				if !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
			}
		}
	}
	sort.Float64s(out)
	return out
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
