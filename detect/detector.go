// Package detect locates the lasing threshold of a current sweep.
//
// Three independent heuristics propose candidate indices (a moving-average
// crossover, a gradient-trend test and a curvature "elbow" test). A Resolver
// accepts an index only when at least two of them agree on it. Analyzer ties
// the pieces together and applies the up-front degenerate-input policies.
package detect

import (
	"fmt"
	"sort"
	"strings"

	sweep "github.com/HamletTheHamster/Sweep-Analysis-in-Go"
)

// Method names the heuristic that proposed a candidate.
type Method int

const (
	CrossoverMethod Method = iota
	GradientMethod
	ElbowMethod
)

func (m Method) String() string {
	switch m {
	case CrossoverMethod:
		return "crossover"
	case GradientMethod:
		return "gradient"
	case ElbowMethod:
		return "elbow"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Candidate is one proposed transition index.
type Candidate struct {
	Index  int
	Method Method
}

// Detector scans a sweep and proposes transition indices into it. Detect
// never fails: too little data or a degenerate sweep gives no candidates.
type Detector interface {
	Method() Method
	Detect(signal, current []float64) []int
}

// Window is the range of drive current, inclusive, in which a candidate is
// physically plausible.
type Window struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether current c lies inside the window.
func (w Window) Contains(c float64) bool {
	return c >= w.Min && c <= w.Max
}

// Flatten lists candidates ordered by index, then method.
func Flatten(lists map[Method][]int) []Candidate {
	var out []Candidate
	for m, list := range lists {
		for _, i := range list {
			out = append(out, Candidate{Index: i, Method: m})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index == out[j].Index {
			return out[i].Method < out[j].Method
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// FormatCandidates renders per-method candidates for logs, methods in
// declaration order.
func FormatCandidates(lists map[Method][]int) string {
	var parts []string
	for _, m := range []Method{CrossoverMethod, GradientMethod, ElbowMethod} {
		if list, ok := lists[m]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", m, list))
		}
	}
	return strings.Join(parts, " ")
}

// finite drops non-finite pairs. index maps positions of the compacted
// slices back into the caller's sweep.
func finite(
	signal, current []float64,
) (
	x, y []float64,
	index []int,
) {

	return sweep.Sweep{Current: current, Signal: signal}.Finite()
}
