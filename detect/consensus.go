package detect

// DefaultMinAgreement is the number of methods that must propose an index.
const DefaultMinAgreement = 2

// Consensus is the resolved threshold index. Index is -1 when Found is false.
type Consensus struct {
	Index     int
	Agreement int
	Found     bool
}

// Resolver merges candidate lists into a single index.
type Resolver struct {
	MinAgreement int
}

// Resolve counts, for every index, how many methods proposed it, keeps the
// indices with at least MinAgreement votes and returns the best supported
// one. Ties go to the smallest index, the earliest and most conservative
// threshold. A method repeating an index still casts one vote.
func (r Resolver) Resolve(
	lists map[Method][]int,
) Consensus {

	min := r.MinAgreement
	if min < 1 {
		min = DefaultMinAgreement
	}

	votes := make(map[int]int)
	for _, list := range lists {
		seen := make(map[int]bool, len(list))
		for _, i := range list {
			if seen[i] {
				continue
			}
			seen[i] = true
			votes[i]++
		}
	}

	best := Consensus{Index: -1}
	for i, n := range votes {
		if n < min {
			continue
		}
		if n > best.Agreement || (n == best.Agreement && i < best.Index) {
			best = Consensus{Index: i, Agreement: n, Found: true}
		}
	}

	return best
}
