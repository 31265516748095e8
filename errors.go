package sweep

import "errors"

// Failure taxonomy shared by the detectors, the analyzer and the fitters.
// Callers match with errors.Is; all of them are per-channel conditions and
// never a reason to stop a batch.
var (
	// ErrInsufficientData indicates too few finite points for the operation
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMismatchedLengths indicates current and signal differ in length
	ErrMismatchedLengths = errors.New("current and signal lengths differ")

	// ErrNoConsensus indicates no candidate index reached the required agreement
	ErrNoConsensus = errors.New("no consensus between detectors")

	// ErrFitDivergence indicates the optimizer failed, hit its iteration cap
	// or ended pinned to a bound
	ErrFitDivergence = errors.New("fit did not converge")

	// ErrDegenerateInput indicates a flat signal, an empty window or a sweep
	// that starts past the turn-on current
	ErrDegenerateInput = errors.New("degenerate input")
)
