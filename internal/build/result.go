package build

// Result represents the outcome of a completed build run.
//
// Results are ordered from most to least favorable; Combine implements the
// worst-wins aggregation used when summarizing several builds triggered by
// the same event.
type Result int

const (
	// ResultSuccess indicates the build completed with no problems
	ResultSuccess Result = iota
	// ResultUnstable indicates the build completed but reported problems (e.g. test failures)
	ResultUnstable
	// ResultFailure indicates the build did not complete or exited non-zero
	ResultFailure
	// ResultNotBuilt indicates the build was skipped entirely
	ResultNotBuilt
	// ResultAborted indicates the build was cancelled before it finished
	ResultAborted
)

// Combine returns the least favorable of the two results. The operation is
// commutative and associative, so a set of results can be folded in any order.
func (r Result) Combine(other Result) Result {
	if other > r {
		return other
	}
	return r
}

// String returns the canonical lowercase name of the result.
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultUnstable:
		return "unstable"
	case ResultFailure:
		return "failure"
	case ResultNotBuilt:
		return "not_built"
	case ResultAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Color returns the ball color used to render this result.
func (r Result) Color() BallColor {
	switch r {
	case ResultSuccess:
		return BallBlue
	case ResultUnstable:
		return BallYellow
	case ResultFailure:
		return BallRed
	case ResultNotBuilt:
		return BallNotBuilt
	case ResultAborted:
		return BallAborted
	default:
		return BallGrey
	}
}
