package models

// OutcomeKind classifies the result of fetching one location.
type OutcomeKind int

const (
	// OutcomeSuccess means at least one day of usage was returned.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeEmpty means the backend answered but had no usable rows.
	OutcomeEmpty
	// OutcomeConnectionError means the fetch failed, including exhausted retries.
	OutcomeConnectionError
)

// String returns the tag used in error manifests.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeEmpty:
		return "EMPTY"
	case OutcomeConnectionError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FetchOutcome is the classified result for one location in one run.
// It is never persisted.
type FetchOutcome struct {
	Series UsageSeries
	Reason string
	Kind   OutcomeKind
}

// IsSuccess reports whether the outcome carries a usable series.
func (o FetchOutcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }

// LocationOutcome pairs an outcome with the location it belongs to.
type LocationOutcome struct {
	Location Location
	Outcome  FetchOutcome
}

// ErrorLogEntry records one empty or failed location, in completion order.
type ErrorLogEntry struct {
	LocationID  string
	DisplayName string
	Reason      string
	Kind        OutcomeKind
}

// Line renders the entry as it appears in the bundle manifest.
func (e ErrorLogEntry) Line() string {
	return "[" + e.Kind.String() + "] " + e.DisplayName + " (" + e.LocationID + "): " + e.Reason
}

// OutcomeCounts tallies a run's outcomes.
type OutcomeCounts struct {
	Success int
	Empty   int
	Failed  int
}

// Add records one outcome kind.
func (c *OutcomeCounts) Add(kind OutcomeKind) {
	switch kind {
	case OutcomeSuccess:
		c.Success++
	case OutcomeEmpty:
		c.Empty++
	default:
		c.Failed++
	}
}

// Total returns the number of recorded outcomes.
func (c OutcomeCounts) Total() int { return c.Success + c.Empty + c.Failed }
