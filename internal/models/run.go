package models

import (
	"fmt"
	"strings"
	"time"
)

// FetchMode selects a concurrency preset for bulk runs.
type FetchMode int

const (
	// ModeSafe keeps few requests in flight against the backend.
	ModeSafe FetchMode = iota
	// ModeTurbo trades backend load for speed.
	ModeTurbo
)

// String returns the mode's display name.
func (m FetchMode) String() string {
	switch m {
	case ModeSafe:
		return "safe"
	case ModeTurbo:
		return "turbo"
	default:
		return "unknown"
	}
}

// Next toggles between presets.
func (m FetchMode) Next() FetchMode {
	return (m + 1) % 2
}

// ParseFetchMode parses "safe" or "turbo".
func ParseFetchMode(s string) (FetchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "safe":
		return ModeSafe, nil
	case "turbo":
		return ModeTurbo, nil
	default:
		return ModeSafe, fmt.Errorf("unknown fetch mode %q (want safe or turbo)", s)
	}
}

// RunKind distinguishes the two bulk paths.
type RunKind string

const (
	// RunExport renders charts into a bundle.
	RunExport RunKind = "export"
	// RunSummary builds the ranked report.
	RunSummary RunKind = "summary"
)

// Run is the persisted audit record of one bulk invocation.
type Run struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	Range       DateRange
	ID          string
	Project     string
	Kind        RunKind
	Mode        string
	Errors      []ErrorLogEntry
	SummaryRows []SummaryRow
	Counts      OutcomeCounts
	Total       int
	Cancelled   bool
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
