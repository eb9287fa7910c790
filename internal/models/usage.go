// Package models defines data structures and domain types.
package models

import (
	"errors"
	"fmt"
	"time"
)

// bytesPerGigabyte converts raw usage bytes to GB (binary).
const bytesPerGigabyte = 1 << 30

const (
	// RemoteDateLayout is the day-granularity format used by the venue backend.
	RemoteDateLayout = "20060102"
	// DisplayDateLayout is the format used in chart titles and reports.
	DisplayDateLayout = "02/01/2006"
	// InputDateLayout is the format accepted on the command line.
	InputDateLayout = "2006-01-02"
)

// ErrInvalidDateRange is returned when a range ends before it starts.
var ErrInvalidDateRange = errors.New("invalid date range")

// UsagePoint is one calendar day of telemetry for one location.
type UsagePoint struct {
	Date           time.Time `json:"date"`
	ConnectedUsers int64     `json:"connectedUsers"`
	UsageBytes     float64   `json:"usageBytes"`
}

// UsageGigabytes returns the day's data volume in GB.
func (p UsagePoint) UsageGigabytes() float64 {
	return p.UsageBytes / bytesPerGigabyte
}

// UsageSeries is the ordered daily telemetry for one location and range.
// Dates are unique and ascending. An empty series is a valid "no data" answer.
type UsageSeries []UsagePoint

// TotalGigabytes sums usage over the series.
func (s UsageSeries) TotalGigabytes() float64 {
	var total float64
	for _, p := range s {
		total += p.UsageGigabytes()
	}
	return total
}

// AverageGigabytes returns the mean daily usage, or 0 for an empty series.
func (s UsageSeries) AverageGigabytes() float64 {
	if len(s) == 0 {
		return 0
	}
	return s.TotalGigabytes() / float64(len(s))
}

// MaxConnectedUsers returns the peak daily user count.
func (s UsageSeries) MaxConnectedUsers() int64 {
	var peak int64
	for _, p := range s {
		if p.ConnectedUsers > peak {
			peak = p.ConnectedUsers
		}
	}
	return peak
}

// Gigabytes returns the per-day GB values in series order.
func (s UsageSeries) Gigabytes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.UsageGigabytes()
	}
	return out
}

// Users returns the per-day connected user counts in series order.
func (s UsageSeries) Users() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = float64(p.ConnectedUsers)
	}
	return out
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range truncated to calendar days.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: truncateDay(start), End: truncateDay(end)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// ParseDateRange parses two YYYY-MM-DD strings.
func ParseDateRange(from, to string) (DateRange, error) {
	start, err := time.Parse(InputDateLayout, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start %q: %v", ErrInvalidDateRange, from, err)
	}
	end, err := time.Parse(InputDateLayout, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end %q: %v", ErrInvalidDateRange, to, err)
	}
	return NewDateRange(start, end)
}

// CurrentMonth returns the range from the first of now's month up to now.
func CurrentMonth(now time.Time) DateRange {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return DateRange{Start: truncateDay(start), End: truncateDay(now)}
}

// Validate checks that the range is well-formed.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidDateRange)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange,
			r.Start.Format(InputDateLayout), r.End.Format(InputDateLayout))
	}
	return nil
}

// Days returns the number of calendar days covered, inclusive.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// RemoteStart returns the start day in the backend's format.
func (r DateRange) RemoteStart() string { return r.Start.Format(RemoteDateLayout) }

// RemoteEnd returns the end day in the backend's format.
func (r DateRange) RemoteEnd() string { return r.End.Format(RemoteDateLayout) }

// String returns "dd/mm/yyyy - dd/mm/yyyy".
func (r DateRange) String() string {
	return r.Start.Format(DisplayDateLayout) + " - " + r.End.Format(DisplayDateLayout)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
