package models

// SummaryRow is the per-location reduction of a successful series.
type SummaryRow struct {
	LocationID   string  `json:"locationId"`
	DisplayName  string  `json:"displayName"`
	TotalUsageGB float64 `json:"totalUsageGb"`
	AvgUsageGB   float64 `json:"avgUsageGb"`
}

// SummaryReport ranks locations by total usage, highest first.
type SummaryReport struct {
	Rows   []SummaryRow `json:"rows"`
	Active int          `json:"active"` // locations with usable data
	Total  int          `json:"total"`  // roster size
}

// Top returns at most n leading rows.
func (r SummaryReport) Top(n int) []SummaryRow {
	if n < 0 || n >= len(r.Rows) {
		return r.Rows
	}
	return r.Rows[:n]
}

// GrandTotalGB sums usage over all rows.
func (r SummaryReport) GrandTotalGB() float64 {
	var total float64
	for _, row := range r.Rows {
		total += row.TotalUsageGB
	}
	return total
}
