package pipeline

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

// Aggregate reduces successful outcomes into a ranked report. Rows follow
// roster order before a stable descending sort on total usage, so ties keep
// roster order. Outcomes for locations outside the roster are ignored.
func Aggregate(roster *models.Roster, outcomes []models.LocationOutcome) models.SummaryReport {
	index := roster.Index()

	successes := lo.Filter(outcomes, func(o models.LocationOutcome, _ int) bool {
		_, known := index[o.Location.ID]
		return known && o.Outcome.IsSuccess()
	})
	successes = lo.UniqBy(successes, func(o models.LocationOutcome) string {
		return o.Location.ID
	})
	slices.SortFunc(successes, func(a, b models.LocationOutcome) int {
		return cmp.Compare(index[a.Location.ID], index[b.Location.ID])
	})

	rows := lo.Map(successes, func(o models.LocationOutcome, _ int) models.SummaryRow {
		return models.SummaryRow{
			LocationID:   o.Location.ID,
			DisplayName:  o.Location.DisplayName,
			TotalUsageGB: o.Outcome.Series.TotalGigabytes(),
			AvgUsageGB:   o.Outcome.Series.AverageGigabytes(),
		}
	})
	slices.SortStableFunc(rows, func(a, b models.SummaryRow) int {
		return cmp.Compare(b.TotalUsageGB, a.TotalUsageGB)
	})

	return models.SummaryReport{
		Rows:   rows,
		Active: len(rows),
		Total:  roster.Len(),
	}
}

// ErrorLog extracts the non-success outcomes in the order given.
func ErrorLog(outcomes []models.LocationOutcome) []models.ErrorLogEntry {
	failed := lo.Filter(outcomes, func(o models.LocationOutcome, _ int) bool {
		return !o.Outcome.IsSuccess()
	})
	return lo.Map(failed, func(o models.LocationOutcome, _ int) models.ErrorLogEntry {
		return errorEntry(o.Location, o.Outcome)
	})
}

func errorEntry(loc models.Location, o models.FetchOutcome) models.ErrorLogEntry {
	return models.ErrorLogEntry{
		LocationID:  loc.ID,
		DisplayName: loc.DisplayName,
		Kind:        o.Kind,
		Reason:      o.Reason,
	}
}
