// Package pipeline runs a roster through the usage client under a bounded
// worker pool and turns the outcomes into chart bundles and summary reports.
package pipeline

import (
	"github.com/j-veylop/venue-usage-tui/internal/models"
)

const (
	// ReasonNoData is recorded for locations whose fetch returned no rows.
	ReasonNoData = "No Data Available"
	// ReasonConnection prefixes the failure cause of a ConnectionError.
	ReasonConnection = "Connection Failed"
)

// Classify maps a fetch result onto an outcome. It does no I/O.
func Classify(series models.UsageSeries, err error) models.FetchOutcome {
	if err != nil {
		return models.FetchOutcome{
			Kind:   models.OutcomeConnectionError,
			Reason: ReasonConnection + ": " + err.Error(),
		}
	}
	if len(series) == 0 {
		return models.FetchOutcome{Kind: models.OutcomeEmpty, Reason: ReasonNoData}
	}
	return models.FetchOutcome{Kind: models.OutcomeSuccess, Series: series}
}
