package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/venue-usage-tui/internal/logger"
	"github.com/j-veylop/venue-usage-tui/internal/models"
)

var (
	// ErrNoCredential is returned when a run is started without a session.
	ErrNoCredential = errors.New("no session credential for project")
	// ErrEmptyRoster is returned when the project has no locations.
	ErrEmptyRoster = errors.New("roster has no locations")
)

// Fetcher is the usage client as seen by the pipeline.
type Fetcher interface {
	Fetch(ctx context.Context, credential, orgID, locationID string, dr models.DateRange) (models.UsageSeries, error)
}

// ChartRenderer turns one series into image bytes.
type ChartRenderer interface {
	Render(series models.UsageSeries, loc models.Location, dr models.DateRange) ([]byte, error)
}

// Request describes one run over a project's roster.
type Request struct {
	Roster     *models.Roster
	Range      models.DateRange
	Project    string
	OrgID      string
	Credential string
	Workers    int
}

// Validate checks the request before any network call is made.
func (r Request) Validate() error {
	if r.Credential == "" {
		return fmt.Errorf("%w %q", ErrNoCredential, r.Project)
	}
	if err := r.Range.Validate(); err != nil {
		return err
	}
	if r.Roster.Len() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyRoster, r.Project)
	}
	return nil
}

// ExportResult is the outcome of a bulk chart export.
type ExportResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Archive    []byte
	ErrorLog   []models.ErrorLogEntry
	Counts     models.OutcomeCounts
	Artifacts  int
	Cancelled  bool
}

// SummaryResult is the outcome of a usage ranking run.
type SummaryResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ErrorLog   []models.ErrorLogEntry
	Report     models.SummaryReport
	Counts     models.OutcomeCounts
	Cancelled  bool
}

// Runner drives export and summary runs. It keeps no state between runs.
type Runner struct {
	Fetcher  Fetcher
	Renderer ChartRenderer
	Now      func() time.Time
}

// NewRunner returns a runner using the wall clock.
func NewRunner(fetcher Fetcher, renderer ChartRenderer) *Runner {
	return &Runner{Fetcher: fetcher, Renderer: renderer, Now: time.Now}
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) start(ctx context.Context, req Request) (<-chan Completion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sched, err := NewScheduler(req.Workers)
	if err != nil {
		return nil, err
	}
	fetch := func(ctx context.Context, loc models.Location) (models.UsageSeries, error) {
		return r.Fetcher.Fetch(ctx, req.Credential, req.OrgID, loc.ID, req.Range)
	}
	logger.Info("run started", "project", req.Project, "locations", req.Roster.Len(),
		"workers", sched.Limit(), "range", req.Range.String())
	return sched.Run(ctx, req.Roster.Locations, fetch), nil
}

// Check fetches a single location and classifies it.
func (r *Runner) Check(ctx context.Context, credential, orgID string, loc models.Location, dr models.DateRange) (models.FetchOutcome, error) {
	if credential == "" {
		return models.FetchOutcome{}, ErrNoCredential
	}
	if err := dr.Validate(); err != nil {
		return models.FetchOutcome{}, err
	}
	series, err := r.Fetcher.Fetch(ctx, credential, orgID, loc.ID, dr)
	return Classify(series, err), nil
}

// Export renders a chart per successful location and zips them together with
// an error manifest. Rendering and zipping happen on the calling goroutine.
func (r *Runner) Export(ctx context.Context, req Request, onProgress func(Completion)) (*ExportResult, error) {
	completions, err := r.start(ctx, req)
	if err != nil {
		return nil, err
	}

	res := &ExportResult{StartedAt: r.now()}
	bundle := NewBundle(req.Project, res.StartedAt)

	for c := range completions {
		outcome := c.Outcome
		if outcome.IsSuccess() {
			img, err := r.Renderer.Render(outcome.Series, c.Location, req.Range)
			if err != nil {
				logger.Warn("chart render failed", "location", c.Location.ID, "error", err)
				outcome = models.FetchOutcome{
					Kind:   models.OutcomeConnectionError,
					Reason: "chart render failed: " + err.Error(),
				}
			} else {
				bundle.Add(ArtifactFilename(c.Location), img)
			}
		}

		res.Counts.Add(outcome.Kind)
		if !outcome.IsSuccess() {
			res.ErrorLog = append(res.ErrorLog, errorEntry(c.Location, outcome))
		}
		if onProgress != nil {
			c.Outcome = outcome
			onProgress(c)
		}
	}

	res.Archive, err = bundle.Finish(res.ErrorLog)
	if err != nil {
		return nil, err
	}
	res.Artifacts = bundle.Len()
	res.Cancelled = ctx.Err() != nil
	res.FinishedAt = r.now()

	logger.Info("export finished", "project", req.Project, "success", res.Counts.Success,
		"empty", res.Counts.Empty, "failed", res.Counts.Failed, "cancelled", res.Cancelled)
	return res, nil
}

// Summarize ranks every location in the roster by total usage.
func (r *Runner) Summarize(ctx context.Context, req Request, onProgress func(Completion)) (*SummaryResult, error) {
	completions, err := r.start(ctx, req)
	if err != nil {
		return nil, err
	}

	res := &SummaryResult{StartedAt: r.now()}
	all := Collect(completions, onProgress)
	outcomes := make([]models.LocationOutcome, 0, len(all))
	for _, c := range all {
		res.Counts.Add(c.Outcome.Kind)
		outcomes = append(outcomes, models.LocationOutcome{Location: c.Location, Outcome: c.Outcome})
	}

	res.Report = Aggregate(req.Roster, outcomes)
	res.ErrorLog = ErrorLog(outcomes)
	res.Cancelled = ctx.Err() != nil
	res.FinishedAt = r.now()

	logger.Info("summary finished", "project", req.Project, "active", res.Report.Active,
		"total", res.Report.Total, "failed", res.Counts.Failed)
	return res, nil
}
