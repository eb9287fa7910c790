package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/j-veylop/venue-usage-tui/internal/logger"
	"github.com/j-veylop/venue-usage-tui/internal/models"
)

// ReasonCancelled is recorded for locations never dispatched because the run
// was stopped.
const ReasonCancelled = "run cancelled before dispatch"

// ErrInvalidLimit is returned for a concurrency limit below one.
var ErrInvalidLimit = errors.New("concurrency limit must be at least 1")

// FetchFunc retrieves the series for one location.
type FetchFunc func(ctx context.Context, loc models.Location) (models.UsageSeries, error)

// Completion is one classified outcome, delivered as soon as it resolves.
type Completion struct {
	Location models.Location
	Outcome  models.FetchOutcome
	Done     int
	Total    int
}

// Progress returns Done/Total in [0, 1].
func (c Completion) Progress() float64 {
	if c.Total == 0 {
		return 1
	}
	return float64(c.Done) / float64(c.Total)
}

// Scheduler fans a roster out over at most limit concurrent fetches.
type Scheduler struct {
	limit int
}

// NewScheduler returns a scheduler with the given concurrency cap.
func NewScheduler(limit int) (*Scheduler, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	return &Scheduler{limit: limit}, nil
}

// Limit returns the concurrency cap.
func (s *Scheduler) Limit() int { return s.limit }

// Run dispatches one fetch per location and streams the outcomes in
// completion order. The channel yields exactly len(locs) completions and is
// then closed.
//
// Cancelling ctx stops new dispatches only. Fetches already running keep a
// detached context and still report; locations never dispatched are reported
// as connection errors.
func (s *Scheduler) Run(ctx context.Context, locs []models.Location, fetch FetchFunc) <-chan Completion {
	total := len(locs)
	results := make(chan models.LocationOutcome, total)
	out := make(chan Completion, total)

	go func() {
		defer close(results)

		sem := semaphore.NewWeighted(int64(s.limit))
		var g errgroup.Group
		detached := context.WithoutCancel(ctx)

		dispatched := 0
		for _, loc := range locs {
			if ctx.Err() != nil {
				break
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			dispatched++
			g.Go(func() error {
				defer sem.Release(1)
				results <- models.LocationOutcome{Location: loc, Outcome: runTask(detached, loc, fetch)}
				return nil
			})
		}

		if skipped := locs[dispatched:]; len(skipped) > 0 {
			logger.Info("run cancelled", "dispatched", dispatched, "skipped", len(skipped))
			for _, loc := range skipped {
				results <- models.LocationOutcome{
					Location: loc,
					Outcome:  models.FetchOutcome{Kind: models.OutcomeConnectionError, Reason: ReasonCancelled},
				}
			}
		}

		_ = g.Wait()
	}()

	go func() {
		defer close(out)
		done := 0
		for r := range results {
			done++
			out <- Completion{Location: r.Location, Outcome: r.Outcome, Done: done, Total: total}
		}
	}()

	return out
}

// runTask isolates one location: errors and panics both become outcomes.
func runTask(ctx context.Context, loc models.Location, fetch FetchFunc) (outcome models.FetchOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("fetch panicked", "location", loc.ID, "panic", r)
			outcome = Classify(nil, fmt.Errorf("panic: %v", r))
		}
	}()
	series, err := fetch(ctx, loc)
	return Classify(series, err)
}

// Collect drains a completion stream into a slice, calling onProgress for each.
func Collect(ch <-chan Completion, onProgress func(Completion)) []Completion {
	var all []Completion
	for c := range ch {
		all = append(all, c)
		if onProgress != nil {
			onProgress(c)
		}
	}
	return all
}
