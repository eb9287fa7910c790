package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

func makeLocations(n int) []models.Location {
	locs := make([]models.Location, n)
	for i := range locs {
		locs[i] = models.Location{ID: fmt.Sprintf("L%02d", i), DisplayName: fmt.Sprintf("Site %d", i)}
	}
	return locs
}

func oneDay() models.UsageSeries {
	return models.UsageSeries{{Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), ConnectedUsers: 1, UsageBytes: 1}}
}

func TestNewScheduler_InvalidLimit(t *testing.T) {
	_, err := NewScheduler(0)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	s, err := NewScheduler(3)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Limit())
}

func TestScheduler_EveryLocationExactlyOnce(t *testing.T) {
	locs := makeLocations(25)
	s, err := NewScheduler(4)
	require.NoError(t, err)

	fetch := func(_ context.Context, loc models.Location) (models.UsageSeries, error) {
		switch loc.ID[len(loc.ID)-1] % 3 {
		case 0:
			return oneDay(), nil
		case 1:
			return nil, nil
		default:
			return nil, errors.New("boom")
		}
	}

	seen := map[string]int{}
	last := 0
	for c := range s.Run(context.Background(), locs, fetch) {
		seen[c.Location.ID]++
		assert.Equal(t, last+1, c.Done, "progress must be monotonic")
		assert.Equal(t, len(locs), c.Total)
		last = c.Done
	}

	assert.Len(t, seen, len(locs))
	for id, n := range seen {
		assert.Equal(t, 1, n, "location %s", id)
	}
	assert.Equal(t, len(locs), last)
}

func TestScheduler_RespectsLimit(t *testing.T) {
	const limit = 3
	s, err := NewScheduler(limit)
	require.NoError(t, err)

	var inFlight, peak atomic.Int32
	fetch := func(_ context.Context, _ models.Location) (models.UsageSeries, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return oneDay(), nil
	}

	all := Collect(s.Run(context.Background(), makeLocations(20), fetch), nil)
	assert.Len(t, all, 20)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Positive(t, peak.Load())
}

func TestScheduler_CancelStopsNewDispatch(t *testing.T) {
	s, err := NewScheduler(1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(taskCtx context.Context, _ models.Location) (models.UsageSeries, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		if taskCtx.Err() != nil {
			return nil, taskCtx.Err()
		}
		return oneDay(), nil
	}

	ch := s.Run(ctx, makeLocations(3), fetch)
	<-started
	cancel()
	close(release)

	all := Collect(ch, nil)
	require.Len(t, all, 3)
	assert.Equal(t, int32(1), calls.Load(), "no new fetch after cancel")

	byID := map[string]models.FetchOutcome{}
	for _, c := range all {
		byID[c.Location.ID] = c.Outcome
	}
	assert.Equal(t, models.OutcomeSuccess, byID["L00"].Kind, "in-flight task completes")
	for _, id := range []string{"L01", "L02"} {
		assert.Equal(t, models.OutcomeConnectionError, byID[id].Kind)
		assert.Equal(t, ReasonCancelled, byID[id].Reason)
	}
}

func TestScheduler_PanicIsolated(t *testing.T) {
	s, err := NewScheduler(2)
	require.NoError(t, err)

	fetch := func(_ context.Context, loc models.Location) (models.UsageSeries, error) {
		if loc.ID == "L01" {
			panic("bad row")
		}
		return oneDay(), nil
	}

	counts := models.OutcomeCounts{}
	var progress []float64
	for _, c := range Collect(s.Run(context.Background(), makeLocations(3), fetch), func(c Completion) {
		progress = append(progress, c.Progress())
	}) {
		counts.Add(c.Outcome.Kind)
	}

	assert.Equal(t, models.OutcomeCounts{Success: 2, Failed: 1}, counts)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3, 1}, progress, 1e-9)
}

func TestScheduler_EmptyRoster(t *testing.T) {
	s, err := NewScheduler(3)
	require.NoError(t, err)

	all := Collect(s.Run(context.Background(), nil, func(context.Context, models.Location) (models.UsageSeries, error) {
		t.Fatal("fetch must not be called")
		return nil, nil
	}), nil)
	assert.Empty(t, all)
}
