package db

import (
	"context"
	"testing"
	"time"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

func testRun(id string, started time.Time) *models.Run {
	return &models.Run{
		ID:      id,
		Project: "Kecamatan Berdaya",
		Kind:    models.RunSummary,
		Mode:    "turbo",
		Range: models.DateRange{
			Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		StartedAt:  started,
		FinishedAt: started.Add(42 * time.Second),
		Total:      3,
		Counts:     models.OutcomeCounts{Success: 1, Empty: 1, Failed: 1},
		Errors: []models.ErrorLogEntry{
			{LocationID: "C", DisplayName: "Cilacap", Kind: models.OutcomeConnectionError, Reason: "timeout"},
			{LocationID: "B", DisplayName: "Banyumas", Kind: models.OutcomeEmpty, Reason: "No Data Available"},
		},
		SummaryRows: []models.SummaryRow{
			{LocationID: "A", DisplayName: "Ambarawa", TotalUsageGB: 12.5, AvgUsageGB: 2.5},
		},
	}
}

func TestInsertRun_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	started := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	if err := db.InsertRun(ctx, testRun("run-1", started)); err != nil {
		t.Fatalf("InsertRun() failed: %v", err)
	}

	runs, err := db.RecentRuns(ctx, "Kecamatan Berdaya", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("RecentRuns() returned %d runs, want 1", len(runs))
	}

	got := runs[0]
	if got.Kind != models.RunSummary || got.Mode != "turbo" || got.Total != 3 {
		t.Errorf("run = %+v", got)
	}
	if got.Counts != (models.OutcomeCounts{Success: 1, Empty: 1, Failed: 1}) {
		t.Errorf("counts = %+v", got.Counts)
	}
	if got.Duration() != 42*time.Second {
		t.Errorf("Duration() = %v, want 42s", got.Duration())
	}
	if got.Range.RemoteEnd() != "20260131" {
		t.Errorf("range end = %s", got.Range.RemoteEnd())
	}

	entries, err := db.GetRunErrors(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRunErrors() failed: %v", err)
	}
	if len(entries) != 2 || entries[0].LocationID != "C" || entries[1].Kind != models.OutcomeEmpty {
		t.Errorf("GetRunErrors() = %+v", entries)
	}

	rows, err := db.GetRunSummary(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRunSummary() failed: %v", err)
	}
	if len(rows) != 1 || rows[0].TotalUsageGB != 12.5 {
		t.Errorf("GetRunSummary() = %+v", rows)
	}
}

func TestRecentRuns_NewestFirstWithLimit(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := db.InsertRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("InsertRun(%s) failed: %v", id, err)
		}
	}

	runs, err := db.RecentRuns(ctx, "Kecamatan Berdaya", 2)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Errorf("RecentRuns() order = %v", []string{runs[0].ID, runs[1].ID})
	}
}
