package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/venue-usage-tui/internal/config"
	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/pipeline"
)

// venueServer serves A with data, B empty and fails everything else.
func venueServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.PostForm.Get("locid") {
		case "A":
			_, _ = w.Write([]byte(`[{"PERIODE":"20260101","USAGES":"2147483648","TRAFIK":"4"},{"PERIODE":"20260102","USAGES":"1073741824","TRAFIK":"2"}]`))
		case "B":
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:   filepath.Join(tmpDir, "test.db"),
		SessionsPath:   filepath.Join(tmpDir, "sessions.json"),
		ExportDir:      filepath.Join(tmpDir, "out"),
		BaseURL:        venueServer(t).URL,
		Projects:       []config.Project{{Name: "Pendidikan", OrgID: "13231"}},
		FetchTimeout:   5 * time.Second,
		RetryAttempts:  2,
		SafeWorkers:    1,
		TurboWorkers:   4,
		SummaryWorkers: 5,
	}

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	mgr.SetNotifier(nil)
	return mgr
}

func seedProject(t *testing.T, mgr *Manager) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	if err := os.WriteFile(path, []byte("LOC_ID,SITE_NAME\nA,Alpha\nB,Bravo\nC,Charlie\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.ImportRoster(context.Background(), "Pendidikan", path); err != nil {
		t.Fatalf("ImportRoster failed: %v", err)
	}
	if err := mgr.Sessions().Set("Pendidikan", "sess", models.SourceManual); err != nil {
		t.Fatalf("Set session failed: %v", err)
	}
}

func testRange(t *testing.T) models.DateRange {
	t.Helper()
	dr, err := models.ParseDateRange("2026-01-01", "2026-01-02")
	if err != nil {
		t.Fatal(err)
	}
	return dr
}

func TestNewManager(t *testing.T) {
	mgr := newTestManager(t)

	if mgr.Sessions() == nil {
		t.Error("Sessions service should be initialized")
	}
	if mgr.Database() == nil {
		t.Error("Database should be initialized")
	}
	if mgr.Config() == nil {
		t.Error("Config should be kept")
	}
}

func TestManager_Workers(t *testing.T) {
	mgr := newTestManager(t)

	tests := []struct {
		kind models.RunKind
		mode models.FetchMode
		want int
	}{
		{models.RunExport, models.ModeSafe, 1},
		{models.RunSummary, models.ModeSafe, 1},
		{models.RunExport, models.ModeTurbo, 4},
		{models.RunSummary, models.ModeTurbo, 5},
	}
	for _, tt := range tests {
		if got := mgr.Workers(tt.kind, tt.mode); got != tt.want {
			t.Errorf("Workers(%s, %s) = %d, want %d", tt.kind, tt.mode, got, tt.want)
		}
	}
}

func TestManager_ImportRosterUnknownProject(t *testing.T) {
	mgr := newTestManager(t)
	if _, err := mgr.ImportRoster(context.Background(), "Nope", "x.csv"); err == nil {
		t.Error("ImportRoster should reject unknown projects")
	}
}

func TestManager_ExportWritesArchiveAndRecordsRun(t *testing.T) {
	mgr := newTestManager(t)
	seedProject(t, mgr)

	var notified []string
	var mu sync.Mutex
	mgr.SetNotifier(func(title, _ string) error {
		mu.Lock()
		notified = append(notified, title)
		mu.Unlock()
		return nil
	})

	var done int
	res, err := mgr.Export(context.Background(), "Pendidikan", testRange(t), models.ModeTurbo, func(c pipeline.Completion) {
		done = c.Done
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if done != 3 {
		t.Errorf("progress reached %d, want 3", done)
	}
	if filepath.Base(res.Path) != "Report_Pendidikan.zip" {
		t.Errorf("Path = %s", res.Path)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("archive missing: %v", err)
	}
	if res.Run.Counts != (models.OutcomeCounts{Success: 1, Empty: 1, Failed: 1}) {
		t.Errorf("Counts = %+v", res.Run.Counts)
	}
	if len(notified) != 1 {
		t.Errorf("notifications = %v", notified)
	}

	runs, err := mgr.RecentRuns(context.Background(), "Pendidikan", 5)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != res.Run.ID || runs[0].Kind != models.RunExport {
		t.Fatalf("RecentRuns = %+v", runs)
	}

	detail, err := mgr.RunDetail(context.Background(), runs[0])
	if err != nil {
		t.Fatalf("RunDetail failed: %v", err)
	}
	if len(detail.Errors) != 2 {
		t.Errorf("Errors = %+v, want empty and failed entries", detail.Errors)
	}
	if detail.SummaryRows != nil {
		t.Error("export runs carry no ranking")
	}
}

func TestManager_Summary(t *testing.T) {
	mgr := newTestManager(t)
	seedProject(t, mgr)

	res, err := mgr.Summary(context.Background(), "Pendidikan", testRange(t), models.ModeSafe, nil)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if len(res.Report.Rows) != 1 || res.Report.Rows[0].LocationID != "A" {
		t.Fatalf("Rows = %+v", res.Report.Rows)
	}
	if res.Report.Rows[0].TotalUsageGB != 3 {
		t.Errorf("TotalUsageGB = %v, want 3", res.Report.Rows[0].TotalUsageGB)
	}

	rows, err := mgr.Database().GetRunSummary(context.Background(), res.Run.ID)
	if err != nil || len(rows) != 1 {
		t.Errorf("stored summary = %+v, %v", rows, err)
	}
}

func TestManager_Check(t *testing.T) {
	mgr := newTestManager(t)
	seedProject(t, mgr)

	loc, outcome, err := mgr.Check(context.Background(), "Pendidikan", "A", testRange(t))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if loc.DisplayName != "Alpha" || !outcome.IsSuccess() || len(outcome.Series) != 2 {
		t.Errorf("Check = %+v, %+v", loc, outcome)
	}

	if _, _, err := mgr.Check(context.Background(), "Pendidikan", "Z", testRange(t)); err == nil {
		t.Error("Check should fail for a location outside the roster")
	}
}

func TestManager_NoCredential(t *testing.T) {
	mgr := newTestManager(t)
	seedProject(t, mgr)
	if err := mgr.Sessions().Delete("Pendidikan"); err != nil {
		t.Fatal(err)
	}

	_, err := mgr.Export(context.Background(), "Pendidikan", testRange(t), models.ModeSafe, nil)
	if !errors.Is(err, pipeline.ErrNoCredential) {
		t.Errorf("Export error = %v, want ErrNoCredential", err)
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr := newTestManager(t)

	ch, cmd := mgr.Subscribe()
	if cmd == nil {
		t.Fatal("Subscribe should return a command")
	}

	mgr.broadcast(ErrorEvent{Service: "test", Error: errors.New("x")})

	timeout := time.After(time.Second)
	for found := false; !found; {
		select {
		case ev := <-ch:
			_, found = ev.(ErrorEvent)
		case <-timeout:
			t.Fatal("timed out waiting for ErrorEvent")
		}
	}

	mgr.Unsubscribe(ch)
	for range ch {
	}
}

func TestArchiveName(t *testing.T) {
	tests := map[string]string{
		"Pendidikan":            "Report_Pendidikan.zip",
		"WMS POLDA Jawa Tengah": "Report_WMS POLDA Jawa Tengah.zip",
		"a/b":                   "Report_a_b.zip",
	}
	for in, want := range tests {
		if got := ArchiveName(in); got != want {
			t.Errorf("ArchiveName(%q) = %q, want %q", in, got, want)
		}
	}
}
