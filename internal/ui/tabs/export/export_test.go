package export

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/venue-usage-tui/internal/app"
	"github.com/j-veylop/venue-usage-tui/internal/config"
	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/pipeline"
	"github.com/j-veylop/venue-usage-tui/internal/services"
)

func newTestModel(t *testing.T) (*Model, *app.State) {
	t.Helper()
	state := app.NewState()
	state.SetProjects([]config.Project{{Name: "Pendidikan", OrgID: "13231"}})
	state.SetRoster(&models.Roster{Project: "Pendidikan", Locations: []models.Location{
		{ID: "A", DisplayName: "Alpha"},
		{ID: "B", DisplayName: "Bravo"},
	}})
	m := New(state, app.NewCommands(nil, state))
	m.SetSize(100, 40)
	return m, state
}

func progress(done int, id string, kind models.OutcomeKind, reason string) app.RunProgressMsg {
	return app.RunProgressMsg{
		Project: "Pendidikan",
		Kind:    models.RunExport,
		Completion: pipeline.Completion{
			Location: models.Location{ID: id, DisplayName: "Site " + id},
			Outcome:  models.FetchOutcome{Kind: kind, Reason: reason},
			Done:     done,
			Total:    2,
		},
	}
}

func TestModel_Idle(t *testing.T) {
	m, _ := newTestModel(t)
	if m.Init() != nil {
		t.Error("Init has nothing to start")
	}

	view := m.View()
	for _, want := range []string{"Chart export", "Pendidikan · 2 locations", "safe mode", "Press enter"} {
		if !strings.Contains(view, want) {
			t.Errorf("idle view missing %q", want)
		}
	}

	// Without services the start command reports the problem.
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should start an export")
	}
	if _, ok := cmd().(app.AddNotificationMsg); !ok {
		t.Error("expected a notification without services")
	}
}

func TestModel_RunLifecycle(t *testing.T) {
	m, state := newTestModel(t)
	state.BeginRun("Pendidikan", models.RunExport, models.ModeSafe, nil)

	m.Update(app.RunStartedMsg{Project: "Pendidikan", Kind: models.RunExport, Total: 2})
	if !m.running {
		t.Fatal("run should be in progress")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter is ignored while running")
	}

	m.Update(progress(1, "B", models.OutcomeEmpty, "No Data Available"))
	m.Update(progress(2, "A", models.OutcomeSuccess, ""))

	if m.bar.Done() != 2 || m.log.Len() != 2 {
		t.Errorf("bar=%d log=%d, want 2/2", m.bar.Done(), m.log.Len())
	}
	if m.counts != (models.OutcomeCounts{Success: 1, Empty: 1}) {
		t.Errorf("counts = %+v", m.counts)
	}
	view := m.View()
	if !strings.Contains(view, "Site B (B)") || !strings.Contains(view, "No Data Available") {
		t.Error("log should list resolved locations")
	}

	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	state.EndRun()
	m.Update(app.ExportFinishedMsg{Result: &services.ExportResult{
		Path: "/tmp/out/Report_Pendidikan.zip",
		Run: &models.Run{
			StartedAt:  start,
			FinishedAt: start.Add(1500 * time.Millisecond),
			Total:      2,
			Counts:     models.OutcomeCounts{Success: 1, Empty: 1},
			Errors:     []models.ErrorLogEntry{{LocationID: "B", Kind: models.OutcomeEmpty}},
		},
	}})

	if m.running {
		t.Error("run should be finished")
	}
	view = m.View()
	for _, want := range []string{"Archive written", "Report_Pendidikan.zip", "1 charts", "1.5s", pipeline.ManifestName} {
		if !strings.Contains(view, want) {
			t.Errorf("result view missing %q", want)
		}
	}
}

func TestModel_IgnoresOtherRuns(t *testing.T) {
	m, state := newTestModel(t)
	state.BeginRun("Pendidikan", models.RunSummary, models.ModeSafe, nil)

	m.Update(app.RunStartedMsg{Project: "Pendidikan", Kind: models.RunSummary, Total: 2})
	m.Update(progress(1, "A", models.OutcomeSuccess, ""))

	if m.running || m.log.Len() != 0 {
		t.Error("summary runs belong to the summary tab")
	}
}

func TestModel_FailedFastRun(t *testing.T) {
	m, _ := newTestModel(t)

	// The finished message can overtake the started one.
	m.Update(app.ExportFinishedMsg{Err: pipeline.ErrNoCredential})
	m.Update(app.RunStartedMsg{Project: "Pendidikan", Kind: models.RunExport, Total: 2})

	if m.running {
		t.Error("a run that already ended must not look active")
	}
	if !strings.Contains(m.View(), "Export failed") {
		t.Error("error should stay visible")
	}
}

func TestModel_CancelledRun(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(app.ExportFinishedMsg{Result: &services.ExportResult{
		Path: "x.zip",
		Run:  &models.Run{Total: 2, Cancelled: true},
	}})
	if !strings.Contains(m.View(), "Cancelled") {
		t.Error("cancelled run should say so")
	}

	m.Update(app.ProjectChangedMsg{Project: "Other"})
	if m.result != nil {
		t.Error("project change should clear the previous result")
	}

	m.Update(app.ExportFinishedMsg{Err: errors.New("disk full")})
	if !strings.Contains(m.View(), "disk full") {
		t.Error("error should be shown")
	}
}

func TestModel_Help(t *testing.T) {
	m, _ := newTestModel(t)
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help bindings missing")
	}
}
