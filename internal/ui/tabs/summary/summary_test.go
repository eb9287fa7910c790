package summary

import (
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
	m := New(state, app.NewCommands(nil, state))
	m.SetSize(120, 40)
	return m, state
}

func finished() app.SummaryFinishedMsg {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	rows := make([]models.SummaryRow, 0, 12)
	for i := range 12 {
		rows = append(rows, models.SummaryRow{
			LocationID:   string(rune('A' + i)),
			DisplayName:  "Site " + string(rune('A'+i)),
			TotalUsageGB: float64(12 - i),
			AvgUsageGB:   float64(12-i) / 2,
		})
	}
	return app.SummaryFinishedMsg{Result: &services.SummaryResult{
		Run: &models.Run{
			StartedAt:  start,
			FinishedAt: start.Add(2 * time.Second),
			Total:      14,
			Counts:     models.OutcomeCounts{Success: 12, Empty: 1, Failed: 1},
		},
		Report: models.SummaryReport{Rows: rows, Active: 12, Total: 14},
	}}
}

func TestModel_Idle(t *testing.T) {
	m, _ := newTestModel(t)
	if m.Init() != nil {
		t.Error("Init has nothing to start")
	}
	if !strings.Contains(m.View(), "Press enter") {
		t.Error("idle view should explain how to start")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should start a summary")
	}
	if _, ok := cmd().(app.AddNotificationMsg); !ok {
		t.Error("expected a notification without services")
	}
}

func TestModel_Progress(t *testing.T) {
	m, state := newTestModel(t)
	state.BeginRun("Pendidikan", models.RunSummary, models.ModeTurbo, nil)

	m.Update(app.RunStartedMsg{Project: "Pendidikan", Kind: models.RunSummary, Total: 4})
	m.Update(app.RunProgressMsg{Kind: models.RunSummary, Completion: pipeline.Completion{
		Outcome: models.FetchOutcome{Kind: models.OutcomeConnectionError}, Done: 1, Total: 4,
	}})
	m.Update(app.RunProgressMsg{Kind: models.RunExport, Completion: pipeline.Completion{Done: 3, Total: 4}})

	if m.bar.Done() != 1 || m.counts.Failed != 1 {
		t.Errorf("bar=%d counts=%+v", m.bar.Done(), m.counts)
	}
	if view := m.View(); !strings.Contains(view, "1/4 (25%)") {
		t.Errorf("view should show progress, got %q", view)
	}
}

func TestModel_Report(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(finished())

	view := m.View()
	for _, want := range []string{"12 / 14", "78.00 GB", "Top 10", "Site A", "2s"} {
		if !strings.Contains(view, want) {
			t.Errorf("report view missing %q", want)
		}
	}
	if strings.Contains(view, "Site L") {
		t.Error("chart shows only the top 10")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if !m.showTable {
		t.Fatal("c should switch to the table")
	}
	if len(m.table.Rows()) != 12 {
		t.Errorf("table rows = %d, want 12", len(m.table.Rows()))
	}
	if !strings.Contains(m.View(), "All locations") {
		t.Error("table view should be shown")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.table.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", m.table.Cursor())
	}
}

func TestModel_Failure(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(app.SummaryFinishedMsg{Err: pipeline.ErrEmptyRoster})
	if !strings.Contains(m.View(), "Summary failed") {
		t.Error("failure should be shown")
	}

	m.Update(app.ProjectChangedMsg{Project: "Other"})
	if m.err != nil || m.result != nil {
		t.Error("project change should reset the tab")
	}
}

func TestModel_Help(t *testing.T) {
	m, _ := newTestModel(t)
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help bindings missing")
	}
}
