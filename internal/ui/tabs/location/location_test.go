package location

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/venue-usage-tui/internal/app"
	"github.com/j-veylop/venue-usage-tui/internal/config"
	"github.com/j-veylop/venue-usage-tui/internal/models"
)

func newTestModel(t *testing.T) (*Model, *app.State) {
	t.Helper()
	state := app.NewState()
	state.SetProjects([]config.Project{{Name: "Pendidikan", OrgID: "13231"}})
	state.SetRoster(&models.Roster{Project: "Pendidikan", Locations: []models.Location{
		{ID: "L1", DisplayName: "SMA Satu"},
		{ID: "L2", DisplayName: "SMP Dua"},
		{ID: "L3", DisplayName: "SD Tiga"},
	}})
	m := New(state, app.NewCommands(nil, state))
	m.SetSize(100, 40)
	return m, state
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew(t *testing.T) {
	m, _ := newTestModel(t)
	if len(m.visible) != 3 {
		t.Fatalf("visible = %d, want 3", len(m.visible))
	}
	loc, ok := m.Selected()
	if !ok || loc.ID != "L1" {
		t.Errorf("Selected = %v, %v", loc, ok)
	}
	if m.Init() != nil {
		t.Error("Init has nothing to start")
	}
}

func TestModel_Navigation(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if loc, _ := m.Selected(); loc.ID != "L2" {
		t.Errorf("after down Selected = %s, want L2", loc.ID)
	}
}

func TestModel_Filter(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(keyRunes("/"))
	if !m.CapturingInput() {
		t.Fatal("filter should capture input")
	}

	m.Update(keyRunes("smp"))
	if len(m.visible) != 1 || m.visible[0].ID != "L2" {
		t.Errorf("filtered = %v", m.visible)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.CapturingInput() {
		t.Error("enter should leave the filter")
	}
	if len(m.visible) != 1 {
		t.Error("enter keeps the filter applied")
	}
	if !strings.Contains(m.View(), "smp") {
		t.Error("applied filter should stay visible")
	}

	m.Update(keyRunes("/"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.visible) != 3 {
		t.Error("esc should clear the filter")
	}
}

func TestModel_Check(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should start a check")
	}
	if !m.checking {
		t.Error("model should be checking")
	}
	if !strings.Contains(m.View(), "Fetching SMA Satu (L1)") {
		t.Error("view should show the spinner label")
	}

	// A second enter while checking is ignored.
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("no second check while one is in flight")
	}

	m.Update(app.CheckResultMsg{
		Project:  "Pendidikan",
		Location: models.Location{ID: "L1", DisplayName: "SMA Satu"},
		Err:      errors.New("no session stored for project"),
	})
	if m.checking {
		t.Error("result should end the check")
	}
	if !strings.Contains(m.View(), "no session stored") {
		t.Error("view should show the error")
	}
}

func TestModel_ResultViews(t *testing.T) {
	m, _ := newTestModel(t)
	loc := models.Location{ID: "L1", DisplayName: "SMA Satu"}
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m.Update(app.CheckResultMsg{Project: "Pendidikan", Location: loc, Outcome: models.FetchOutcome{
		Kind: models.OutcomeSuccess,
		Series: models.UsageSeries{
			{Date: day, UsageBytes: 2 << 30, ConnectedUsers: 5},
			{Date: day.AddDate(0, 0, 1), UsageBytes: 1 << 30, ConnectedUsers: 8},
		},
	}})
	view := m.View()
	for _, want := range []string{"Total usage", "3.00 GB", "1.50 GB", "Peak users", "SMA Satu (L1) |"} {
		if !strings.Contains(view, want) {
			t.Errorf("success view missing %q", want)
		}
	}

	m.Update(app.CheckResultMsg{Project: "Pendidikan", Location: loc, Outcome: models.FetchOutcome{
		Kind:   models.OutcomeEmpty,
		Reason: "No Data Available",
	}})
	view = m.View()
	if !strings.Contains(view, "EMPTY") || !strings.Contains(view, "No Data Available") {
		t.Error("empty outcome should show its reason")
	}

	// Results for another project are ignored.
	m.Update(app.CheckResultMsg{Project: "Other", Location: loc, Err: errors.New("stale")})
	if strings.Contains(m.View(), "stale") {
		t.Error("stale result should be ignored")
	}
}

func TestModel_ProjectChange(t *testing.T) {
	m, state := newTestModel(t)
	state.SetProjects([]config.Project{{Name: "Pendidikan", OrgID: "1"}, {Name: "Lainnya", OrgID: "2"}})

	m.result = &app.CheckResultMsg{Project: "Pendidikan"}
	state.CycleProject()
	m.Update(app.ProjectChangedMsg{Project: "Lainnya"})

	if m.result != nil {
		t.Error("project change should clear the result")
	}
	if len(m.visible) != 0 {
		t.Error("uncached roster shows no rows")
	}
	if !strings.Contains(m.View(), "No roster imported") {
		t.Error("view should explain the empty roster")
	}

	state.SetRoster(&models.Roster{Project: "Lainnya", Locations: []models.Location{{ID: "X", DisplayName: "Xenon"}}})
	m.Update(app.RosterLoadedMsg{Project: "Lainnya"})
	if len(m.visible) != 1 {
		t.Error("roster load should refresh rows")
	}
}

func TestModel_Help(t *testing.T) {
	m, _ := newTestModel(t)
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help bindings missing")
	}
}
