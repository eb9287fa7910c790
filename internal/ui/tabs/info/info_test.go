package info

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

func newTestModel(t *testing.T, cfg *config.Config) (*Model, *app.State) {
	t.Helper()
	state := app.NewState()
	state.SetProjects([]config.Project{
		{Name: "Pendidikan", OrgID: "13231"},
		{Name: "Kesehatan", OrgID: "20417"},
	})
	m := New(state, app.NewCommands(nil, state), cfg)
	m.SetSize(120, 80)
	return m, state
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Init(t *testing.T) {
	m, _ := newTestModel(t, nil)

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init should load projects")
	}
	msg, ok := cmd().(app.ProjectsLoadedMsg)
	if !ok || msg.Err == nil {
		t.Errorf("Init message = %#v", msg)
	}

	m.Update(msg)
	if view := m.View(); !strings.Contains(view, "Roster store:") {
		t.Error("load error should be shown")
	}
}

func TestModel_ViewProjects(t *testing.T) {
	m, state := newTestModel(t, nil)

	m.Update(app.ProjectsLoadedMsg{Projects: []models.ProjectSummary{{Name: "Pendidikan", LocationCount: 42}}})
	state.SetSessions([]models.Session{{
		Project:    "Kesehatan",
		Credential: "abcdef123456",
		Source:     models.SourceBrowser,
		UpdatedAt:  time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local),
	}})

	view := m.View()
	for _, want := range []string{"Pendidikan", "org 13231", "42 locations", "no session", "Kesehatan", "no roster", "abcd", "browser", "Configuration not loaded"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
	if strings.Contains(view, "abcdef123456") {
		t.Error("credential should be masked")
	}

	m.Update(app.RosterLoadedMsg{Project: "Kesehatan", Roster: &models.Roster{
		Project:   "Kesehatan",
		Locations: []models.Location{{ID: "K1", DisplayName: "Puskesmas"}},
	}})
	if view := m.View(); !strings.Contains(view, "1 locations") {
		t.Error("roster size should follow RosterLoadedMsg")
	}
}

func TestModel_ViewConfig(t *testing.T) {
	m, _ := newTestModel(t, &config.Config{
		DatabasePath:   "/tmp/locations.db",
		ExportDir:      "/tmp/out",
		SafeWorkers:    3,
		TurboWorkers:   8,
		SummaryWorkers: 10,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		FetchTimeout:   time.Minute,
	})

	view := m.View()
	for _, want := range []string{"/tmp/locations.db", "/tmp/out", "safe 3 · turbo 8 · summary 10", "3 attempts", "venue-usage-tui"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
	if strings.Contains(view, "Rate limit") {
		t.Error("rate limit row should be hidden when unlimited")
	}
}

func TestModel_ImportSession(t *testing.T) {
	m, _ := newTestModel(t, nil)

	_, cmd := m.Update(keyRunes("b"))
	if cmd == nil {
		t.Fatal("b should start an import")
	}
	if !m.importing {
		t.Error("importing flag should be set")
	}
	if _, again := m.Update(keyRunes("b")); again != nil {
		t.Error("a second import should be ignored while one is running")
	}
	if view := m.View(); !strings.Contains(view, "Reading browser cookies") {
		t.Error("view should show the import in progress")
	}

	m.Update(app.SessionImportedMsg{Project: "Pendidikan", Err: errors.New("no cookie")})
	if m.importing {
		t.Error("importing flag should clear")
	}
}

func TestModel_Refresh(t *testing.T) {
	m, _ := newTestModel(t, nil)

	_, cmd := m.Update(keyRunes("r"))
	if cmd == nil {
		t.Fatal("r should reload projects")
	}
	if _, ok := cmd().(app.ProjectsLoadedMsg); !ok {
		t.Error("refresh should emit ProjectsLoadedMsg")
	}
}

func TestModel_Help(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if len(m.ShortHelp()) != 2 {
		t.Errorf("ShortHelp = %d bindings", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) != 2 {
		t.Errorf("FullHelp = %d groups", len(m.FullHelp()))
	}
}
