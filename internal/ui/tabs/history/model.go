// Package history provides the tab listing recorded export and summary runs.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/venue-usage-tui/internal/app"
	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/services"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	Detail     key.Binding
	Refresh    key.Binding
	Up         key.Binding
	Down       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show run"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll detail"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll detail"),
		),
	}
}

const (
	runLimit      = 25
	listHeight    = 8
	startedLayout = "02/01 15:04"
)

// Model represents the history tab state.
type Model struct {
	lastRefresh time.Time
	state       *app.State
	commands    *app.Commands
	detail      *models.Run
	keys        keyMap
	table       table.Model
	viewport    viewport.Model
	errorMsg    string
	runs        []models.Run
	width       int
	height      int
	loading     bool
}

// New creates a new history model.
func New(state *app.State, commands *app.Commands) *Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(listHeight),
	)
	ts := table.DefaultStyles()
	ts.Header = styles.TableHeaderStyle
	ts.Selected = styles.TableSelectedStyle
	t.SetStyles(ts)

	return &Model{
		state:    state,
		commands: commands,
		keys:     defaultKeyMap(),
		table:    t,
		viewport: viewport.New(0, 0),
	}
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Started", Width: 12},
		{Title: "Kind", Width: 8},
		{Title: "Mode", Width: 6},
		{Title: "Range", Width: 23},
		{Title: "OK", Width: 5},
		{Title: "Empty", Width: 5},
		{Title: "Failed", Width: 6},
		{Title: "Took", Width: 8},
		{Title: "", Width: 9},
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return m.reload()
}

func (m *Model) reload() tea.Cmd {
	project := m.state.ProjectName()
	if project == "" {
		return nil
	}
	m.loading = true
	return m.commands.LoadRuns(project, runLimit)
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.RunsLoadedMsg:
		if msg.Project != m.state.ProjectName() {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.lastRefresh = time.Now()
		m.setRuns(msg.Runs)

	case app.RunDetailMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		run := msg.Run
		m.detail = &run
		m.viewport.SetContent(m.renderDetail())
		m.viewport.GotoTop()

	case app.ProjectChangedMsg:
		m.detail = nil
		m.setRuns(nil)
		return m, m.reload()

	case app.ExportFinishedMsg, app.SummaryFinishedMsg:
		return m, m.reload()

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m.reload()

	case key.Matches(msg, m.keys.Detail):
		run, ok := m.Selected()
		if !ok {
			return nil
		}
		return m.commands.LoadRunDetail(run)

	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

func (m *Model) setRuns(runs []models.Run) {
	m.runs = runs
	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		status := ""
		switch {
		case run.Cancelled:
			status = "cancelled"
		case run.FinishedAt.IsZero():
			status = "running"
		}
		rows = append(rows, table.Row{
			run.StartedAt.Local().Format(startedLayout),
			string(run.Kind),
			run.Mode,
			run.Range.String(),
			fmt.Sprintf("%d", run.Counts.Success),
			fmt.Sprintf("%d", run.Counts.Empty),
			fmt.Sprintf("%d", run.Counts.Failed),
			services.Elapsed(run.Duration()),
			status,
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Selected returns the highlighted run.
func (m *Model) Selected() (models.Run, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.runs) {
		return models.Run{}, false
	}
	return m.runs[i], true
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(max(width-6, 40))
	m.viewport.Width = max(width-6, 40)
	m.viewport.Height = max(height-listHeight-8, 3)
	if m.detail != nil {
		m.viewport.SetContent(m.renderDetail())
	}
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Detail, m.keys.Refresh}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Detail, m.keys.Refresh},
		{m.keys.Up, m.keys.Down, m.keys.ScrollUp, m.keys.ScrollDown},
	}
}
