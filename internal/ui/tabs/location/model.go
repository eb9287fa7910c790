// Package location provides the single-location check tab.
package location

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/venue-usage-tui/internal/app"
	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/ui/components"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the location tab.
type keyMap struct {
	Check  key.Binding
	Filter key.Binding
	Reload key.Binding
	Up     key.Binding
	Down   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Check: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "check location"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload roster"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

const tableHeight = 8

// Model represents the location tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	result   *app.CheckResultMsg
	spinner  components.LoadingSpinner
	filter   textinput.Model
	table    table.Model
	keys     keyMap
	visible  []models.Location
	width    int
	height   int
	checking bool
}

// New creates a new location model.
func New(state *app.State, commands *app.Commands) *Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "name or ID"
	ti.CharLimit = 64

	t := table.New(
		table.WithColumns(columns(60)),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)
	ts := table.DefaultStyles()
	ts.Header = styles.TableHeaderStyle
	ts.Selected = styles.TableSelectedStyle
	t.SetStyles(ts)

	m := &Model{
		state:    state,
		commands: commands,
		spinner:  components.NewSpinner("Fetching usage..."),
		filter:   ti,
		table:    t,
		keys:     defaultKeyMap(),
	}
	m.refreshRows()
	return m
}

func columns(width int) []table.Column {
	idWidth := 14
	nameWidth := max(width-idWidth-6, 20)
	return []table.Column{
		{Title: "Location ID", Width: idWidth},
		{Title: "Name", Width: nameWidth},
	}
}

// Init initializes the location tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether the filter box has focus.
func (m *Model) CapturingInput() bool {
	return m.filter.Focused()
}

// Update handles messages for the location tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.RosterLoadedMsg:
		if msg.Project == m.state.ProjectName() {
			m.refreshRows()
		}

	case app.ProjectChangedMsg:
		m.result = nil
		m.checking = false
		m.refreshRows()

	case app.CheckResultMsg:
		if msg.Project != m.state.ProjectName() {
			return m, nil
		}
		m.checking = false
		m.result = &msg

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	default:
		if m.checking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.filter.Focused() {
		switch msg.Type {
		case tea.KeyEsc:
			m.filter.Blur()
			m.filter.SetValue("")
			m.refreshRows()
			return nil
		case tea.KeyEnter:
			m.filter.Blur()
			return nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.refreshRows()
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		return m.filter.Focus()

	case key.Matches(msg, m.keys.Check):
		loc, ok := m.Selected()
		if !ok || m.checking {
			return nil
		}
		m.checking = true
		m.result = nil
		m.spinner.SetLabel("Fetching " + loc.String() + "...")
		return tea.Batch(m.spinner.Tick(), m.commands.Check(loc))

	case key.Matches(msg, m.keys.Reload):
		if project := m.state.ProjectName(); project != "" {
			return m.commands.LoadRoster(project)
		}
		return nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// refreshRows rebuilds the table from the cached roster and the filter.
func (m *Model) refreshRows() {
	m.visible = m.visible[:0]
	if r, ok := m.state.Roster(m.state.ProjectName()); ok {
		query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
		for _, loc := range r.Locations {
			if query == "" ||
				strings.Contains(strings.ToLower(loc.ID), query) ||
				strings.Contains(strings.ToLower(loc.DisplayName), query) {
				m.visible = append(m.visible, loc)
			}
		}
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, loc := range m.visible {
		rows = append(rows, table.Row{loc.ID, loc.DisplayName})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Selected returns the highlighted location.
func (m *Model) Selected() (models.Location, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return models.Location{}, false
	}
	return m.visible[i], true
}

// SetSize sets the available size for the location tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(max(width-6, 40)))
	m.table.SetWidth(max(width-6, 40))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Check, m.keys.Filter, m.keys.Reload}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Check, m.keys.Filter, m.keys.Reload},
	}
}
