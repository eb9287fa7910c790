// Package info provides the configuration and session status tab.
package info

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/venue-usage-tui/internal/app"
	"github.com/j-veylop/venue-usage-tui/internal/config"
)

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Import  key.Binding
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Import: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "import browser session"),
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
	}
}

// Model represents the info tab state.
type Model struct {
	err       error
	state     *app.State
	commands  *app.Commands
	config    *config.Config
	locations map[string]int
	keys      keyMap
	viewport  viewport.Model
	width     int
	height    int
	importing bool
}

// New creates a new info model. cfg may be nil.
func New(state *app.State, commands *app.Commands, cfg *config.Config) *Model {
	return &Model{
		state:     state,
		commands:  commands,
		config:    cfg,
		locations: make(map[string]int),
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
	}
}

// Init loads the stored roster sizes.
func (m *Model) Init() tea.Cmd {
	return m.commands.LoadProjects()
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.ProjectsLoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			clear(m.locations)
			for _, p := range msg.Projects {
				m.locations[p.Name] = p.LocationCount
			}
		}

	case app.RosterLoadedMsg:
		if msg.Err == nil && msg.Roster != nil {
			m.locations[msg.Project] = msg.Roster.Len()
		}

	case app.SessionImportedMsg:
		m.importing = false

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Import):
		if m.importing {
			return nil
		}
		project := m.state.ProjectName()
		if project == "" {
			return m.commands.NotifyWarning("No project configured")
		}
		m.importing = true
		return tea.Batch(
			m.commands.NotifyInfo("Reading browser cookies for "+project+"..."),
			m.commands.ImportBrowserSession(project),
		)

	case key.Matches(msg, m.keys.Refresh):
		return m.commands.LoadProjects()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Import, m.keys.Refresh}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Import, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
