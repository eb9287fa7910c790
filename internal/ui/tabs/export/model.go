// Package export provides the chart bundle export tab.
package export

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/venue-usage-tui/internal/app"
	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/services"
	"github.com/j-veylop/venue-usage-tui/internal/ui/components"
)

type keyMap struct {
	Start  key.Binding
	Cancel key.Binding
	Up     key.Binding
	Down   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "export charts"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel run"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll log"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll log"),
		),
	}
}

// Model represents the export tab state.
type Model struct {
	startedAt time.Time
	state     *app.State
	commands  *app.Commands
	result    *services.ExportResult
	err       error
	keys      keyMap
	log       components.RunLog
	bar       components.RunBar
	counts    models.OutcomeCounts
	width     int
	height    int
	running   bool
}

// New creates a new export model.
func New(state *app.State, commands *app.Commands) *Model {
	bar := components.NewRunBar(40)
	bar.SetLabel(app.RunLabel(models.RunExport))
	return &Model{
		state:    state,
		commands: commands,
		keys:     defaultKeyMap(),
		log:      components.NewRunLog(60, 8),
		bar:      bar,
	}
}

// Init initializes the export tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the export tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.RunStartedMsg:
		// A run that failed fast has already ended by the time this arrives.
		if run, ok := m.state.ActiveRun(); ok && msg.Kind == models.RunExport && run.Kind == models.RunExport {
			m.begin(msg.Total)
		}

	case app.RunProgressMsg:
		if msg.Kind != models.RunExport || !m.running {
			return m, nil
		}
		c := msg.Completion
		m.bar.Set(c.Done, c.Total)
		m.counts.Add(c.Outcome.Kind)
		m.log.Append(c.Done, c.Total, c.Location, c.Outcome)

	case app.ExportFinishedMsg:
		m.running = false
		m.result = msg.Result
		m.err = msg.Err
		if msg.Result != nil && msg.Result.Run != nil {
			m.counts = msg.Result.Run.Counts
			m.bar.Set(msg.Result.Run.Counts.Total(), msg.Result.Run.Total)
		}

	case app.ProjectChangedMsg:
		if !m.running {
			m.clear()
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Start) {
			if m.running {
				return m, nil
			}
			return m, m.commands.StartExport()
		}
		return m, m.log.Update(msg)
	}

	return m, nil
}

func (m *Model) begin(total int) {
	m.clear()
	m.running = true
	m.startedAt = time.Now()
	m.bar.Reset(total)
}

func (m *Model) clear() {
	m.result = nil
	m.err = nil
	m.counts = models.OutcomeCounts{}
	m.log.Reset()
	m.bar.Reset(0)
}

// SetSize sets the available size for the export tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.bar.SetWidth(width - 40)
	m.log.SetSize(width-6, max(height-16, 3))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Start, m.keys.Cancel}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Start, m.keys.Cancel},
		{m.keys.Up, m.keys.Down},
	}
}
