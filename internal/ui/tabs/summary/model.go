// Package summary provides the usage ranking tab.
package summary

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/venue-usage-tui/internal/app"
	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/services"
	"github.com/j-veylop/venue-usage-tui/internal/ui/components"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

type keyMap struct {
	Start  key.Binding
	Chart  key.Binding
	Cancel key.Binding
	Up     key.Binding
	Down   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "rank locations"),
		),
		Chart: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "chart/table"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel run"),
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

// topN is how many locations the bar chart shows.
const topN = 10

// Model represents the summary tab state.
type Model struct {
	state     *app.State
	commands  *app.Commands
	result    *services.SummaryResult
	err       error
	keys      keyMap
	table     table.Model
	bar       components.RunBar
	counts    models.OutcomeCounts
	width     int
	height    int
	running   bool
	showTable bool
}

// New creates a new summary model.
func New(state *app.State, commands *app.Commands) *Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = styles.TableHeaderStyle
	ts.Selected = styles.TableSelectedStyle
	t.SetStyles(ts)

	bar := components.NewRunBar(40)
	bar.SetLabel(app.RunLabel(models.RunSummary))

	return &Model{
		state:    state,
		commands: commands,
		keys:     defaultKeyMap(),
		table:    t,
		bar:      bar,
	}
}

func columns(width int) []table.Column {
	nameWidth := max(width-4-14-12-12-10, 16)
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Location ID", Width: 14},
		{Title: "Name", Width: nameWidth},
		{Title: "Total (GB)", Width: 12},
		{Title: "Avg (GB)", Width: 12},
	}
}

// Init initializes the summary tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the summary tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.RunStartedMsg:
		if run, ok := m.state.ActiveRun(); ok && msg.Kind == models.RunSummary && run.Kind == models.RunSummary {
			m.clear()
			m.running = true
			m.bar.Reset(msg.Total)
		}

	case app.RunProgressMsg:
		if msg.Kind != models.RunSummary || !m.running {
			return m, nil
		}
		m.bar.Set(msg.Completion.Done, msg.Completion.Total)
		m.counts.Add(msg.Completion.Outcome.Kind)

	case app.SummaryFinishedMsg:
		m.running = false
		m.err = msg.Err
		m.result = msg.Result
		if msg.Result == nil {
			return m, nil
		}
		if run := msg.Result.Run; run != nil {
			m.counts = run.Counts
			m.bar.Set(run.Counts.Total(), run.Total)
		}
		m.setRows(msg.Result.Report.Rows)

	case app.ProjectChangedMsg:
		if !m.running {
			m.clear()
		}

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Start):
		if m.running {
			return nil
		}
		return m.commands.StartSummary()

	case key.Matches(msg, m.keys.Chart):
		m.showTable = !m.showTable
		return nil
	}

	if !m.showTable {
		return nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

func (m *Model) clear() {
	m.result = nil
	m.err = nil
	m.counts = models.OutcomeCounts{}
	m.bar.Reset(0)
	m.setRows(nil)
}

func (m *Model) setRows(rows []models.SummaryRow) {
	out := make([]table.Row, 0, len(rows))
	for i, row := range rows {
		out = append(out, table.Row{
			fmt.Sprintf("%d", i+1),
			row.LocationID,
			row.DisplayName,
			fmt.Sprintf("%.2f", row.TotalUsageGB),
			fmt.Sprintf("%.2f", row.AvgUsageGB),
		})
	}
	m.table.SetRows(out)
	m.table.GotoTop()
}

// SetSize sets the available size for the summary tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.bar.SetWidth(width - 40)
	m.table.SetColumns(columns(max(width-6, 60)))
	m.table.SetWidth(max(width-6, 60))
	m.table.SetHeight(max(height-14, 5))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Start, m.keys.Chart, m.keys.Cancel}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Start, m.keys.Chart, m.keys.Cancel},
		{m.keys.Up, m.keys.Down},
	}
}
