// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/services"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabLocation is the single-location check tab.
	TabLocation TabID = iota
	// TabExport is the chart bundle export tab.
	TabExport
	// TabSummary is the usage ranking tab.
	TabSummary
	// TabHistory lists recorded runs.
	TabHistory
	// TabInfo shows configuration and session status.
	TabInfo
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabLocation:
		return "Location"
	case TabExport:
		return "Export"
	case TabSummary:
		return "Summary"
	case TabHistory:
		return "History"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs that take free text input. While
// CapturingInput reports true, only ctrl+c is handled globally.
type InputCapturer interface {
	CapturingInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	Tab4      key.Binding
	Tab5      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Project   key.Binding
	Mode      key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Help      key.Binding
	Quit      key.Binding
	Escape    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "location"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "export"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "summary"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "history"))
	k.Tab5 = key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab/→", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab/←", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Project = key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next project"))
	k.Mode = key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "safe/turbo"))
	k.PrevMonth = key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous month"))
	k.NextMonth = key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel run"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Project, k.Mode, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5},
		{k.NextTab, k.PrevTab},
		{k.Project, k.Mode, k.PrevMonth, k.NextMonth},
		{k.Escape, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Status      lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content lipgloss.Style
	Help    lipgloss.Style
	Toast   lipgloss.Style

	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)
	s.Status = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)
	s.Error = lipgloss.NewStyle().Foreground(errorColor)
	s.Success = lipgloss.NewStyle().Foreground(success)
	s.Warning = lipgloss.NewStyle().Foreground(warning)

	return s
}

// Model is the main application model.
type Model struct {
	state    *State
	services *services.Manager
	commands *Commands

	eventChannel chan services.ServiceEvent

	tabs     []Tab
	tabNames []string

	styles  Styles
	keymap  KeyMap
	spinner spinner.Model

	activeTab TabID
	width     int
	height    int
	showHelp  bool
	ready     bool
}

// NewModel initializes a new application model. mgr may be nil.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	state := NewState()
	if mgr != nil {
		state.SetProjects(mgr.Config().Projects)
	}

	return &Model{
		activeTab: TabLocation,
		tabNames:  []string{TabLocation.String(), TabExport.String(), TabSummary.String(), TabHistory.String(), TabInfo.String()},
		tabs:      make([]Tab, 5),
		state:     state,
		services:  mgr,
		commands:  NewCommands(mgr, state),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
		cmds = append(cmds, m.commands.LoadInitialData())
	} else {
		m.state.SetLoading("initial", false)
		m.state.ClearLoadingNotification()
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model. Key presses go to the active
// tab only; every other message reaches all tabs so background runs keep
// their views current.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)

	case tea.KeyMsg:
		cmd, handled := m.handleKeyMsg(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if !handled {
			if cmd := m.updateActiveTab(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	cmds = append(cmds, m.updateAllTabs(msg)...)
	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case SessionsLoadedMsg:
		m.state.SetSessions(msg.Sessions)
		m.finishInitialLoad()
	case RosterLoadedMsg:
		cmds = append(cmds, m.handleRosterLoaded(msg))
	case CheckResultMsg:
		m.state.SetLoading("check", false)
	case ExportFinishedMsg:
		cmds = append(cmds, m.handleExportFinished(msg))
	case SummaryFinishedMsg:
		cmds = append(cmds, m.handleSummaryFinished(msg))
	case SessionImportedMsg:
		cmds = append(cmds, m.handleSessionImported(msg))
	case CancelRunMsg:
		cmds = append(cmds, m.cancelRun())
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
		m.state.SetLoadingNotification("Loading...")
	case StopLoadingMsg:
		m.state.SetLoading(msg.Resource, false)
		if !m.state.AnyLoading() {
			m.state.ClearLoadingNotification()
		}
	case ErrorMsg:
		text := msg.Error.Error()
		if msg.Context != "" {
			text = msg.Context + ": " + text
		}
		cmds = append(cmds, notifyErrorCmd(text))
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) finishInitialLoad() {
	m.state.SetLoading("initial", false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleRosterLoaded(msg RosterLoadedMsg) tea.Cmd {
	m.state.SetLoading("roster", false)
	m.finishInitialLoad()
	if msg.Err != nil {
		return notifyErrorCmd(fmt.Sprintf("Failed to load roster for %s: %v", msg.Project, msg.Err))
	}
	m.state.SetRoster(msg.Roster)
	return nil
}

func (m *Model) handleExportFinished(msg ExportFinishedMsg) tea.Cmd {
	m.state.EndRun()
	if msg.Err != nil {
		return notifyErrorCmd(fmt.Sprintf("Export failed: %v", msg.Err))
	}
	run := msg.Result.Run
	text := fmt.Sprintf("Saved %s (%d ok, %d empty, %d failed)",
		msg.Result.Path, run.Counts.Success, run.Counts.Empty, run.Counts.Failed)
	if run.Cancelled {
		return notifyWarningCmd("Cancelled. " + text)
	}
	return notifySuccessCmd(text)
}

func (m *Model) handleSummaryFinished(msg SummaryFinishedMsg) tea.Cmd {
	m.state.EndRun()
	if msg.Err != nil {
		return notifyErrorCmd(fmt.Sprintf("Summary failed: %v", msg.Err))
	}
	report := msg.Result.Report
	text := fmt.Sprintf("%d of %d locations active", report.Active, report.Total)
	if msg.Result.Run.Cancelled {
		return notifyWarningCmd("Cancelled. " + text)
	}
	return notifySuccessCmd(text)
}

func (m *Model) handleSessionImported(msg SessionImportedMsg) tea.Cmd {
	if msg.Err != nil {
		return notifyErrorCmd(fmt.Sprintf("Browser import for %s failed: %v", msg.Project, msg.Err))
	}
	// The sessions watcher broadcasts the change too; reloading here keeps
	// the view current when the watcher is unavailable.
	cmds := []tea.Cmd{notifySuccessCmd(fmt.Sprintf("Session %s stored for %s", msg.Session.Masked(), msg.Project))}
	if m.services != nil {
		cmds = append(cmds, loadSessionsCmd(m.services))
	}
	return tea.Batch(cmds...)
}

func (m *Model) cancelRun() tea.Cmd {
	run, ok := m.state.ActiveRun()
	if !ok || !m.state.CancelRun() {
		return nil
	}
	return notifyInfoCmd(fmt.Sprintf("Cancelling %s for %s...", run.Kind, run.Project))
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateAllTabs(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-5)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

// handleKeyMsg handles global keys. handled is false when the key belongs to
// the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	if m.activeTabCapturing() {
		if msg.Type == tea.KeyCtrlC {
			m.state.CancelRun()
			return tea.Quit, true
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.state.CancelRun()
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}
		if m.state.Running() {
			return m.cancelRun(), true
		}
		return nil, false

	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabLocation)
		return nil, true

	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabExport)
		return nil, true

	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabSummary)
		return nil, true

	case key.Matches(msg, m.keymap.Tab4):
		m.switchTab(TabHistory)
		return nil, true

	case key.Matches(msg, m.keymap.Tab5):
		m.switchTab(TabInfo)
		return nil, true

	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp {
			m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))
		}
		return nil, true

	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp {
			m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))
		}
		return nil, true

	case key.Matches(msg, m.keymap.Project):
		return m.cycleProject(), true

	case key.Matches(msg, m.keymap.Mode):
		if m.state.Running() {
			return notifyWarningCmd("Mode is fixed while a run is in progress"), true
		}
		mode := m.state.ToggleMode()
		return func() tea.Msg { return ModeChangedMsg{Mode: mode} }, true

	case key.Matches(msg, m.keymap.PrevMonth):
		return m.shiftMonth(-1), true

	case key.Matches(msg, m.keymap.NextMonth):
		return m.shiftMonth(1), true
	}

	return nil, false
}

func (m *Model) activeTabCapturing() bool {
	if int(m.activeTab) >= len(m.tabs) {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.CapturingInput()
}

func (m *Model) switchTab(id TabID) {
	m.activeTab = id
	m.updateTabSizes()
}

func (m *Model) cycleProject() tea.Cmd {
	if m.state.Running() {
		return notifyWarningCmd("Project is fixed while a run is in progress")
	}
	project := m.state.CycleProject()
	if project == "" {
		return notifyWarningCmd("No projects configured")
	}
	changed := func() tea.Msg { return ProjectChangedMsg{Project: project} }
	if _, cached := m.state.Roster(project); cached {
		return changed
	}
	return tea.Batch(changed, m.commands.LoadRoster(project))
}

func (m *Model) shiftMonth(delta int) tea.Cmd {
	if m.state.Running() {
		return notifyWarningCmd("Date range is fixed while a run is in progress")
	}
	dr := m.state.ShiftMonth(delta, time.Now())
	return notifyInfoCmd("Range " + dr.String())
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.SessionsChangedEvent:
		m.state.SetSessions(e.Sessions)
		return func() tea.Msg { return SessionsLoadedMsg{Sessions: e.Sessions} }

	case services.RunProgressEvent:
		return func() tea.Msg {
			return RunProgressMsg{
				RunID:      e.RunID,
				Project:    e.Project,
				Kind:       e.Kind,
				Completion: e.Completion,
			}
		}

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	y := max((m.height-len(overlayLines))/2, 0)
	overlayWidth := lipgloss.Width(overlay)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

// StatusLine renders the selected project, mode and range.
func (m *Model) StatusLine() string {
	project := m.state.ProjectName()
	if project == "" {
		project = "no project"
	}
	mode := m.state.Mode().String()
	if run, ok := m.state.ActiveRun(); ok {
		mode = fmt.Sprintf("%s, %s running", mode, run.Kind)
	}
	return fmt.Sprintf("%s | %s | %s", project, mode, m.state.Range())
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	status := m.styles.Status.Render(m.StatusLine())
	gap := m.width - lipgloss.Width(tabBar) - lipgloss.Width(status) - 2
	if gap > 0 {
		tabBar = tabBar + strings.Repeat(" ", gap) + status
	}

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-mainLineWidth) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-3        Switch tabs")
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Run settings"))
	lines = append(lines, "  p          Next project")
	lines = append(lines, "  m          Toggle safe/turbo")
	lines = append(lines, "  [ / ]      Previous/next month")
	lines = append(lines, "  Esc        Cancel running job")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("General"))
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not available."),
	)
	return m.styles.Content.Render(content)
}

// RunLabel describes a run kind for tab headers.
func RunLabel(kind models.RunKind) string {
	switch kind {
	case models.RunExport:
		return "Chart export"
	case models.RunSummary:
		return "Usage summary"
	default:
		return string(kind)
	}
}
