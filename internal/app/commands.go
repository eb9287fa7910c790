package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

var errNoServices = errors.New("services not initialized")

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

func loadSessionsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return SessionsLoadedMsg{Sessions: mgr.Sessions().List()}
	}
}

func loadRosterCmd(mgr *services.Manager, project string) tea.Cmd {
	return func() tea.Msg {
		r, err := mgr.Roster(context.Background(), project)
		return RosterLoadedMsg{Project: project, Roster: r, Err: err}
	}
}

func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands builds the commands tabs use to reach the services.
type Commands struct {
	ctx     context.Context
	manager *services.Manager
	state   *State
}

// NewCommands creates a new Commands instance. mgr may be nil in tests; every
// service command then reports an error instead of running.
func NewCommands(mgr *services.Manager, state *State) *Commands {
	return &Commands{ctx: context.Background(), manager: mgr, state: state}
}

// LoadInitialData loads credentials and the selected project's roster.
func (c *Commands) LoadInitialData() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	cmds := []tea.Cmd{loadSessionsCmd(c.manager)}
	if project := c.state.ProjectName(); project != "" {
		cmds = append(cmds, c.LoadRoster(project))
	}
	return tea.Batch(cmds...)
}

// LoadRoster loads a project's roster from the store.
func (c *Commands) LoadRoster(project string) tea.Cmd {
	if c.manager == nil {
		return func() tea.Msg {
			return RosterLoadedMsg{Project: project, Err: errNoServices}
		}
	}
	c.state.SetLoading("roster", true)
	return loadRosterCmd(c.manager, project)
}

// Check fetches one location of the selected project over the selected range.
func (c *Commands) Check(loc models.Location) tea.Cmd {
	project := c.state.ProjectName()
	dr := c.state.Range()
	if c.manager == nil {
		return func() tea.Msg {
			return CheckResultMsg{Project: project, Location: loc, Err: errNoServices}
		}
	}

	c.state.SetLoading("check", true)
	mgr := c.manager
	ctx := c.ctx
	return func() tea.Msg {
		got, outcome, err := mgr.Check(ctx, project, loc.ID, dr)
		if got.ID == "" {
			got = loc
		}
		return CheckResultMsg{Project: project, Location: got, Outcome: outcome, Err: err}
	}
}

// LoadRuns fetches the recent run log of project.
func (c *Commands) LoadRuns(project string, limit int) tea.Cmd {
	mgr := c.manager
	ctx := c.ctx
	return func() tea.Msg {
		if mgr == nil {
			return RunsLoadedMsg{Project: project, Err: errNoServices}
		}
		runs, err := mgr.RecentRuns(ctx, project, limit)
		return RunsLoadedMsg{Project: project, Runs: runs, Err: err}
	}
}

// LoadRunDetail fetches the error log and ranking of a recorded run.
func (c *Commands) LoadRunDetail(run models.Run) tea.Cmd {
	mgr := c.manager
	ctx := c.ctx
	return func() tea.Msg {
		if mgr == nil {
			return RunDetailMsg{Run: run, Err: errNoServices}
		}
		detail, err := mgr.RunDetail(ctx, run)
		return RunDetailMsg{Run: detail, Err: err}
	}
}

// LoadProjects lists the roster size of every stored project.
func (c *Commands) LoadProjects() tea.Cmd {
	mgr := c.manager
	ctx := c.ctx
	return func() tea.Msg {
		if mgr == nil {
			return ProjectsLoadedMsg{Err: errNoServices}
		}
		projects, err := mgr.Database().ListProjects(ctx)
		return ProjectsLoadedMsg{Projects: projects, Err: err}
	}
}

// ImportBrowserSession copies the venue cookie from the local browsers into
// project's session.
func (c *Commands) ImportBrowserSession(project string) tea.Cmd {
	mgr := c.manager
	ctx := c.ctx
	return func() tea.Msg {
		if mgr == nil {
			return SessionImportedMsg{Project: project, Err: errNoServices}
		}
		sess, err := mgr.Sessions().ImportFromBrowser(ctx, project, nil)
		return SessionImportedMsg{Project: project, Session: sess, Err: err}
	}
}

// StartExport dispatches a chart export for the selected project.
func (c *Commands) StartExport() tea.Cmd {
	return c.startRun(models.RunExport)
}

// StartSummary dispatches a usage ranking for the selected project.
func (c *Commands) StartSummary() tea.Cmd {
	return c.startRun(models.RunSummary)
}

func (c *Commands) startRun(kind models.RunKind) tea.Cmd {
	if c.manager == nil {
		return notifyErrorCmd(errNoServices.Error())
	}
	project := c.state.ProjectName()
	if project == "" {
		return notifyWarningCmd("No project configured")
	}
	mode := c.state.Mode()
	dr := c.state.Range()
	ctx, cancel := context.WithCancel(c.ctx)
	if !c.state.BeginRun(project, kind, mode, cancel) {
		cancel()
		return notifyWarningCmd("A run is already in progress")
	}

	total := 0
	if r, ok := c.state.Roster(project); ok {
		total = r.Len()
	}
	started := func() tea.Msg {
		return RunStartedMsg{Project: project, Kind: kind, Mode: mode, Total: total}
	}

	mgr := c.manager
	var run tea.Cmd
	switch kind {
	case models.RunSummary:
		run = func() tea.Msg {
			res, err := mgr.Summary(ctx, project, dr, mode, nil)
			return SummaryFinishedMsg{Result: res, Err: err}
		}
	default:
		run = func() tea.Msg {
			res, err := mgr.Export(ctx, project, dr, mode, nil)
			return ExportFinishedMsg{Result: res, Err: err}
		}
	}
	return tea.Batch(started, run)
}

// CancelRun cancels the active run.
func (c *Commands) CancelRun() tea.Cmd {
	return func() tea.Msg { return CancelRunMsg{} }
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}
