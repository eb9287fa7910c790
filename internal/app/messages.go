package app

import (
	"time"

	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/pipeline"
	"github.com/j-veylop/venue-usage-tui/internal/services"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// SessionsLoadedMsg carries the stored credentials.
type SessionsLoadedMsg struct {
	Sessions []models.Session
}

// RosterLoadedMsg carries a project's roster from the store.
type RosterLoadedMsg struct {
	Roster  *models.Roster
	Err     error
	Project string
}

// ProjectChangedMsg is sent after the selected project changes.
type ProjectChangedMsg struct {
	Project string
}

// ModeChangedMsg is sent after the concurrency preset changes.
type ModeChangedMsg struct {
	Mode models.FetchMode
}

// CheckResultMsg is the outcome of a single-location check.
type CheckResultMsg struct {
	Err      error
	Project  string
	Location models.Location
	Outcome  models.FetchOutcome
}

// RunStartedMsg is sent when a bulk run has been dispatched.
type RunStartedMsg struct {
	Project string
	Kind    models.RunKind
	Mode    models.FetchMode
	Total   int
}

// RunProgressMsg reports one resolved location of the active run.
type RunProgressMsg struct {
	RunID      string
	Project    string
	Kind       models.RunKind
	Completion pipeline.Completion
}

// ExportFinishedMsg carries the result of an export run.
type ExportFinishedMsg struct {
	Result *services.ExportResult
	Err    error
}

// SummaryFinishedMsg carries the result of a summary run.
type SummaryFinishedMsg struct {
	Result *services.SummaryResult
	Err    error
}

// RunsLoadedMsg carries the recorded runs of a project, newest first.
type RunsLoadedMsg struct {
	Err     error
	Project string
	Runs    []models.Run
}

// RunDetailMsg carries one recorded run with its error log filled in.
type RunDetailMsg struct {
	Err error
	Run models.Run
}

// ProjectsLoadedMsg carries the roster size of every stored project.
type ProjectsLoadedMsg struct {
	Err      error
	Projects []models.ProjectSummary
}

// SessionImportedMsg is sent after a browser cookie import.
type SessionImportedMsg struct {
	Err     error
	Project string
	Session models.Session
}

// CancelRunMsg requests cancellation of the active run.
type CancelRunMsg struct{}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
