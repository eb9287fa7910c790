// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/j-veylop/venue-usage-tui/internal/config"
	"github.com/j-veylop/venue-usage-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Roster  bool
	Check   bool
}

// ActiveRun is the bulk run currently in flight. At most one runs at a time.
type ActiveRun struct {
	StartedAt time.Time
	cancel    context.CancelFunc
	Project   string
	Kind      models.RunKind
	Mode      models.FetchMode
}

// State is the data shared between the root model and its tabs.
type State struct {
	LastUpdated time.Time

	rosters  map[string]*models.Roster
	run      *ActiveRun
	dr       models.DateRange
	projects []config.Project
	sessions []models.Session

	notifications []Notification

	Loading LoadingState

	projectIdx      int
	notificationSeq int
	mode            models.FetchMode

	mu sync.RWMutex
}

// NewState creates an empty state covering the current month.
func NewState() *State {
	return &State{
		rosters:       make(map[string]*models.Roster),
		dr:            models.CurrentMonth(time.Now()),
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "roster":
		s.Loading.Roster = loading
	case "check":
		s.Loading.Check = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial || s.Loading.Roster || s.Loading.Check
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// IsLoading reports whether one resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case "initial":
		return s.Loading.Initial
	case "roster":
		return s.Loading.Roster
	case "check":
		return s.Loading.Check
	}
	return false
}

// SetProjects replaces the configured project list and keeps the selection
// on the same project name when it still exists.
func (s *State) SetProjects(projects []config.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := ""
	if s.projectIdx < len(s.projects) {
		current = s.projects[s.projectIdx].Name
	}

	s.projects = append([]config.Project(nil), projects...)
	s.projectIdx = 0
	for i, p := range s.projects {
		if p.Name == current {
			s.projectIdx = i
			break
		}
	}
}

// Projects returns a copy of the configured projects.
func (s *State) Projects() []config.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]config.Project(nil), s.projects...)
}

// Project returns the selected project.
func (s *State) Project() (config.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.projects) == 0 {
		return config.Project{}, false
	}
	return s.projects[s.projectIdx], true
}

// ProjectName returns the selected project's name, or "" with none configured.
func (s *State) ProjectName() string {
	p, _ := s.Project()
	return p.Name
}

// CycleProject moves the selection to the next project and returns its name.
func (s *State) CycleProject() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.projects) == 0 {
		return ""
	}
	s.projectIdx = (s.projectIdx + 1) % len(s.projects)
	return s.projects[s.projectIdx].Name
}

// Mode returns the selected concurrency preset.
func (s *State) Mode() models.FetchMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// ToggleMode switches between safe and turbo and returns the new mode.
func (s *State) ToggleMode() models.FetchMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = s.mode.Next()
	return s.mode
}

// Range returns the selected date range.
func (s *State) Range() models.DateRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dr
}

// SetRange replaces the selected date range after validating it.
func (s *State) SetRange(dr models.DateRange) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dr = dr
	return nil
}

// ShiftMonth moves the range to the whole calendar month delta months away
// from the current start. Ranges never extend past today.
func (s *State) ShiftMonth(delta int, now time.Time) models.DateRange {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	first := time.Date(s.dr.Start.Year(), s.dr.Start.Month()+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	if first.After(today) {
		return s.dr
	}
	last := first.AddDate(0, 1, -1)
	if last.After(today) {
		last = today
	}
	s.dr = models.DateRange{Start: first, End: last}
	return s.dr
}

// SetSessions replaces the known credentials.
func (s *State) SetSessions(sessions []models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append([]models.Session(nil), sessions...)
	s.LastUpdated = time.Now()
}

// Sessions returns a copy of the known credentials.
func (s *State) Sessions() []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Session(nil), s.sessions...)
}

// Session returns the stored credential for project.
func (s *State) Session(project string) (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.Project == project {
			return sess, true
		}
	}
	return models.Session{}, false
}

// SetRoster caches the roster loaded for its project.
func (s *State) SetRoster(r *models.Roster) {
	if r == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rosters[r.Project] = r
	s.LastUpdated = time.Now()
}

// Roster returns the cached roster for project.
func (s *State) Roster(project string) (*models.Roster, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rosters[project]
	return r, ok
}

// BeginRun marks a bulk run as active. It returns false when another run is
// still in flight.
func (s *State) BeginRun(project string, kind models.RunKind, mode models.FetchMode, cancel context.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != nil {
		return false
	}
	s.run = &ActiveRun{
		StartedAt: time.Now(),
		cancel:    cancel,
		Project:   project,
		Kind:      kind,
		Mode:      mode,
	}
	return true
}

// ActiveRun returns a copy of the active run, if any.
func (s *State) ActiveRun() (ActiveRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.run == nil {
		return ActiveRun{}, false
	}
	return *s.run, true
}

// Running reports whether a bulk run is in flight.
func (s *State) Running() bool {
	_, ok := s.ActiveRun()
	return ok
}

// CancelRun requests cancellation of the active run. Locations already
// dispatched still finish.
func (s *State) CancelRun() bool {
	s.mu.RLock()
	run := s.run
	s.mu.RUnlock()

	if run == nil || run.cancel == nil {
		return false
	}
	run.cancel()
	return true
}

// EndRun clears the active run and releases its context.
func (s *State) EndRun() {
	s.mu.Lock()
	run := s.run
	s.run = nil
	s.mu.Unlock()

	if run != nil && run.cancel != nil {
		run.cancel()
	}
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}
