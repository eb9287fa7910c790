// Package services provides service orchestration for the CLI and TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/google/uuid"

	"github.com/j-veylop/venue-usage-tui/internal/config"
	"github.com/j-veylop/venue-usage-tui/internal/db"
	"github.com/j-veylop/venue-usage-tui/internal/logger"
	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/pipeline"
	"github.com/j-veylop/venue-usage-tui/internal/services/roster"
	"github.com/j-veylop/venue-usage-tui/internal/services/sessions"
	"github.com/j-veylop/venue-usage-tui/internal/services/usage"
)

type (
	// SessionsChangedEvent is emitted when the stored credentials change.
	SessionsChangedEvent struct {
		Sessions []models.Session
	}

	// RunProgressEvent is emitted after each location of a bulk run resolves.
	RunProgressEvent struct {
		RunID      string
		Project    string
		Kind       models.RunKind
		Completion pipeline.Completion
	}

	// RunFinishedEvent is emitted once a bulk run has been recorded.
	RunFinishedEvent struct {
		Run *models.Run
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SessionsChangedEvent) isServiceEvent() {}
func (RunProgressEvent) isServiceEvent()     {}
func (RunFinishedEvent) isServiceEvent()     {}
func (ErrorEvent) isServiceEvent()           {}

// ExportResult is a finished export written to disk.
type ExportResult struct {
	Run  *models.Run
	Path string
}

// SummaryResult is a finished ranking run.
type SummaryResult struct {
	Run    *models.Run
	Report models.SummaryReport
}

// NotifyFunc shows a desktop notification.
type NotifyFunc func(title, body string) error

// Manager orchestrates services and event routing.
type Manager struct {
	cfg         *config.Config
	sessions    *sessions.Service
	database    *db.DB
	client      *usage.Client
	runner      *pipeline.Runner
	notify      NotifyFunc
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	mu          sync.RWMutex
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		stopChan: make(chan struct{}),
		notify: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
	}

	var err error
	m.sessions, err = sessions.New(cfg.SessionsPath)
	if err != nil {
		return nil, err
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		_ = m.sessions.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.client = usage.NewClient(usage.Options{
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.FetchTimeout,
		MaxConnsPerHost:   cfg.MaxWorkers(),
		RequestsPerSecond: cfg.RequestsPerSecond,
		Retry: usage.RetryPolicy{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
		},
	})
	m.runner = pipeline.NewRunner(m.client, pipeline.NewRenderer())

	go m.routeEvents()

	return m, nil
}

// SetNotifier replaces the desktop notifier. A nil notifier disables it.
func (m *Manager) SetNotifier(fn NotifyFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = fn
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event, ok := <-m.sessions.Events():
			if !ok {
				return
			}
			m.handleSessionEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleSessionEvent(event sessions.Event) {
	switch event.Type {
	case sessions.EventError:
		m.broadcast(ErrorEvent{Service: "sessions", Error: event.Error})
	default:
		m.broadcast(SessionsChangedEvent{Sessions: m.sessions.List()})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Config returns the loaded configuration.
func (m *Manager) Config() *config.Config { return m.cfg }

// Sessions returns the sessions service.
func (m *Manager) Sessions() *sessions.Service { return m.sessions }

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB { return m.database }

// Workers returns the concurrency limit for a run kind and mode.
func (m *Manager) Workers(kind models.RunKind, mode models.FetchMode) int {
	if mode == models.ModeSafe {
		return m.cfg.SafeWorkers
	}
	if kind == models.RunSummary {
		return m.cfg.SummaryWorkers
	}
	return m.cfg.TurboWorkers
}

// Roster loads the stored roster for project.
func (m *Manager) Roster(ctx context.Context, project string) (*models.Roster, error) {
	return m.database.GetRoster(ctx, project)
}

// ImportRoster reads a spreadsheet and replaces the project's roster.
func (m *Manager) ImportRoster(ctx context.Context, project, path string) (*models.Roster, error) {
	if _, err := m.cfg.Project(project); err != nil {
		return nil, err
	}
	r, err := roster.ReadFile(project, path)
	if err != nil {
		return nil, err
	}
	if err := m.database.ReplaceRoster(ctx, r); err != nil {
		return nil, err
	}
	logger.Info("roster imported", "project", project, "locations", r.Len(), "file", path)
	return r, nil
}

// DeleteRoster removes the project's roster.
func (m *Manager) DeleteRoster(ctx context.Context, project string) (int64, error) {
	return m.database.DeleteRoster(ctx, project)
}

// RecentRuns returns recorded runs for project, newest first.
func (m *Manager) RecentRuns(ctx context.Context, project string, limit int) ([]models.Run, error) {
	return m.database.RecentRuns(ctx, project, limit)
}

// RunDetail fills in the error log and, for summary runs, the ranked rows of
// a recorded run.
func (m *Manager) RunDetail(ctx context.Context, run models.Run) (models.Run, error) {
	errs, err := m.database.GetRunErrors(ctx, run.ID)
	if err != nil {
		return run, err
	}
	run.Errors = errs
	if run.Kind == models.RunSummary {
		rows, err := m.database.GetRunSummary(ctx, run.ID)
		if err != nil {
			return run, err
		}
		run.SummaryRows = rows
	}
	return run, nil
}

// Check fetches one location of project.
func (m *Manager) Check(ctx context.Context, project, locationID string, dr models.DateRange) (models.Location, models.FetchOutcome, error) {
	p, err := m.cfg.Project(project)
	if err != nil {
		return models.Location{}, models.FetchOutcome{}, err
	}
	r, err := m.database.GetRoster(ctx, project)
	if err != nil {
		return models.Location{}, models.FetchOutcome{}, err
	}
	loc, ok := r.Find(locationID)
	if !ok {
		return models.Location{}, models.FetchOutcome{}, fmt.Errorf("location %s not in %s roster", locationID, project)
	}
	cred, err := m.credential(project)
	if err != nil {
		return loc, models.FetchOutcome{}, err
	}
	outcome, err := m.runner.Check(ctx, cred, p.OrgID, loc, dr)
	return loc, outcome, err
}

func (m *Manager) credential(project string) (string, error) {
	cred, err := m.sessions.Credential(project)
	if errors.Is(err, sessions.ErrNotFound) {
		return "", fmt.Errorf("%w %q", pipeline.ErrNoCredential, project)
	}
	return cred, err
}

func (m *Manager) request(ctx context.Context, kind models.RunKind, project string, dr models.DateRange, mode models.FetchMode) (pipeline.Request, error) {
	p, err := m.cfg.Project(project)
	if err != nil {
		return pipeline.Request{}, err
	}
	r, err := m.database.GetRoster(ctx, project)
	if err != nil {
		return pipeline.Request{}, err
	}
	cred, err := m.credential(project)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Roster:     r,
		Range:      dr,
		Project:    project,
		OrgID:      p.OrgID,
		Credential: cred,
		Workers:    m.Workers(kind, mode),
	}, nil
}

func (m *Manager) progress(runID, project string, kind models.RunKind, onProgress func(pipeline.Completion)) func(pipeline.Completion) {
	return func(c pipeline.Completion) {
		m.broadcast(RunProgressEvent{RunID: runID, Project: project, Kind: kind, Completion: c})
		if onProgress != nil {
			onProgress(c)
		}
	}
}

// Export runs the chart export for project and writes Report_<project>.zip
// into the export directory.
func (m *Manager) Export(ctx context.Context, project string, dr models.DateRange, mode models.FetchMode, onProgress func(pipeline.Completion)) (*ExportResult, error) {
	req, err := m.request(ctx, models.RunExport, project, dr, mode)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	res, err := m.runner.Export(ctx, req, m.progress(runID, project, models.RunExport, onProgress))
	if err != nil {
		return nil, err
	}

	path := filepath.Join(m.cfg.ExportDir, ArchiveName(project))
	if err := writeFileAtomic(path, res.Archive); err != nil {
		return nil, err
	}

	run := &models.Run{
		ID:         runID,
		Project:    project,
		Kind:       models.RunExport,
		Mode:       mode.String(),
		Range:      dr,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Total:      req.Roster.Len(),
		Counts:     res.Counts,
		Errors:     res.ErrorLog,
		Cancelled:  res.Cancelled,
	}
	m.record(ctx, run)
	m.notifyDone(run, fmt.Sprintf("%d charts saved to %s", res.Artifacts, filepath.Base(path)))

	return &ExportResult{Run: run, Path: path}, nil
}

// Summary ranks project locations by total usage.
func (m *Manager) Summary(ctx context.Context, project string, dr models.DateRange, mode models.FetchMode, onProgress func(pipeline.Completion)) (*SummaryResult, error) {
	req, err := m.request(ctx, models.RunSummary, project, dr, mode)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	res, err := m.runner.Summarize(ctx, req, m.progress(runID, project, models.RunSummary, onProgress))
	if err != nil {
		return nil, err
	}

	run := &models.Run{
		ID:          runID,
		Project:     project,
		Kind:        models.RunSummary,
		Mode:        mode.String(),
		Range:       dr,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
		Total:       req.Roster.Len(),
		Counts:      res.Counts,
		Errors:      res.ErrorLog,
		SummaryRows: res.Report.Rows,
		Cancelled:   res.Cancelled,
	}
	m.record(ctx, run)
	m.notifyDone(run, fmt.Sprintf("%d of %d locations active, %.2f GB total",
		res.Report.Active, res.Report.Total, res.Report.GrandTotalGB()))

	return &SummaryResult{Run: run, Report: res.Report}, nil
}

// record stores the run. Failures are logged; the run result stands.
func (m *Manager) record(ctx context.Context, run *models.Run) {
	if err := m.database.InsertRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("failed to record run", "run", run.ID, "error", err)
		m.broadcast(ErrorEvent{Service: "db", Error: err})
	}
	m.broadcast(RunFinishedEvent{Run: run})
}

func (m *Manager) notifyDone(run *models.Run, detail string) {
	m.mu.RLock()
	notify := m.notify
	m.mu.RUnlock()
	if notify == nil {
		return
	}

	title := fmt.Sprintf("%s %s finished", run.Project, run.Kind)
	if run.Cancelled {
		title = fmt.Sprintf("%s %s cancelled", run.Project, run.Kind)
	}
	body := fmt.Sprintf("Success %d, empty %d, failed %d. %s",
		run.Counts.Success, run.Counts.Empty, run.Counts.Failed, detail)
	if err := notify(title, body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// ArchiveName returns the export file name for project.
func ArchiveName(project string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, project)
	return "Report_" + name + ".zip"
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error
	if err := m.sessions.Close(); err != nil {
		errs = append(errs, err)
	}
	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Elapsed formats a run duration for display.
func Elapsed(d time.Duration) string {
	return d.Round(100 * time.Millisecond).String()
}
