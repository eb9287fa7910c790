// Package sessions keeps the per-project venue credentials in a JSON file and
// watches it so credentials written by another process show up live.
package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/venue-usage-tui/internal/logger"
	"github.com/j-veylop/venue-usage-tui/internal/models"
)

// ErrNotFound is returned for projects without a stored credential.
var ErrNotFound = errors.New("no session for project")

// SessionsFile is the on-disk layout.
type SessionsFile struct {
	Sessions []models.Session `json:"sessions"`
	Version  int              `json:"version"`
}

// Event represents a sessions service event.
type Event struct {
	Error   error
	Session *models.Session
	Type    EventType
}

// EventType defines the type of session event.
type EventType int

const (
	EventSessionsLoaded EventType = iota
	EventSessionsChanged
	EventSessionSet
	EventSessionDeleted
	EventError
)

// Service manages project credentials with file watching and change
// notifications.
type Service struct {
	sessions      map[string]models.Session
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	filePath      string
	mu            sync.RWMutex
	closeOnce     sync.Once
}

// DefaultPath returns the default sessions file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "venue-usage", "sessions.json")
}

// New loads the sessions file, creating it if needed, and starts watching it.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		filePath = DefaultPath()
	}

	s := &Service{
		sessions:  make(map[string]models.Session),
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	if err := s.reload(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load sessions: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create sessions file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventSessionsLoaded})
	return s, nil
}

// Path returns the sessions file path.
func (s *Service) Path() string { return s.filePath }

// Events returns the event channel for subscribing to session changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Credential returns the stored credential for project.
func (s *Service) Credential(project string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[project]
	if !ok || sess.Credential == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, project)
	}
	return sess.Credential, nil
}

// Get returns the stored session for project.
func (s *Service) Get(project string) (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[project]
	return sess, ok
}

// List returns all sessions ordered by project name.
func (s *Service) List() []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	slices.SortFunc(out, func(a, b models.Session) int {
		return strings.Compare(a.Project, b.Project)
	})
	return out
}

// Count returns the number of stored sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Set stores credential for project, replacing any previous one.
func (s *Service) Set(project, credential string, source models.SessionSource) error {
	project = strings.TrimSpace(project)
	credential = strings.TrimSpace(credential)
	if project == "" || credential == "" {
		return fmt.Errorf("project and credential are required")
	}

	sess := models.Session{
		Project:    project,
		Credential: credential,
		Source:     source,
		UpdatedAt:  time.Now(),
	}

	s.mu.Lock()
	prev, hadPrev := s.sessions[project]
	s.sessions[project] = sess
	if err := s.saveLocked(); err != nil {
		if hadPrev {
			s.sessions[project] = prev
		} else {
			delete(s.sessions, project)
		}
		s.mu.Unlock()
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	s.mu.Unlock()

	logger.Info("session stored", "project", project, "source", source)
	s.sendEvent(Event{Type: EventSessionSet, Session: &sess})
	return nil
}

// Delete removes the credential for project.
func (s *Service) Delete(project string) error {
	s.mu.Lock()
	sess, ok := s.sessions[project]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, project)
	}
	delete(s.sessions, project)
	if err := s.saveLocked(); err != nil {
		s.sessions[project] = sess
		s.mu.Unlock()
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventSessionDeleted, Session: &sess})
	return nil
}

func parseSessions(data []byte) (map[string]models.Session, error) {
	// An older layout stored a bare {"project": "credential"} map.
	var file SessionsFile
	if err := json.Unmarshal(data, &file); err == nil && (file.Version > 0 || file.Sessions != nil) {
		out := make(map[string]models.Session, len(file.Sessions))
		for _, sess := range file.Sessions {
			if sess.Project != "" {
				out[sess.Project] = sess
			}
		}
		return out, nil
	}

	var legacy map[string]string
	if err := json.Unmarshal(data, &legacy); err == nil {
		out := make(map[string]models.Session, len(legacy))
		for project, cred := range legacy {
			out[project] = models.Session{Project: project, Credential: cred, Source: models.SourceManual}
		}
		return out, nil
	}

	return nil, fmt.Errorf("failed to parse sessions file: invalid format")
}

// reload replaces the in-memory sessions with the file contents.
func (s *Service) reload() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	sessions, err := parseSessions(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()
	return nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes the file atomically (must hold lock).
func (s *Service) saveLocked() error {
	file := SessionsFile{Version: 1, Sessions: make([]models.Session, 0, len(s.sessions))}
	for _, sess := range s.sessions {
		file.Sessions = append(file.Sessions, sess)
	}
	slices.SortFunc(file.Sessions, func(a, b models.Session) int {
		return strings.Compare(a.Project, b.Project)
	})

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so atomic renames are seen.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.mu.Lock()
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleFileChange() {
	if err := s.reload(); err != nil {
		if os.IsNotExist(err) {
			return
		}
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	s.sendEvent(Event{Type: EventSessionsChanged})
}

// sendEvent sends an event without blocking, dropping the oldest if full.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
