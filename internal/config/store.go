package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/brucechou1983/claude-code-usage/internal/logger"
)

// Settings is the user-editable state persisted to the settings file.
type Settings struct {
	OAuthToken          string `json:"oauth_token"`
	RefreshIntervalSecs int    `json:"refresh_interval"`
}

// Refresh interval bounds, in seconds.
const (
	DefaultRefreshIntervalSecs = 300
	MinRefreshIntervalSecs     = 10
)

// Interval returns the poll interval as a duration, substituting the
// default when unset and clamping to the minimum.
func (s Settings) Interval() time.Duration {
	secs := s.RefreshIntervalSecs
	if secs <= 0 {
		secs = DefaultRefreshIntervalSecs
	}
	if secs < MinRefreshIntervalSecs {
		secs = MinRefreshIntervalSecs
	}
	return time.Duration(secs) * time.Second
}

// StoreEvent represents a settings store event.
type StoreEvent struct {
	Type  StoreEventType
	Error error
}

// StoreEventType defines the type of settings event.
type StoreEventType int

const (
	EventSettingsLoaded StoreEventType = iota
	EventSettingsChanged
	EventSettingsError
)

// Store manages settings with file watching and change notifications.
// A missing or corrupt file never fails: it yields defaults instead.
type Store struct {
	mu            sync.RWMutex
	settings      Settings
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan StoreEvent
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// NewStore creates a settings store and starts file watching.
func NewStore(filePath string) (*Store, error) {
	if filePath == "" {
		filePath = getDefaultSettingsPath()
	}

	s := &Store{
		filePath:  filePath,
		eventChan: make(chan StoreEvent, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	s.settings = s.loadSettings()

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(StoreEvent{Type: EventSettingsLoaded})

	return s, nil
}

// Events returns the event channel for subscribing to settings changes.
func (s *Store) Events() <-chan StoreEvent {
	return s.eventChan
}

// Settings returns the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Credential returns the configured OAuth token, empty when unset.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.OAuthToken
}

// Interval returns the normalized poll interval.
func (s *Store) Interval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Interval()
}

// Save persists new settings to disk and updates the in-memory copy.
func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.settings
	s.settings = settings

	if err := s.saveSettingsLocked(); err != nil {
		s.settings = prev
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}

// loadSettings reads the settings file. Any failure, including a corrupt
// file, falls back to zero-value settings so startup never breaks on a
// bad config.
func (s *Store) loadSettings() Settings {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read settings file", "path", s.filePath, "error", err)
		}
		return Settings{}
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		logger.Warn("settings file is not valid JSON, using defaults", "path", s.filePath, "error", err)
		return Settings{}
	}
	return settings
}

// saveSettingsLocked writes the settings file (must hold lock).
func (s *Store) saveSettingsLocked() error {
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
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

// startWatcher starts the file system watcher.
func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Store) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			// Only care about our settings file
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.handleFileChange()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(StoreEvent{Type: EventSettingsError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads settings after an external edit.
func (s *Store) handleFileChange() {
	settings := s.loadSettings()

	s.mu.Lock()
	changed := settings != s.settings
	s.settings = settings
	s.mu.Unlock()

	if changed {
		s.sendEvent(StoreEvent{Type: EventSettingsChanged})
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Store) sendEvent(event StoreEvent) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
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

// Close stops the file watcher and cleans up resources.
func (s *Store) Close() error {
	close(s.stopChan)

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
