// Package services provides service orchestration for the status indicator.
package services

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/brucechou1983/claude-code-usage/internal/config"
	"github.com/brucechou1983/claude-code-usage/internal/display"
	"github.com/brucechou1983/claude-code-usage/internal/models"
	"github.com/brucechou1983/claude-code-usage/internal/services/refresh"
	"github.com/brucechou1983/claude-code-usage/internal/services/settings"
	"github.com/brucechou1983/claude-code-usage/internal/services/usage"
)

type (
	// DisplayUpdatedEvent is emitted whenever the presentation state is
	// replaced with a new one.
	DisplayUpdatedEvent struct {
		State models.DisplayState
	}

	// SettingsChangedEvent is emitted after the settings file changes,
	// either through the UI or an external edit.
	SettingsChangedEvent struct {
		Settings config.Settings
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

func (DisplayUpdatedEvent) isServiceEvent()  {}
func (SettingsChangedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()           {}

// Sample is one utilization reading kept for the in-memory trend view.
type Sample struct {
	At      time.Time
	Session float64
	Weekly  float64
}

// maxSamples bounds the trend buffer; nothing is persisted across runs.
const maxSamples = 288

// High-utilization notification threshold on the raw ratio.
const notifyThreshold = 0.80

// Manager orchestrates the settings store, the refresh scheduler and the
// usage client, and routes their events to subscribers.
type Manager struct {
	mu          sync.RWMutex
	store       *config.Store
	client      *usage.Client
	scheduler   *refresh.Scheduler
	controller  *settings.Controller
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent

	current        models.DisplayState
	samples        []Sample
	prevSnapshot   *models.Snapshot
	notifiedExpiry bool
}

// NewManager creates a new service manager and starts the refresh cycle.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		stopChan: make(chan struct{}),
		current:  display.Pending(),
	}

	var err error
	m.store, err = config.NewStore(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	m.client = usage.NewClient(cfg.HTTPTimeout)
	m.scheduler = refresh.New(m.client, m.store, m.store.Interval())
	m.controller = settings.NewController(m.store, m.scheduler)

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.scheduler.Events():
			m.handleSchedulerEvent(event)

		case event := <-m.store.Events():
			m.handleStoreEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleSchedulerEvent(event refresh.Event) {
	now := time.Now()

	switch event.Type {
	case refresh.EventRefreshing:
		m.setDisplay(display.Refreshing(m.DisplayState()))

	case refresh.EventMissingCredential:
		m.setDisplay(display.MissingCredential(m.store.Interval(), now))

	case refresh.EventResult:
		state := display.Reduce(event.Result, m.store.Interval(), now)
		m.recordResult(event.Result, now)
		m.setDisplay(state)

		if !event.Result.OK() {
			m.broadcast(ErrorEvent{Service: "usage", Error: event.Result.Failure})
		}
	}
}

func (m *Manager) handleStoreEvent(event config.StoreEvent) {
	switch event.Type {
	case config.EventSettingsChanged:
		// External edits behave like saving through the settings form:
		// reconfigure the cycle and fetch with the new values right away.
		m.scheduler.SetInterval(m.store.Interval())
		m.scheduler.TriggerRefresh()
		m.broadcast(SettingsChangedEvent{Settings: m.store.Settings()})

	case config.EventSettingsError:
		m.broadcast(ErrorEvent{Service: "settings", Error: event.Error})
	}
}

// recordResult updates the trend buffer and fires desktop notifications
// for threshold crossings and expired tokens.
func (m *Manager) recordResult(result models.FetchResult, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !result.OK() {
		if result.Failure.Kind == models.FailureUnauthorized && !m.notifiedExpiry {
			m.notifiedExpiry = true
			_ = beeep.Notify("Claude Code usage", "OAuth token expired, update it in settings", "")
		}
		return
	}

	snap := result.Snapshot
	m.notifiedExpiry = false

	if prev := m.prevSnapshot; prev != nil {
		// Notify only on upward crossings so a window that stays hot
		// does not fire on every poll.
		if snap.SessionUtilization >= notifyThreshold && prev.SessionUtilization < notifyThreshold {
			body := fmt.Sprintf("Session window at %d%%", snap.SessionPercent())
			_ = beeep.Notify("Claude Code usage high", body, "")
		}
		if snap.WeeklyUtilization >= notifyThreshold && prev.WeeklyUtilization < notifyThreshold {
			body := fmt.Sprintf("Weekly window at %d%%", snap.WeeklyPercent())
			_ = beeep.Notify("Claude Code usage high", body, "")
		}
	}
	m.prevSnapshot = snap

	m.samples = append(m.samples, Sample{
		At:      now,
		Session: snap.SessionUtilization,
		Weekly:  snap.WeeklyUtilization,
	})
	if len(m.samples) > maxSamples {
		m.samples = m.samples[len(m.samples)-maxSamples:]
	}
}

func (m *Manager) setDisplay(state models.DisplayState) {
	m.mu.Lock()
	m.current = state
	m.mu.Unlock()

	m.broadcast(DisplayUpdatedEvent{State: state})
}

// DisplayState returns the current presentation state.
func (m *Manager) DisplayState() models.DisplayState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Samples returns a copy of the in-memory utilization trend.
func (m *Manager) Samples() []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	samples := make([]Sample, len(m.samples))
	copy(samples, m.samples)
	return samples
}

// Settings returns the persisted settings for pre-filling the edit form.
func (m *Manager) Settings() config.Settings {
	return m.controller.Current()
}

// ApplySettings persists edited settings and reconfigures the refresh cycle.
func (m *Manager) ApplySettings(token, intervalRaw string) error {
	return m.controller.Apply(token, intervalRaw)
}

// TriggerRefresh requests an immediate fetch.
func (m *Manager) TriggerRefresh() {
	m.scheduler.TriggerRefresh()
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

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
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

	if err := m.scheduler.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.store.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
