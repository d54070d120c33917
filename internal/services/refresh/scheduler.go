// Package refresh schedules periodic usage fetches and serializes them so
// at most one request is in flight at a time.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/brucechou1983/claude-code-usage/internal/logger"
	"github.com/brucechou1983/claude-code-usage/internal/models"
)

// Fetcher performs one usage probe with the given credential.
type Fetcher interface {
	Fetch(ctx context.Context, credential string) models.FetchResult
}

// CredentialProvider supplies the current OAuth token.
type CredentialProvider interface {
	Credential() string
}

// Event represents a scheduler event.
type Event struct {
	Result models.FetchResult
	Type   EventType
}

// EventType defines the type of scheduler event.
type EventType int

const (
	// EventRefreshing indicates a fetch has started.
	EventRefreshing EventType = iota
	// EventResult carries the outcome of a completed fetch.
	EventResult
	// EventMissingCredential indicates a cycle was skipped because no
	// token is configured.
	EventMissingCredential
)

// Scheduler drives the fetch cycle. Ticks and manual triggers that arrive
// while a fetch is in flight are dropped, not queued.
type Scheduler struct {
	fetcher     Fetcher
	credentials CredentialProvider
	eventChan   chan Event
	stopChan    chan struct{}
	triggerChan chan struct{}
	ticker      *time.Ticker

	mu       sync.Mutex
	interval time.Duration
	fetching bool
}

// New creates a scheduler and starts its polling loop. The first cycle
// runs immediately rather than waiting for the first tick.
func New(fetcher Fetcher, credentials CredentialProvider, interval time.Duration) *Scheduler {
	s := &Scheduler{
		fetcher:     fetcher,
		credentials: credentials,
		interval:    interval,
		eventChan:   make(chan Event, 100),
		stopChan:    make(chan struct{}),
		triggerChan: make(chan struct{}, 1),
		ticker:      time.NewTicker(interval),
	}

	go s.run()
	s.TriggerRefresh()

	return s
}

// Events returns the event channel.
func (s *Scheduler) Events() <-chan Event {
	return s.eventChan
}

// Interval returns the current poll interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Fetching reports whether a fetch is currently in flight.
func (s *Scheduler) Fetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching
}

// SetInterval changes the poll interval. The running ticker restarts
// immediately, so the next automatic fetch lands one new interval from now.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.mu.Lock()
	changed := interval != s.interval
	s.interval = interval
	s.mu.Unlock()

	if changed {
		s.ticker.Reset(interval)
		logger.Info("poll interval changed", "interval", interval)
	}
}

// TriggerRefresh requests an immediate fetch cycle. Non-blocking: if a
// trigger is already pending the extra request is dropped.
func (s *Scheduler) TriggerRefresh() {
	select {
	case s.triggerChan <- struct{}{}:
	default:
	}
}

// run is the polling loop.
func (s *Scheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.refresh()
		case <-s.triggerChan:
			s.refresh()
		case <-s.stopChan:
			return
		}
	}
}

// refresh starts one fetch cycle unless one is already running.
func (s *Scheduler) refresh() {
	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		logger.Debug("fetch already in flight, dropping trigger")
		return
	}

	credential := s.credentials.Credential()
	if credential == "" {
		s.mu.Unlock()
		s.sendEvent(Event{Type: EventMissingCredential})
		return
	}

	s.fetching = true
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventRefreshing})

	// The fetch runs off the loop goroutine so ticks keep being observed
	// (and dropped) while it is in flight. In-flight fetches are never
	// cancelled; a stale result is still a valid reading.
	go func() {
		result := s.fetcher.Fetch(context.Background(), credential)

		s.mu.Lock()
		s.fetching = false
		s.mu.Unlock()

		s.sendEvent(Event{Type: EventResult, Result: result})
	}()
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Scheduler) sendEvent(event Event) {
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

// Close stops the polling loop.
func (s *Scheduler) Close() error {
	close(s.stopChan)
	s.ticker.Stop()
	return nil
}
