// Package settings applies user edits to the token and poll interval,
// persisting them and reconfiguring the refresh cycle.
package settings

import (
	"strconv"
	"strings"
	"time"

	"github.com/brucechou1983/claude-code-usage/internal/config"
	"github.com/brucechou1983/claude-code-usage/internal/logger"
)

// Store persists user settings.
type Store interface {
	Settings() config.Settings
	Save(config.Settings) error
}

// Scheduler is the part of the refresh cycle settings changes touch.
type Scheduler interface {
	SetInterval(time.Duration)
	TriggerRefresh()
}

// Controller validates and applies settings edits.
type Controller struct {
	store     Store
	scheduler Scheduler
}

// NewController creates a settings controller.
func NewController(store Store, scheduler Scheduler) *Controller {
	return &Controller{store: store, scheduler: scheduler}
}

// ParseInterval turns raw user input into a poll interval in seconds.
// Unparseable input falls back to the default; parseable values below the
// minimum are raised to it.
func ParseInterval(raw string) int {
	secs, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return config.DefaultRefreshIntervalSecs
	}
	if secs < config.MinRefreshIntervalSecs {
		return config.MinRefreshIntervalSecs
	}
	return secs
}

// Apply persists the edited token and interval, then reconfigures the
// scheduler and requests an immediate refresh so the new values take
// effect without waiting out the old interval.
func (c *Controller) Apply(token, intervalRaw string) error {
	settings := config.Settings{
		OAuthToken:          strings.TrimSpace(token),
		RefreshIntervalSecs: ParseInterval(intervalRaw),
	}

	if err := c.store.Save(settings); err != nil {
		return err
	}

	logger.Info("settings applied", "interval_secs", settings.RefreshIntervalSecs,
		"has_token", settings.OAuthToken != "")

	c.scheduler.SetInterval(settings.Interval())
	c.scheduler.TriggerRefresh()
	return nil
}

// Current returns the persisted settings for pre-filling the edit form.
func (c *Controller) Current() config.Settings {
	return c.store.Settings()
}
