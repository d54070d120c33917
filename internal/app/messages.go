package app

import (
	"time"

	"github.com/brucechou1983/claude-code-usage/internal/services"
)

// TickMsg is sent periodically to expire notifications and re-render the
// relative timestamps.
type TickMsg struct {
	Time time.Time
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SettingsSavedMsg contains the result of saving the settings form.
type SettingsSavedMsg struct {
	Error error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}
