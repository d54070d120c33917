package models

import "time"

// Menu item identifiers. These are stable: the UI binding addresses items
// by ID, never by position.
const (
	ItemSession      = "session"
	ItemSessionReset = "session_reset"
	ItemWeekly       = "weekly"
	ItemWeeklyReset  = "weekly_reset"
	ItemStatus       = "status"
	ItemLastUpdate   = "last_update"
	ItemNextUpdate   = "next_update"
)

// MenuItem is one labeled line of the status-indicator menu.
type MenuItem struct {
	ID   string
	Text string
}

// DisplayState is the full presentation state of the status indicator.
// It is replaced wholesale on every fetch completion; the UI never sees a
// partially updated value. Everything here is derivable from the last
// fetch result plus the poll interval and the reduction time.
type DisplayState struct {
	// Title is the indicator glyph/text shown at a glance.
	Title string

	// Items is the ordered menu description the UI binding renders.
	Items []MenuItem

	// SessionPercent and WeeklyPercent are floored percentages, valid
	// only when HasUsage is true.
	SessionPercent int
	WeeklyPercent  int
	HasUsage       bool

	// NextRefreshAt is when the next scheduled fetch is due.
	NextRefreshAt time.Time
}

// Item returns the text of the menu item with the given ID, or "" when the
// state carries no such item.
func (d DisplayState) Item(id string) string {
	for _, it := range d.Items {
		if it.ID == id {
			return it.Text
		}
	}
	return ""
}
