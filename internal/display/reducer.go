// Package display maps fetch results to status-indicator presentation
// state. Everything in here is pure: the same inputs always produce the
// same DisplayState, with the clock passed in explicitly.
package display

import (
	"fmt"
	"time"

	"github.com/brucechou1983/claude-code-usage/internal/models"
)

// Indicator glyphs.
const (
	IconGreen    = "🟢"
	IconYellow   = "🟡"
	IconRed      = "🔴"
	IconPending  = "⏳"
	IconFetching = "🔄"
	IconNoToken  = "⚠️"
	IconExpired  = "🔑"
	IconError    = "❌"
)

// Traffic-light thresholds on the utilization ratio. Both boundaries are
// inclusive of the higher tier.
const (
	redThreshold    = 0.80
	yellowThreshold = 0.50
)

const (
	clockFormat   = "15:04:05"
	resetFormat   = "03:04 PM"
	maxMessageLen = 30
)

// Icon returns the traffic-light glyph for a utilization ratio.
func Icon(ratio float64) string {
	switch {
	case ratio >= redThreshold:
		return IconRed
	case ratio >= yellowThreshold:
		return IconYellow
	default:
		return IconGreen
	}
}

// Reduce maps a fetch result to the full replacement DisplayState.
func Reduce(res models.FetchResult, interval time.Duration, now time.Time) models.DisplayState {
	if res.OK() {
		return reduceSnapshot(*res.Snapshot, interval, now)
	}
	return reduceFailure(res.Failure, interval, now)
}

func reduceSnapshot(snap models.Snapshot, interval time.Duration, now time.Time) models.DisplayState {
	sessionPct := snap.SessionPercent()
	weeklyPct := snap.WeeklyPercent()

	title := fmt.Sprintf("%s%s %d/%d%%",
		Icon(snap.SessionUtilization), Icon(snap.WeeklyUtilization),
		sessionPct, weeklyPct)

	next := now.Add(interval)
	return models.DisplayState{
		Title:          title,
		SessionPercent: sessionPct,
		WeeklyPercent:  weeklyPct,
		HasUsage:       true,
		NextRefreshAt:  next,
		Items: []models.MenuItem{
			{ID: models.ItemSession, Text: fmt.Sprintf("Session (5h): %d%%", sessionPct)},
			{ID: models.ItemSessionReset, Text: "  Resets: " + FormatReset(snap.SessionReset, now)},
			{ID: models.ItemWeekly, Text: fmt.Sprintf("Weekly (7d): %d%%", weeklyPct)},
			{ID: models.ItemWeeklyReset, Text: "  Resets: " + FormatReset(snap.WeeklyReset, now)},
			{ID: models.ItemStatus, Text: "Status: " + snap.Status},
			{ID: models.ItemLastUpdate, Text: "Last update: " + now.Format(clockFormat)},
			{ID: models.ItemNextUpdate, Text: "Next update: " + next.Format(clockFormat)},
		},
	}
}

func reduceFailure(failure *models.FetchFailure, interval time.Duration, now time.Time) models.DisplayState {
	var title, status string
	switch failure.Kind {
	case models.FailureUnauthorized:
		title = IconExpired
		status = "Token expired"
	case models.FailureHTTP:
		title = IconError
		status = fmt.Sprintf("Error %d", failure.StatusCode)
	default:
		title = IconError
		status = Truncate(failure.Message, maxMessageLen)
	}
	return placeholderState(title, status, interval, now)
}

// MissingCredential is the pre-fetch state shown when no token is
// configured. It is a precondition, not a fetch error.
func MissingCredential(interval time.Duration, now time.Time) models.DisplayState {
	return placeholderState(IconNoToken, "Token not set", interval, now)
}

// Pending is the startup placeholder shown before the first fetch resolves.
func Pending() models.DisplayState {
	return models.DisplayState{
		Title: IconPending,
		Items: placeholderItems("--", "", ""),
	}
}

// Refreshing marks a state as having a fetch in flight, keeping the menu
// contents of the previous state.
func Refreshing(prev models.DisplayState) models.DisplayState {
	next := prev
	next.Title = IconFetching
	next.Items = make([]models.MenuItem, len(prev.Items))
	copy(next.Items, prev.Items)
	return next
}

func placeholderState(title, status string, interval time.Duration, now time.Time) models.DisplayState {
	next := now.Add(interval)
	return models.DisplayState{
		Title:         title,
		NextRefreshAt: next,
		Items: placeholderItems(status,
			now.Format(clockFormat), next.Format(clockFormat)),
	}
}

func placeholderItems(status, lastUpdate, nextUpdate string) []models.MenuItem {
	if lastUpdate == "" {
		lastUpdate = "--"
	}
	if nextUpdate == "" {
		nextUpdate = "--"
	}
	return []models.MenuItem{
		{ID: models.ItemSession, Text: "Session (5h): --"},
		{ID: models.ItemSessionReset, Text: "  Resets: --"},
		{ID: models.ItemWeekly, Text: "Weekly (7d): --"},
		{ID: models.ItemWeeklyReset, Text: "  Resets: --"},
		{ID: models.ItemStatus, Text: "Status: " + status},
		{ID: models.ItemLastUpdate, Text: "Last update: " + lastUpdate},
		{ID: models.ItemNextUpdate, Text: "Next update: " + nextUpdate},
	}
}

// FormatReset renders a reset instant relative to now: "unknown" when
// absent, "just reset" when already past, otherwise a localized 12-hour
// clock time with the remaining duration in parentheses.
func FormatReset(reset *time.Time, now time.Time) string {
	if reset == nil {
		return "unknown"
	}
	diff := reset.Sub(now)
	if diff < 0 {
		return "just reset"
	}

	total := int(diff.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60

	timeStr := reset.Format(resetFormat)
	if hours > 0 {
		return fmt.Sprintf("%s (%dh %dm)", timeStr, hours, minutes)
	}
	return fmt.Sprintf("%s (%dm)", timeStr, minutes)
}

// Truncate limits a message to n runes, matching what fits on a status line.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
