package app

import (
	"strings"
	"testing"
	"time"

	"github.com/brucechou1983/claude-code-usage/internal/display"
	"github.com/brucechou1983/claude-code-usage/internal/models"
)

func TestNewAppState(t *testing.T) {
	s := NewAppState()
	if s == nil {
		t.Fatal("NewAppState returned nil")
	}

	ds := s.DisplayState()
	if ds.Title != display.IconPending {
		t.Errorf("initial title = %q, want %q", ds.Title, display.IconPending)
	}
	if len(s.GetNotifications()) != 0 {
		t.Error("notifications should start empty")
	}
}

func TestAppState_SetDisplayState(t *testing.T) {
	s := NewAppState()

	next := models.DisplayState{
		Title:          "🟢🔴 45/85%",
		SessionPercent: 45,
		WeeklyPercent:  85,
		HasUsage:       true,
	}
	s.SetDisplayState(next)

	got := s.DisplayState()
	if got.Title != next.Title {
		t.Errorf("Title = %q, want %q", got.Title, next.Title)
	}
	if got.SessionPercent != 45 || got.WeeklyPercent != 85 {
		t.Errorf("percents = %d/%d, want 45/85", got.SessionPercent, got.WeeklyPercent)
	}
}

func TestAppState_Notifications(t *testing.T) {
	s := NewAppState()

	id1 := s.AddNotification(NotificationSuccess, "saved", time.Minute)
	id2 := s.AddNotification(NotificationError, "boom", time.Minute)

	if id1 == id2 {
		t.Error("notification IDs should be unique")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 2 {
		t.Fatalf("got %d notifications, want 2", len(notifs))
	}

	s.RemoveNotification(id1)
	notifs = s.GetNotifications()
	if len(notifs) != 1 || notifs[0].Message != "boom" {
		t.Errorf("after remove got %v", notifs)
	}

	s.ClearAllNotifications()
	if len(s.GetNotifications()) != 0 {
		t.Error("ClearAllNotifications should empty the list")
	}
}

func TestAppState_ClearExpiredNotifications(t *testing.T) {
	s := NewAppState()

	s.AddNotification(NotificationInfo, "stale", time.Nanosecond)
	kept := s.AddNotification(NotificationInfo, "fresh", time.Minute)

	time.Sleep(5 * time.Millisecond)
	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifs))
	}
	if notifs[0].ID != kept {
		t.Errorf("kept %q, want %q", notifs[0].ID, kept)
	}
}

func TestAppState_NotificationCap(t *testing.T) {
	s := NewAppState()

	for i := 0; i < 15; i++ {
		s.AddNotification(NotificationInfo, "n", time.Minute)
	}

	if got := len(s.GetNotifications()); got > 10 {
		t.Errorf("got %d notifications, want at most 10", got)
	}
}

func TestNotificationType_String(t *testing.T) {
	cases := map[NotificationType]string{
		NotificationSuccess: "success",
		NotificationError:   "error",
		NotificationWarning: "warning",
		NotificationInfo:    "info",
	}
	for typ, want := range cases {
		if got := typ.String(); !strings.EqualFold(got, want) {
			t.Errorf("%d.String() = %q, want %q", typ, got, want)
		}
	}
}
