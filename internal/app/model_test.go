package app

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brucechou1983/claude-code-usage/internal/config"
	"github.com/brucechou1983/claude-code-usage/internal/models"
	"github.com/brucechou1983/claude-code-usage/internal/services"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := &config.Config{
		SettingsPath: filepath.Join(tmpDir, "settings.json"),
		HTTPTimeout:  time.Second,
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	return NewModel(mgr)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t)

	if m.state == nil {
		t.Fatal("state should be initialized")
	}
	if m.IsReady() {
		t.Error("model should not be ready before a window size arrives")
	}
}

func TestModel_Init(t *testing.T) {
	m := newTestModel(t)
	if cmd := m.Init(); cmd == nil {
		t.Error("Init should return startup commands")
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	if !m.IsReady() {
		t.Error("model should be ready after window size")
	}
	if m.width != 100 || m.height != 40 {
		t.Errorf("size = %dx%d, want 100x40", m.width, m.height)
	}
}

func TestModel_ViewBeforeReady(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	if !strings.Contains(view, "Loading") {
		t.Errorf("pre-ready view should show loading, got %q", view)
	}
}

func TestModel_ViewRendersDisplayState(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.state.SetDisplayState(models.DisplayState{
		Title: "🟢🔴 45/85%",
		Items: []models.MenuItem{
			{ID: models.ItemSession, Text: "Session (5h): 45%"},
			{ID: models.ItemLastUpdate, Text: "Last update: 14:00:00"},
		},
		SessionPercent: 45,
		WeeklyPercent:  85,
		HasUsage:       true,
	})

	view := m.View()
	for _, want := range []string{"45/85%", "Session (5h): 45%", "Last update: 14:00:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_NarrowViewUsesStaticBars(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 48, Height: 24})

	m.state.SetDisplayState(models.DisplayState{
		Title:          "🟢🔴 45/85%",
		SessionPercent: 45,
		WeeklyPercent:  85,
		HasUsage:       true,
	})

	// The static ASCII bar brackets its fill; the animated bar does not.
	if view := m.View(); !strings.Contains(view, "[") {
		t.Errorf("narrow view should render static bars, got %q", view)
	}

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if view := m.View(); strings.Contains(view, "[") {
		t.Errorf("wide view should render animated bars, got %q", view)
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(keyMsg("?"))
	if !m.showHelp {
		t.Error("? should open help")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help overlay should render shortcuts")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("esc should close help")
	}
}

func TestModel_SettingsFormFlow(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(keyMsg("s"))
	if !m.showSettings {
		t.Fatal("s should open the settings form")
	}
	if !strings.Contains(m.View(), "OAuth token") {
		t.Error("settings overlay should render the token field")
	}

	// Typing goes to the form, not the global keymap.
	m.Update(keyMsg("s"))
	if !m.showSettings {
		t.Error("typing inside the form must not close it")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showSettings {
		t.Error("esc should close the settings form")
	}
}

func TestModel_SettingsEnterSaves(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(keyMsg("s"))
	m.form.inputs[fieldInterval].SetValue("120")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.showSettings {
		t.Error("enter should close the form")
	}
	if cmd == nil {
		t.Fatal("enter should produce a save command")
	}

	msg := cmd()
	saved, ok := msg.(SettingsSavedMsg)
	if !ok {
		t.Fatalf("save command returned %T, want SettingsSavedMsg", msg)
	}
	if saved.Error != nil {
		t.Errorf("save failed: %v", saved.Error)
	}
	if got := m.services.Settings().RefreshIntervalSecs; got != 120 {
		t.Errorf("saved interval = %d, want 120", got)
	}
}

func TestModel_TrendToggle(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(keyMsg("t"))
	if !m.showTrend {
		t.Error("t should enable the trend section")
	}
	if !strings.Contains(m.View(), "Not enough samples") {
		t.Error("trend with no samples should show the placeholder")
	}

	m.Update(keyMsg("t"))
	if m.showTrend {
		t.Error("t should toggle the trend section off")
	}
}

func TestModel_AboutToggle(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(keyMsg("a"))
	if !m.showAbout {
		t.Error("a should open the about overlay")
	}
	if !strings.Contains(m.View(), "claude-code-usage") {
		t.Error("about overlay should show version info")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showAbout {
		t.Error("esc should close about")
	}
}

func TestModel_QuitKey(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should produce a command")
	}
	if msg := cmd(); msg == nil {
		t.Error("quit command should emit a message")
	}
}

func TestModel_ServiceEventUpdatesState(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	next := models.DisplayState{Title: "🟢🟢 10/20%", HasUsage: true, SessionPercent: 10, WeeklyPercent: 20}
	m.Update(ServiceEventMsg{Event: services.DisplayUpdatedEvent{State: next}})

	if got := m.state.DisplayState().Title; got != next.Title {
		t.Errorf("title = %q, want %q", got, next.Title)
	}
}

func TestModel_ErrorEventNotifies(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	_, cmd := m.Update(ServiceEventMsg{
		Event: services.ErrorEvent{Service: "usage", Error: errors.New("boom")},
	})
	if cmd == nil {
		t.Fatal("error event should produce a notification command")
	}

	drainNotifications(t, m, cmd)

	notifs := m.state.GetNotifications()
	if len(notifs) == 0 {
		t.Fatal("expected a notification")
	}
	if notifs[0].Type != NotificationError {
		t.Errorf("notification type = %v, want error", notifs[0].Type)
	}
	if !strings.Contains(notifs[0].Message, "boom") {
		t.Errorf("notification message = %q", notifs[0].Message)
	}
}

// drainNotifications runs a command chain until the AddNotificationMsg has
// been applied to the state. Batched commands are executed recursively.
func drainNotifications(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drainNotifications(t, m, c)
		}
		return
	}
	if _, ok := msg.(AddNotificationMsg); ok {
		m.Update(msg)
		return
	}
}

func TestModel_SettingsSavedMessages(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	_, cmd := m.Update(SettingsSavedMsg{Error: nil})
	drainNotifications(t, m, cmd)
	notifs := m.state.GetNotifications()
	if len(notifs) != 1 || notifs[0].Type != NotificationSuccess {
		t.Errorf("save success notification missing, got %v", notifs)
	}

	m.state.ClearAllNotifications()

	_, cmd = m.Update(SettingsSavedMsg{Error: errors.New("disk full")})
	drainNotifications(t, m, cmd)
	notifs = m.state.GetNotifications()
	if len(notifs) != 1 || notifs[0].Type != NotificationError {
		t.Errorf("save failure notification missing, got %v", notifs)
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp should not be empty")
	}
}
