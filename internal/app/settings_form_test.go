package app

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brucechou1983/claude-code-usage/internal/config"
)

func TestNewSettingsForm_Prefill(t *testing.T) {
	f := newSettingsForm(config.Settings{OAuthToken: "sk-ant-x", RefreshIntervalSecs: 120})

	if f.Token() != "sk-ant-x" {
		t.Errorf("Token() = %q, want sk-ant-x", f.Token())
	}
	if f.Interval() != "120" {
		t.Errorf("Interval() = %q, want 120", f.Interval())
	}
	if f.focused != fieldToken {
		t.Error("token field should start focused")
	}
}

func TestSettingsForm_FocusCycle(t *testing.T) {
	f := newSettingsForm(config.Settings{})

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	if f.focused != fieldInterval {
		t.Errorf("after tab focused = %d, want interval", f.focused)
	}

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	if f.focused != fieldToken {
		t.Errorf("tab should wrap back to the token field, got %d", f.focused)
	}
}

func TestSettingsForm_TokenMasked(t *testing.T) {
	f := newSettingsForm(config.Settings{OAuthToken: "secret-token"})

	view := f.View()
	if strings.Contains(view, "secret-token") {
		t.Error("token must not be rendered in clear text")
	}
	if !strings.Contains(view, "Refresh interval") {
		t.Error("form should label the interval field")
	}
}

func TestSettingsForm_TypingRoutesToFocusedField(t *testing.T) {
	f := newSettingsForm(config.Settings{})

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("60")})

	if f.Interval() != "60" {
		t.Errorf("Interval() = %q, want 60", f.Interval())
	}
	if f.Token() != "" {
		t.Errorf("Token() = %q, want empty", f.Token())
	}
}
