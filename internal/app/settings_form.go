package app

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brucechou1983/claude-code-usage/internal/config"
	"github.com/brucechou1983/claude-code-usage/internal/ui/styles"
)

const (
	fieldToken = iota
	fieldInterval
	fieldCount
)

// settingsForm is the modal for editing the OAuth token and poll interval.
type settingsForm struct {
	inputs  []textinput.Model
	focused int
}

func newSettingsForm(current config.Settings) settingsForm {
	token := textinput.New()
	token.Placeholder = "sk-ant-oat01-..."
	token.EchoMode = textinput.EchoPassword
	token.EchoCharacter = '•'
	token.CharLimit = 256
	token.Width = 40
	token.SetValue(current.OAuthToken)
	token.Focus()
	token.PromptStyle = styles.FocusedStyle
	token.TextStyle = styles.FocusedStyle

	interval := textinput.New()
	interval.Placeholder = "300"
	interval.CharLimit = 6
	interval.Width = 10
	if current.RefreshIntervalSecs > 0 {
		interval.SetValue(strconv.Itoa(current.RefreshIntervalSecs))
	}

	return settingsForm{
		inputs:  []textinput.Model{token, interval},
		focused: fieldToken,
	}
}

// Update handles key input while the form is open. Enter on the last field
// submits; tab cycles focus.
func (f settingsForm) Update(msg tea.Msg) (settingsForm, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab", "down":
			f.setFocus((f.focused + 1) % fieldCount)
			return f, nil
		case "shift+tab", "up":
			f.setFocus((f.focused - 1 + fieldCount) % fieldCount)
			return f, nil
		}
	}

	var cmds []tea.Cmd
	for i := range f.inputs {
		var cmd tea.Cmd
		f.inputs[i], cmd = f.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return f, tea.Batch(cmds...)
}

func (f *settingsForm) setFocus(idx int) {
	f.focused = idx
	for i := range f.inputs {
		if i == idx {
			f.inputs[i].Focus()
			f.inputs[i].PromptStyle = styles.FocusedStyle
			f.inputs[i].TextStyle = styles.FocusedStyle
		} else {
			f.inputs[i].Blur()
			f.inputs[i].PromptStyle = styles.BlurredStyle
			f.inputs[i].TextStyle = styles.BlurredStyle
		}
	}
}

// Token returns the edited token value.
func (f settingsForm) Token() string {
	return f.inputs[fieldToken].Value()
}

// Interval returns the raw interval input.
func (f settingsForm) Interval() string {
	return f.inputs[fieldInterval].Value()
}

// View renders the form as a modal panel.
func (f settingsForm) View() string {
	var b strings.Builder

	b.WriteString(styles.CardTitleStyle.Render("Settings"))
	b.WriteString("\n\n")
	b.WriteString("OAuth token\n")
	b.WriteString(f.inputs[fieldToken].View())
	b.WriteString("\n\n")
	b.WriteString("Refresh interval (seconds, min 10)\n")
	b.WriteString(f.inputs[fieldInterval].View())
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("enter save · esc cancel · tab next field"))

	return styles.ModalContentStyle.Render(b.String())
}
