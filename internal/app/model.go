// Package app implements the Bubble Tea application model.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/brucechou1983/claude-code-usage/internal/models"
	"github.com/brucechou1983/claude-code-usage/internal/services"
	"github.com/brucechou1983/claude-code-usage/internal/ui/components"
	"github.com/brucechou1983/claude-code-usage/internal/ui/styles"
	"github.com/brucechou1983/claude-code-usage/internal/version"
)

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Refresh  key.Binding
	Settings key.Binding
	Trend    key.Binding
	About    key.Binding
	Help     key.Binding
	Quit     key.Binding
	Enter    key.Binding
	Escape   key.Binding
	Tab      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Refresh:  key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Settings: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Trend:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle trend")),
		About:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "about")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Settings, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Settings, k.Trend, k.About},
		{k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Help    lipgloss.Style
	Spinner lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#D75F00", Dark: "#FF8700"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Spinner = lipgloss.NewStyle().Foreground(highlight)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)
	s.Error = lipgloss.NewStyle().Foreground(errorColor)
	s.Success = lipgloss.NewStyle().Foreground(success)
	s.Warning = lipgloss.NewStyle().Foreground(warning)

	return s
}

const (
	barWidth        = 32
	trendHeight     = 10
	minTrendSamples = 2

	// Below this width the animated bars do not fit; the static ASCII
	// bars are used instead.
	wideLayoutWidth = 64
)

// Model is the main application model.
type Model struct {
	// Shared state
	state    *AppState
	services *services.Manager
	keymap   KeyMap
	styles   Styles

	// UI components
	loading  components.LoadingSpinner
	usageBar components.UsageBar

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp     bool
	showSettings bool
	showTrend    bool
	showAbout    bool
	form         settingsForm
	ready        bool

	// Service subscription
	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	return &Model{
		state:    NewAppState(),
		services: mgr,
		keymap:   DefaultKeyMap(),
		styles:   DefaultStyles(),
		loading:  components.NewSpinner("Loading..."),
		usageBar: components.NewUsageBar(barWidth),
	}
}

// GetState returns the application state.
func (m *Model) GetState() *AppState {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetKeyMap returns the key bindings.
func (m *Model) GetKeyMap() KeyMap {
	return m.keymap
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loading.Tick(),
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg, tea.KeyMsg, spinner.TickMsg:
		if cmd := m.handleTeaMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleTeaMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)
	}
	return nil
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		cmds = append(cmds, m.handleTick())
	case SubscriptionEventMsg:
		cmds = append(cmds, m.handleSubscriptionEvent(msg)...)
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEventMsg(msg)...)
	case SettingsSavedMsg:
		cmds = append(cmds, m.handleSettingsSaved(msg))
	case AddNotificationMsg:
		cmds = append(cmds, m.handleAddNotification(msg)...)
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(msg.Error.Error()))
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
}

func (m *Model) handleSpinnerTick(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	m.loading, cmd = m.loading.Update(msg)
	return cmd
}

func (m *Model) handleTick() tea.Cmd {
	m.state.ClearExpiredNotifications()
	return defaultTickCmd()
}

func (m *Model) handleSubscriptionEvent(msg SubscriptionEventMsg) []tea.Cmd {
	m.eventChannel = msg.Channel
	return []tea.Cmd{waitForServiceEventCmd(m.eventChannel)}
}

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.DisplayUpdatedEvent:
		m.state.SetDisplayState(e.State)

	case services.SettingsChangedEvent:
		return notifyInfoCmd("Settings file changed on disk")

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

func (m *Model) handleSettingsSaved(msg SettingsSavedMsg) tea.Cmd {
	if msg.Error != nil {
		return notifyErrorCmd(fmt.Sprintf("Failed to save settings: %v", msg.Error))
	}
	return notifySuccessCmd("Settings saved")
}

func (m *Model) handleAddNotification(msg AddNotificationMsg) []tea.Cmd {
	id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
	return []tea.Cmd{clearNotificationCmd(id, msg.Duration)}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.showSettings {
		return m.handleSettingsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Refresh):
		if m.services != nil {
			return triggerRefreshCmd(m.services)
		}

	case key.Matches(msg, m.keymap.Settings):
		if m.services != nil {
			m.form = newSettingsForm(m.services.Settings())
			m.showSettings = true
			m.showHelp = false
			m.showAbout = false
		}

	case key.Matches(msg, m.keymap.Trend):
		m.showTrend = !m.showTrend

	case key.Matches(msg, m.keymap.About):
		m.showAbout = !m.showAbout
		m.showHelp = false

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		m.showAbout = false

	case key.Matches(msg, m.keymap.Escape):
		m.showHelp = false
		m.showAbout = false
	}

	return nil
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Escape):
		m.showSettings = false
		return nil

	case key.Matches(msg, m.keymap.Enter):
		m.showSettings = false
		if m.services != nil {
			return saveSettingsCmd(m.services, m.form.Token(), m.form.Interval())
		}
		return nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return cmd
}

// View renders the application UI.
func (m *Model) View() string {
	if !m.ready {
		return m.styles.Content.Render(m.loading.ViewWithLabel())
	}

	mainView := m.renderMain()

	if m.showSettings {
		mainView = m.overlayCentered(mainView, m.form.View())
	} else if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	} else if m.showAbout {
		mainView = m.overlayCentered(mainView, m.renderAbout())
	}

	notifications := m.renderNotifications()
	if len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) renderMain() string {
	ds := m.state.DisplayState()

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Claude Code Usage"))
	b.WriteString("  ")
	b.WriteString(ds.Title)
	b.WriteString("\n\n")

	if ds.HasUsage {
		if m.width < wideLayoutWidth {
			b.WriteString(components.SimpleUsageBar(ds.SessionPercent, "Session (5h)", m.width-6))
			b.WriteString("\n")
			b.WriteString(components.SimpleUsageBar(ds.WeeklyPercent, "Weekly (7d) ", m.width-6))
		} else {
			b.WriteString(m.usageBar.View(ds.SessionPercent, "Session (5h)", barWidth))
			b.WriteString("\n")
			b.WriteString(m.usageBar.View(ds.WeeklyPercent, "Weekly (7d) ", barWidth))
		}
		b.WriteString("\n\n")
	}

	for _, item := range ds.Items {
		switch item.ID {
		case models.ItemLastUpdate, models.ItemNextUpdate:
			b.WriteString(styles.MenuMutedStyle.Render(item.Text))
		default:
			b.WriteString(styles.MenuItemStyle.Render(item.Text))
		}
		b.WriteString("\n")
	}

	if m.showTrend {
		b.WriteString("\n")
		b.WriteString(m.renderTrend())
		b.WriteString("\n")
	} else if spark := m.renderSparkline(); spark != "" {
		b.WriteString("\n")
		b.WriteString(styles.MenuMutedStyle.Render("Session trend: "))
		b.WriteString(spark)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("r refresh · s settings · t trend · a about · ? help · q quit"))

	return m.styles.Content.Render(b.String())
}

func (m *Model) renderTrend() string {
	samples := m.services.Samples()
	if len(samples) < minTrendSamples {
		return m.styles.Subtle.Render("Not enough samples for a trend yet.")
	}

	session := make([]float64, len(samples))
	weekly := make([]float64, len(samples))
	for i, s := range samples {
		session[i] = s.Session * 100
		weekly[i] = s.Weekly * 100
	}

	width := min(m.width-8, 72)
	chart := components.RenderTrendChart(session, weekly, width, trendHeight, "Utilization (%)")
	legend := components.RenderLegend([]components.LegendItem{
		{Label: "Session (5h)", Color: styles.Error},
		{Label: "Weekly (7d)", Color: styles.Info},
	})
	return chart + "\n" + legend
}

// renderSparkline is the compact session trend shown when the full chart
// is hidden. Empty until enough samples exist.
func (m *Model) renderSparkline() string {
	if m.services == nil {
		return ""
	}
	samples := m.services.Samples()
	if len(samples) < minTrendSamples {
		return ""
	}

	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Session
	}
	return components.RenderSparkline(values, 24)
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	y := (m.height - overlayHeight) / 2
	x := (m.width - overlayWidth) / 2

	if y < 0 {
		y = 0
	}
	if x < 0 {
		x = 0
	}

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]

		// Truncate main line to the start of the overlay
		left := ansi.Truncate(mainLine, x, "")

		// Skip 'x + overlayWidth' visual cells for the right part
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		// If the line was shorter than the overlay start, pad it
		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Actions"))
	lines = append(lines, "  r          Refresh usage now")
	lines = append(lines, "  s          Edit token and interval")
	lines = append(lines, "  t          Toggle trend chart")
	lines = append(lines, "  a          About")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Settings form"))
	lines = append(lines, "  Tab        Next field")
	lines = append(lines, "  Enter      Save")
	lines = append(lines, "  Esc        Cancel")
	lines = append(lines, "")

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderAbout() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Claude Code Usage"))
	lines = append(lines, "")
	lines = append(lines, version.Info())
	lines = append(lines, "")
	lines = append(lines, m.styles.Subtle.Render("Polls the Anthropic API for 5h and 7d rate-limit usage."))
	lines = append(lines, m.styles.Subtle.Render("Press Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}
