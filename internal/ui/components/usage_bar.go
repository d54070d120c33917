// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brucechou1983/claude-code-usage/internal/logger"
	"github.com/brucechou1983/claude-code-usage/internal/ui/styles"
)

// Gradient endpoints. Utilization runs green to red: a full bar means the
// window is exhausted.
const (
	gradientLow  = "#51cf66"
	gradientHigh = "#ff6b6b"
)

// UsageBar renders a utilization progress bar with label and percentage.
type UsageBar struct {
	progress progress.Model
}

// NewUsageBar creates a usage bar with gradient colors.
func NewUsageBar(width int) UsageBar {
	p := progress.New(
		progress.WithScaledGradient(gradientLow, gradientHigh),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return UsageBar{progress: p}
}

// Update handles progress bar animation messages.
func (u UsageBar) Update(msg tea.Msg) (UsageBar, tea.Cmd) {
	model, cmd := u.progress.Update(msg)
	u.progress = model.(progress.Model)
	return u, cmd
}

// SetPercent animates the bar toward the given percentage (0-100).
func (u *UsageBar) SetPercent(percent int) tea.Cmd {
	return u.progress.SetPercent(float64(percent) / 100)
}

// SetWidth sets the progress bar width.
func (u *UsageBar) SetWidth(width int) {
	u.progress.Width = width
}

// View renders the bar with a label on the left and the percentage on the
// right, colored by how hot the window is.
func (u UsageBar) View(percent int, label string, width int) string {
	barWidth := width - 22
	if barWidth < 10 {
		barWidth = 10
	}
	u.progress.Width = barWidth

	bar := u.progress.ViewAs(float64(percent) / 100)

	percentStyle := styles.GetUtilizationStyle(float64(percent) / 100)
	percentStr := percentStyle.Width(5).Align(lipgloss.Right).Render(fmt.Sprintf("%d%%", percent))

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(14).
		Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// RenderGradientBar renders just the bar characters for a percentage.
func RenderGradientBar(percent int, width int) string {
	if width < 1 {
		return ""
	}

	filled := width * percent / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(gradientLow, gradientHigh, t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// SimpleUsageBar renders a static ASCII bar for contexts without a
// progress model, like the fallback view.
func SimpleUsageBar(percent int, label string, width int) string {
	labelWidth := len(label) + 1
	percentWidth := 5
	barWidth := width - labelWidth - percentWidth - 4
	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderGradientBar(percent, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	percentStr := styles.GetUtilizationStyle(float64(percent) / 100).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%d%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
