package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/brucechou1983/claude-code-usage/internal/ui/styles"
)

// RenderTrendChart plots session and weekly utilization (in percent) for
// the readings collected this run.
func RenderTrendChart(session, weekly []float64, width, height int, caption string) string {
	if len(session) == 0 && len(weekly) == 0 {
		return styles.HelpStyle.Render("No data yet")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	// Normalize lengths - pad shorter series with zeros
	maxLen := len(session)
	if len(weekly) > maxLen {
		maxLen = len(weekly)
	}

	sessionData := make([]float64, maxLen)
	weeklyData := make([]float64, maxLen)
	copy(sessionData, session)
	copy(weeklyData, weekly)

	graph := asciigraph.PlotMany([][]float64{sessionData, weeklyData},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(
			asciigraph.Red,
			asciigraph.Blue,
		),
	)

	return graph
}

// RenderSparkline creates a compact inline sparkline, colored by how hot
// each reading was.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		idx := int(float64(i) * step)
		val := values[idx]
		if val < 0 {
			val = 0
		}
		if val > 1 {
			val = 1
		}

		normalized := int(val * float64(len(sparkChars)-1))
		style := styles.GetUtilizationStyle(val)
		result.WriteString(style.Render(string(sparkChars[normalized])))
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
