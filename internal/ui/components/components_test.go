package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.label != "Loading" {
		t.Error("Spinner label mismatch")
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Init")

	s.SetLabel("Loading")

	if s.View() == "" {
		t.Error("View returned empty")
	}
	if s.ViewWithLabel() == "" {
		t.Error("ViewWithLabel returned empty")
	}
	if s.Init() == nil {
		t.Error("Init should return command")
	}

	_, cmd := s.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Update should return command for tick")
	}

	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
}

func TestSimpleUsageBar(t *testing.T) {
	s := SimpleUsageBar(45, "Session (5h)", 50)
	if s == "" {
		t.Error("SimpleUsageBar returned empty")
	}
	if !strings.Contains(s, "45%") {
		t.Errorf("bar should show the percentage: %q", s)
	}
	if !strings.Contains(s, "Session (5h)") {
		t.Errorf("bar should show the label: %q", s)
	}
}

func TestRenderGradientBar(t *testing.T) {
	if got := RenderGradientBar(50, 0); got != "" {
		t.Error("zero width should render nothing")
	}

	full := RenderGradientBar(100, 10)
	if strings.Contains(full, "░") {
		t.Error("full bar should have no empty cells")
	}

	empty := RenderGradientBar(0, 10)
	if strings.Contains(empty, "█") {
		t.Error("empty bar should have no filled cells")
	}
}

func TestUsageBarView(t *testing.T) {
	bar := NewUsageBar(30)
	view := bar.View(85, "Weekly (7d)", 60)
	if view == "" {
		t.Error("View returned empty")
	}
	if !strings.Contains(view, "85%") {
		t.Errorf("view should show the percentage: %q", view)
	}
}

func TestRenderTrendChart(t *testing.T) {
	session := []float64{10, 20, 45}
	weekly := []float64{80, 82, 85}
	s := RenderTrendChart(session, weekly, 30, 5, "utilization %")
	if s == "" {
		t.Error("RenderTrendChart returned empty")
	}

	if got := RenderTrendChart(nil, nil, 30, 5, ""); !strings.Contains(got, "No data yet") {
		t.Errorf("empty chart = %q, want placeholder", got)
	}
}

func TestRenderTrendChartUnevenSeries(t *testing.T) {
	// Shorter series is zero padded, not dropped.
	s := RenderTrendChart([]float64{1}, []float64{1, 2, 3}, 30, 4, "")
	if s == "" {
		t.Error("RenderTrendChart returned empty for uneven series")
	}
}

func TestRenderSparkline(t *testing.T) {
	data := []float64{0.1, 0.5, 0.9}
	s := RenderSparkline(data, 10)
	if s == "" {
		t.Error("RenderSparkline returned empty")
	}
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty input should render nothing")
	}
}

func TestRenderSparklineClampsRange(t *testing.T) {
	// Out-of-range readings must not index outside the glyph table.
	s := RenderSparkline([]float64{-0.5, 1.5}, 2)
	if s == "" {
		t.Error("RenderSparkline returned empty")
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "Session", Color: lipgloss.Color("#ff6b6b")},
		{Label: "Weekly", Color: lipgloss.Color("#4285f4")},
	}
	s := RenderLegend(items)
	if !strings.Contains(s, "Session") || !strings.Contains(s, "Weekly") {
		t.Errorf("legend missing labels: %q", s)
	}
}

func TestInterpolateColor(t *testing.T) {
	if got := interpolateColor("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("t=0 should return the from color, got %s", got)
	}
	if got := interpolateColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("t=1 should return the to color, got %s", got)
	}
}
