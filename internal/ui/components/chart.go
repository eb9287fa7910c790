// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

const (
	minChartWidth  = 20
	minChartHeight = 3
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string, color asciigraph.AnsiColor) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, minChartWidth)
	height = max(height, minChartHeight)

	// asciigraph needs two points to draw a line.
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(color),
	)
}

// RenderUsageChart stacks the daily usage (GB) chart above the daily
// connected-users chart. The two series have unrelated scales, so each gets
// its own axis.
func RenderUsageChart(series models.UsageSeries, width, height int) string {
	if len(series) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	panel := max((height-2)/2, minChartHeight)
	first := series[0].Date.Format(models.DisplayDateLayout)
	last := series[len(series)-1].Date.Format(models.DisplayDateLayout)
	span := fmt.Sprintf("%s - %s", first, last)

	usage := RenderLineChart(series.Gigabytes(), width, panel, "Usage (GB) "+span, asciigraph.DarkOrange)
	users := RenderLineChart(series.Users(), width, panel, "Connected users "+span, asciigraph.DodgerBlue)

	legend := RenderLegend([]LegendItem{
		{Label: "Usage (GB)", Color: styles.UsageColor},
		{Label: "Connected users", Color: styles.UsersColor},
	})

	return lipgloss.JoinVertical(lipgloss.Left, usage, "", users, "", legend)
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}
