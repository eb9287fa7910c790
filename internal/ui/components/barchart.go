package components

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

const barLabelWidth = 16

// RenderTopBarChart draws a horizontal bar per row, longest bar first, with
// a ranked value list underneath.
func RenderTopBarChart(rows []models.SummaryRow, width int) string {
	if len(rows) == 0 {
		return styles.HelpStyle.Render("No active locations")
	}

	width = max(width, minChartWidth+barLabelWidth)
	height := len(rows) * 2

	barStyle := lipgloss.NewStyle().Foreground(styles.UsageColor).Background(styles.UsageColor)
	bc := barchart.New(width, height,
		barchart.WithHorizontalBars(),
		barchart.WithBarWidth(1),
		barchart.WithBarGap(1),
		barchart.WithStyles(
			lipgloss.NewStyle().Foreground(styles.Subtle),
			lipgloss.NewStyle().Foreground(styles.TextSecondary),
		),
	)

	for _, row := range rows {
		bc.Push(barchart.BarData{
			Label: ansi.Truncate(row.DisplayName, barLabelWidth, "…"),
			Values: []barchart.BarValue{
				{Name: row.LocationID, Value: row.TotalUsageGB, Style: barStyle},
			},
		})
	}
	bc.Draw()

	var list strings.Builder
	for i, row := range rows {
		line := fmt.Sprintf("%2d. %-*s %10.2f GB", i+1, barLabelWidth,
			ansi.Truncate(row.DisplayName, barLabelWidth, "…"), row.TotalUsageGB)
		list.WriteString(styles.RankStyle(i + 1).Render(line))
		if i < len(rows)-1 {
			list.WriteString("\n")
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, bc.View(), "", list.String())
}
