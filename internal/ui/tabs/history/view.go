package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/ui/components"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}

	switch {
	case m.loading && len(m.runs) == 0:
		sections = append(sections, styles.HelpStyle.Render("Loading runs..."))
	case m.errorMsg != "":
		sections = append(sections, fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), m.errorMsg))
	case len(m.runs) == 0:
		sections = append(sections,
			styles.HelpStyle.Render("No runs recorded yet."),
			styles.HelpStyle.Render("Exports and summaries appear here once they finish."),
		)
	default:
		sections = append(sections, m.table.View())
		if m.detail != nil {
			sections = append(sections, "", m.viewport.View())
		}
	}

	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	project := m.state.ProjectName()
	if project == "" {
		project = "no project"
	}
	title := styles.TitleStyle.Render("Run history")
	sub := fmt.Sprintf("%s · last %d runs", project, runLimit)
	if !m.lastRefresh.IsZero() {
		sub += " · updated " + m.lastRefresh.Format("15:04:05")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(sub))
}

func (m *Model) renderDetail() string {
	run := m.detail
	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("%s run %s", run.Kind, run.ID)),
		styles.HelpStyle.Render(fmt.Sprintf("%s · %d locations · %s mode", run.Range, run.Total, run.Mode)),
		"",
	}

	if len(run.SummaryRows) > 0 {
		totals := make([]float64, len(run.SummaryRows))
		for i, row := range run.SummaryRows {
			totals[i] = row.TotalUsageGB
		}
		rows = append(rows,
			"Usage by rank "+lipgloss.NewStyle().Foreground(styles.UsageColor).
				Render(components.RenderSparkline(totals, max(m.viewport.Width-20, 10))),
			components.RenderTopBarChart(topRows(run.SummaryRows, 5), max(m.viewport.Width-4, 40)),
			"",
		)
	}

	if len(run.Errors) == 0 {
		rows = append(rows, styles.SuccessTextStyle.Render("Every location returned data"))
	} else {
		rows = append(rows, styles.SubTitleStyle.Render(fmt.Sprintf("%d locations without data", len(run.Errors))))
		for _, e := range run.Errors {
			rows = append(rows, styles.OutcomeStyle(e.Kind.String()).Render(e.Line()))
		}
	}

	return strings.Join(rows, "\n")
}

func topRows(rows []models.SummaryRow, n int) []models.SummaryRow {
	return models.SummaryReport{Rows: rows}.Top(n)
}
