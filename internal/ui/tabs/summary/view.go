package summary

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/venue-usage-tui/internal/services"
	"github.com/j-veylop/venue-usage-tui/internal/ui/components"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

// View renders the summary tab.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}

	switch {
	case m.running:
		sections = append(sections, m.bar.View(), m.renderCounts())
	case m.err != nil:
		sections = append(sections, styles.ErrorTextStyle.Render("Summary failed: "+m.err.Error()))
	case m.result == nil:
		sections = append(sections, styles.HelpStyle.Render("Press enter to rank every location by total usage"))
	default:
		sections = append(sections, m.renderReport())
	}

	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	project := m.state.ProjectName()
	if project == "" {
		project = "no project"
	}
	title := styles.TitleStyle.Render("Usage summary")
	sub := styles.HelpStyle.Render(fmt.Sprintf("%s · %s · %s mode", project, m.state.Range(), m.state.Mode()))
	return lipgloss.JoinVertical(lipgloss.Left, title, sub)
}

func (m *Model) renderCounts() string {
	c := m.counts
	return fmt.Sprintf("%s %d   %s %d   %s %d",
		styles.OutcomeSuccessStyle.Render("active"), c.Success,
		styles.OutcomeEmptyStyle.Render("empty"), c.Empty,
		styles.OutcomeErrorStyle.Render("failed"), c.Failed,
	)
}

func (m *Model) renderReport() string {
	report := m.result.Report
	run := m.result.Run

	cards := []string{
		components.MetricCard("Active locations", fmt.Sprintf("%d / %d", report.Active, report.Total)),
		components.MetricCard("Grand total", fmt.Sprintf("%.2f GB", report.GrandTotalGB())),
	}
	if run != nil {
		cards = append(cards,
			components.MetricCard("Failed", fmt.Sprintf("%d", run.Counts.Failed)),
			components.MetricCard("Took", services.Elapsed(run.Duration())),
		)
	}

	parts := []string{lipgloss.JoinHorizontal(lipgloss.Top, cards...)}
	if run != nil && run.Cancelled {
		parts = append(parts, styles.WarningTextStyle.Render("Cancelled, ranking covers the locations that finished"))
	}

	if m.showTable {
		parts = append(parts, styles.SubTitleStyle.Render("All locations"), m.table.View())
	} else {
		parts = append(parts,
			styles.SubTitleStyle.Render(fmt.Sprintf("Top %d by total usage", topN)),
			components.RenderTopBarChart(report.Top(topN), max(m.width-10, 40)),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
