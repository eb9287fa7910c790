package export

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/venue-usage-tui/internal/pipeline"
	"github.com/j-veylop/venue-usage-tui/internal/services"
	"github.com/j-veylop/venue-usage-tui/internal/ui/components"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

// View renders the export tab.
func (m *Model) View() string {
	sections := []string{
		m.renderHeader(),
		m.bar.View(),
		m.renderCounts(),
		"",
		m.log.View(),
		"",
		m.renderResult(),
	}
	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	project := m.state.ProjectName()
	if project == "" {
		project = "no project"
	}
	count := 0
	if r, ok := m.state.Roster(project); ok {
		count = r.Len()
	}
	title := styles.TitleStyle.Render("Chart export")
	sub := styles.HelpStyle.Render(fmt.Sprintf("%s · %d locations · %s · %s mode",
		project, count, m.state.Range(), m.state.Mode()))
	return lipgloss.JoinVertical(lipgloss.Left, title, sub)
}

func (m *Model) renderCounts() string {
	c := m.counts
	parts := fmt.Sprintf("%s %d   %s %d   %s %d",
		styles.OutcomeSuccessStyle.Render("ok"), c.Success,
		styles.OutcomeEmptyStyle.Render("empty"), c.Empty,
		styles.OutcomeErrorStyle.Render("failed"), c.Failed,
	)
	if m.running {
		parts += styles.HelpStyle.Render("   " + services.Elapsed(time.Since(m.startedAt)))
	}
	return parts
}

func (m *Model) renderResult() string {
	switch {
	case m.running:
		return styles.HelpStyle.Render("Exporting... esc cancels the locations not yet dispatched")
	case m.err != nil:
		return styles.ErrorTextStyle.Render("Export failed: " + m.err.Error())
	case m.result == nil:
		return styles.HelpStyle.Render("Press enter to export a chart for every location")
	}

	run := m.result.Run
	status := styles.SuccessTextStyle.Render("Archive written")
	if run.Cancelled {
		status = styles.WarningTextStyle.Render("Cancelled, partial archive written")
	}

	lines := []string{
		status,
		styles.InfoTextStyle.Render(m.result.Path),
		styles.HelpStyle.Render(fmt.Sprintf("%d charts · %d locations · %s",
			run.Counts.Success, run.Total, services.Elapsed(run.Duration()))),
	}
	if n := len(run.Errors); n > 0 {
		lines = append(lines, styles.WarningTextStyle.Render(
			fmt.Sprintf("%d locations without a chart, see %s", n, pipeline.ManifestName)))
	}
	return components.MetricCard("Result", lipgloss.JoinVertical(lipgloss.Left, lines...))
}
