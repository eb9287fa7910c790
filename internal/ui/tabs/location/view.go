package location

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/pipeline"
	"github.com/j-veylop/venue-usage-tui/internal/ui/components"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

// View renders the location tab.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}

	if m.filter.Focused() || m.filter.Value() != "" {
		sections = append(sections, m.filter.View())
	}

	if len(m.visible) == 0 {
		sections = append(sections, m.renderEmptyRoster())
	} else {
		sections = append(sections, m.table.View())
	}

	sections = append(sections, "", m.renderResult())

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
	title := styles.TitleStyle.Render("Location check")
	sub := styles.HelpStyle.Render(fmt.Sprintf("%s · %d locations · %s", project, count, m.state.Range()))
	return lipgloss.JoinVertical(lipgloss.Left, title, sub)
}

func (m *Model) renderEmptyRoster() string {
	if m.state.IsLoading("roster") {
		return styles.HelpStyle.Render("Loading roster...")
	}
	if m.filter.Value() != "" {
		return styles.HelpStyle.Render("No locations match the filter")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.HelpStyle.Render("No roster imported for this project"),
		styles.InfoTextStyle.Render("  ╰─▶ vud roster import --project <name> <file.xlsx|file.csv>"),
	)
}

func (m *Model) renderResult() string {
	if m.checking {
		return m.spinner.View()
	}
	if m.result == nil {
		return styles.HelpStyle.Render("Select a location and press enter")
	}

	r := m.result
	title := styles.SubTitleStyle.Render(pipeline.ChartTitle(r.Location, m.state.Range()))

	if r.Err != nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, styles.ErrorTextStyle.Render(r.Err.Error()))
	}

	tag := styles.OutcomeStyle(r.Outcome.Kind.String()).Render(r.Outcome.Kind.String())
	if !r.Outcome.IsSuccess() {
		return lipgloss.JoinVertical(lipgloss.Left, title, tag+" "+r.Outcome.Reason)
	}

	series := r.Outcome.Series
	chartHeight := max(m.height-tableHeight-14, 8)
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		renderMetrics(series),
		components.RenderUsageChart(series, max(m.width-16, 40), chartHeight),
	)
}

func renderMetrics(series models.UsageSeries) string {
	cards := []string{
		components.MetricCard("Total usage", fmt.Sprintf("%.2f GB", series.TotalGigabytes())),
		components.MetricCard("Daily average", fmt.Sprintf("%.2f GB", series.AverageGigabytes())),
		components.MetricCard("Peak users", fmt.Sprintf("%d", series.MaxConnectedUsers())),
		components.MetricCard("Days", fmt.Sprintf("%d", len(series))),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}
