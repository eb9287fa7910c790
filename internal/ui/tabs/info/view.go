package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
	"github.com/j-veylop/venue-usage-tui/internal/version"
)

const updatedLayout = "02/01/2006 15:04"

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderProjectsCard(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Projects, sessions and configuration")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

func (m *Model) renderProjectsCard() string {
	rows := []string{styles.CardTitleStyle.Render("Projects")}

	projects := m.state.Projects()
	if len(projects) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No projects configured"))
	}

	selected := m.state.ProjectName()
	nameStyle := lipgloss.NewStyle().Width(16).Foreground(styles.TextPrimary)
	cellStyle := lipgloss.NewStyle().Width(16).Foreground(styles.TextSecondary)

	for _, p := range projects {
		marker := "  "
		if p.Name == selected {
			marker = styles.HelpKeyStyle.Render("> ")
		}

		locations := "no roster"
		if n, ok := m.locations[p.Name]; ok && n > 0 {
			locations = fmt.Sprintf("%d locations", n)
		}

		session := lipgloss.NewStyle().Foreground(styles.Warning).Render("no session")
		if s, ok := m.state.Session(p.Name); ok {
			session = lipgloss.NewStyle().Foreground(styles.Success).
				Render(fmt.Sprintf("%s (%s, %s)", s.Masked(), s.Source, s.UpdatedAt.Local().Format(updatedLayout)))
		}

		rows = append(rows, marker+
			nameStyle.Render(p.Name)+
			cellStyle.Render("org "+p.OrgID)+
			cellStyle.Render(locations)+
			session)
	}

	rows = append(rows, "")
	if m.importing {
		rows = append(rows, styles.HelpStyle.Render("Reading browser cookies..."))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Press 'b' to copy the session cookie of the selected project from your browser"))
	}
	if m.err != nil {
		rows = append(rows, lipgloss.NewStyle().Foreground(styles.Error).Render("Roster store: "+m.err.Error()))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration")}

	if c := m.config; c != nil {
		rows = append(rows,
			renderRow("Database", c.DatabasePath),
			renderRow("Sessions file", c.SessionsPath),
			renderRow("Export folder", c.ExportDir),
			renderRow("Log file", c.LogFile),
			renderRow("Venue URL", c.BaseURL),
			renderRow("Workers", fmt.Sprintf("safe %d · turbo %d · summary %d",
				c.SafeWorkers, c.TurboWorkers, c.SummaryWorkers)),
			renderRow("Retries", fmt.Sprintf("%d attempts, %s apart, %s timeout",
				c.RetryAttempts, c.RetryDelay, c.FetchTimeout)),
		)
		if c.RequestsPerSecond > 0 {
			rows = append(rows, renderRow("Rate limit", fmt.Sprintf("%.1f req/s", c.RequestsPerSecond)))
		}
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(16).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About " + version.Name),
		renderRow("Version", version.GetVersion()),
		renderRow("Commit", version.GetCommit()),
		renderRow("Built", version.GetDate()),
		renderRow("Go", runtime.Version()),
		renderRow("Platform", runtime.GOOS+"/"+runtime.GOARCH),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
