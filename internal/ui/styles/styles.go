// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Primary = lipgloss.Color("205") // Pink
	Accent  = lipgloss.Color("63")  // Purple
	Subtle  = lipgloss.Color("240") // Gray

	// Chart series: data volume and connected users.
	UsageColor = lipgloss.Color("208") // Orange
	UsersColor = lipgloss.Color("39")  // Blue

	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	Panel     = lipgloss.Color("235")
	Highlight = lipgloss.Color("236")

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")
)

// Layout.
var (
	DocStyle = lipgloss.NewStyle().Margin(1, 2).Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)

	SubTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Accent).MarginBottom(1)

	CardStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Subtle).Padding(1, 2).MarginBottom(1)

	CardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)

	// ToastStyle frames floating notifications.
	ToastStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Primary).Padding(0, 1).MarginBottom(1)
)

// Help.
var (
	HelpStyle = lipgloss.NewStyle().Foreground(TextMuted)

	HelpKeyStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	HelpPanelStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(Primary).Padding(1, 3).Background(Panel)
)

// Run progress.
var (
	ProgressBarStyle = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

	ProgressLabelStyle = lipgloss.NewStyle().Foreground(TextSecondary).Width(20)

	ProgressPercentStyle = lipgloss.NewStyle().Foreground(TextPrimary).Width(6).Align(lipgloss.Right)
)

// Tables.
var (
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(Subtle)

	TableSelectedStyle = lipgloss.NewStyle().Background(Highlight).Foreground(TextPrimary).Bold(true)
)

// Fetch outcomes, one per OutcomeKind tag.
var (
	OutcomeSuccessStyle = lipgloss.NewStyle().Foreground(Success)
	OutcomeEmptyStyle   = lipgloss.NewStyle().Foreground(Warning)
	OutcomeErrorStyle   = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// Status text.
var (
	ErrorTextStyle   = lipgloss.NewStyle().Foreground(Error)
	SuccessTextStyle = lipgloss.NewStyle().Foreground(Success)
	WarningTextStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoTextStyle    = lipgloss.NewStyle().Foreground(Info)
)

// Metric cards.
var (
	MetricCardStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Accent).Padding(0, 2).MarginRight(1)

	MetricValueStyle = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)

	MetricLabelStyle = lipgloss.NewStyle().Foreground(TextSecondary)
)

// OutcomeStyle returns the style for an outcome tag ("SUCCESS", "EMPTY", "ERROR").
func OutcomeStyle(tag string) lipgloss.Style {
	switch tag {
	case "SUCCESS":
		return OutcomeSuccessStyle
	case "EMPTY":
		return OutcomeEmptyStyle
	default:
		return OutcomeErrorStyle
	}
}

// RankStyle highlights the leading rows of a ranking.
func RankStyle(rank int) lipgloss.Style {
	switch {
	case rank <= 3:
		return lipgloss.NewStyle().Foreground(Primary).Bold(true)
	case rank <= 10:
		return lipgloss.NewStyle().Foreground(TextPrimary)
	default:
		return lipgloss.NewStyle().Foreground(TextSecondary)
	}
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
