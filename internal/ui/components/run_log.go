package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

// RunLog is a scrollable list of per-location outcomes in completion order.
type RunLog struct {
	viewport viewport.Model
	lines    []string
	follow   bool
}

// NewRunLog creates an empty log that follows new entries.
func NewRunLog(width, height int) RunLog {
	return RunLog{viewport: viewport.New(width, height), follow: true}
}

// SetSize resizes the log.
func (l *RunLog) SetSize(width, height int) {
	l.viewport.Width = max(width, 10)
	l.viewport.Height = max(height, 1)
	l.refresh()
}

// Reset clears the log.
func (l *RunLog) Reset() {
	l.lines = nil
	l.follow = true
	l.refresh()
}

// Append records one resolved location.
func (l *RunLog) Append(done, total int, loc models.Location, outcome models.FetchOutcome) {
	tag := outcome.Kind.String()
	width := len(fmt.Sprint(total))
	line := fmt.Sprintf("[%*d/%d] %s %s", width, done, total,
		styles.OutcomeStyle(tag).Render(fmt.Sprintf("%-7s", tag)), loc.String())
	if outcome.Reason != "" {
		line += styles.HelpStyle.Render(": " + outcome.Reason)
	}
	l.lines = append(l.lines, line)
	l.refresh()
}

// Len returns the number of entries.
func (l RunLog) Len() int { return len(l.lines) }

// Update scrolls the log. Scrolling up stops following new entries until the
// bottom is reached again.
func (l *RunLog) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	l.follow = l.viewport.AtBottom()
	return cmd
}

func (l *RunLog) refresh() {
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	if l.follow {
		l.viewport.GotoBottom()
	}
}

// View renders the visible part of the log.
func (l RunLog) View() string {
	if len(l.lines) == 0 {
		return styles.HelpStyle.Render("No locations resolved yet")
	}
	return l.viewport.View()
}

// MetricCard renders a small labelled value box.
func MetricCard(label, value string) string {
	return styles.MetricCardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.MetricLabelStyle.Render(label),
		styles.MetricValueStyle.Render(value),
	))
}
