package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/venue-usage-tui/internal/ui/styles"
)

// RunBar renders how many locations of a bulk run have resolved.
type RunBar struct {
	progress progress.Model
	label    string
	done     int
	total    int
}

// NewRunBar creates a run bar of the given width.
func NewRunBar(width int) RunBar {
	return RunBar{
		progress: progress.New(
			progress.WithScaledGradient("#7D56F4", "#51cf66"),
			progress.WithWidth(max(width, 10)),
			progress.WithoutPercentage(),
		),
	}
}

// SetWidth resizes the bar.
func (r *RunBar) SetWidth(width int) {
	r.progress.Width = max(width, 10)
}

// SetLabel sets the text shown before the bar.
func (r *RunBar) SetLabel(label string) {
	r.label = label
}

// Set records progress. Counts never move backwards within a run.
func (r *RunBar) Set(done, total int) {
	if total != r.total {
		r.total = total
		r.done = 0
	}
	r.done = min(max(r.done, done), total)
}

// Reset clears the bar for a new run.
func (r *RunBar) Reset(total int) {
	r.done = 0
	r.total = total
}

// Done returns the number of resolved locations.
func (r RunBar) Done() int { return r.done }

// Total returns the run size.
func (r RunBar) Total() int { return r.total }

// Percent returns completion in [0, 1]. An empty run counts as complete.
func (r RunBar) Percent() float64 {
	if r.total <= 0 {
		return 1
	}
	return float64(r.done) / float64(r.total)
}

// View renders label, bar and counter on one line.
func (r RunBar) View() string {
	counter := styles.ProgressPercentStyle.Width(0).Render(
		fmt.Sprintf("%d/%d (%.0f%%)", r.done, r.total, r.Percent()*100))

	parts := []string{}
	if r.label != "" {
		parts = append(parts, styles.ProgressLabelStyle.Render(r.label))
	}
	parts = append(parts, styles.ProgressBarStyle.Render(r.progress.ViewAs(r.Percent())), counter)
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}
