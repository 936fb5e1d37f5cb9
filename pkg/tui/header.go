package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top line: the view title on the left and the
// connected daemon on the right.
func renderHeader(width int, title, daemon string) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	daemonText := "no daemon"
	daemonStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))
	if daemon != "" {
		daemonText = "daemon " + daemon
		daemonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	}

	left := titleStyle.Render("crux · " + title)
	right := daemonStyle.Render(daemonText)

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return ContentPaddingStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), right),
	)
}
