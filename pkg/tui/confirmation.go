package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmationModel asks a yes/no question before a destructive edit
type ConfirmationModel struct {
	active      bool
	message     string
	details     []string
	destructive bool
	onConfirm   func() tea.Cmd
	onCancel    func() tea.Cmd
}

// NewConfirmation creates an inactive confirmation
func NewConfirmation() *ConfirmationModel {
	return &ConfirmationModel{}
}

// Show activates the confirmation. Details are listed under the message.
func (m *ConfirmationModel) Show(message string, details []string, destructive bool, onConfirm, onCancel func() tea.Cmd) {
	m.active = true
	m.message = message
	m.details = details
	m.destructive = destructive
	m.onConfirm = onConfirm
	m.onCancel = onCancel
}

// Active returns whether the confirmation is currently shown
func (m *ConfirmationModel) Active() bool {
	return m.active
}

// Update handles key events while the confirmation is shown
func (m *ConfirmationModel) Update(msg tea.KeyMsg) tea.Cmd {
	if !m.active {
		return nil
	}

	switch msg.String() {
	case "y", "Y":
		m.active = false
		if m.onConfirm != nil {
			return m.onConfirm()
		}
	case "n", "N", "esc":
		m.active = false
		if m.onCancel != nil {
			return m.onCancel()
		}
	}
	return nil
}

// View renders the confirmation
func (m *ConfirmationModel) View() string {
	if !m.active {
		return ""
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)).
		Bold(true)
	if m.destructive {
		style = style.Foreground(lipgloss.Color(ColorDanger))
	}

	var b strings.Builder
	b.WriteString(style.Render(fmt.Sprintf("%s %s", m.message, formatConfirmOptions(m.destructive))))
	for _, detail := range m.details {
		b.WriteString("\n")
		b.WriteString(DescriptionStyle.Render("  • " + detail))
	}
	return b.String()
}

func formatConfirmOptions(destructive bool) string {
	yes := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	no := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDanger))
	if destructive {
		yes, no = no, yes
	}
	return yes.Render("[y]es") + " / " + no.Render("[n]o")
}
