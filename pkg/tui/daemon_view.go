package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pluqqy/crux-terminal/pkg/session"
)

type daemonConnectedMsg struct {
	address string
	err     error
}

// DaemonModel is the daemon connection form
type DaemonModel struct {
	session *session.Session
	mirror  *stateMirror

	input      textinput.Model
	connecting bool
	spinner    spinner.Model
	lastErr    error

	width  int
	height int
}

// NewDaemonModel creates the form, prefilled with the configured address
func NewDaemonModel(s *session.Session, mirror *stateMirror, defaultAddr string) *DaemonModel {
	input := textinput.New()
	input.Placeholder = "tcp://localhost:30020"
	input.CharLimit = 256
	input.SetValue(defaultAddr)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &DaemonModel{
		session: s,
		mirror:  mirror,
		input:   input,
		spinner: sp,
	}
}

// SetSize sets the area the view may draw in
func (m *DaemonModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 12
}

// Capturing reports whether the address input has focus
func (m *DaemonModel) Capturing() bool {
	return m.input.Focused()
}

func (m *DaemonModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.connecting {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case daemonConnectedMsg:
		m.connecting = false
		m.lastErr = msg.err
		if msg.err != nil {
			return statusCmd("✗ Failed to connect to %s: %v", msg.address, msg.err)
		}
		return tea.Batch(statusCmd("✓ Connected to %s", msg.address), refreshCmd(m.session))

	case tea.KeyMsg:
		if !m.input.Focused() {
			switch msg.String() {
			case "e", "i":
				return m.input.Focus()
			case "enter":
				return m.connect()
			}
			return nil
		}

		switch msg.Type {
		case tea.KeyEsc:
			m.input.Blur()
			return nil
		case tea.KeyEnter:
			m.input.Blur()
			return m.connect()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}
	return nil
}

func (m *DaemonModel) connect() tea.Cmd {
	addr := strings.TrimSpace(m.input.Value())
	if addr == "" || m.connecting {
		return nil
	}
	m.connecting = true
	return tea.Batch(connectDaemonCmd(m.session, addr), m.spinner.Tick)
}

// connectDaemonCmd connects and then refetches the daemon address so the
// header reflects what the server actually reports.
func connectDaemonCmd(s *session.Session, addr string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := s.ConnectDaemon(ctx, addr); err != nil {
			return daemonConnectedMsg{address: addr, err: err}
		}
		_, err := s.GetDaemon(ctx)
		return daemonConnectedMsg{address: addr, err: err}
	}
}

func (m *DaemonModel) View() string {
	var b strings.Builder

	b.WriteString(GetActiveHeaderStyle(true).Render("Daemon"))
	b.WriteString("\n\n")

	current := m.mirror.Daemon()
	if current == "" {
		b.WriteString(EmptyStyle.Render("Not connected"))
	} else {
		b.WriteString(SuccessStyle.Render("Connected to " + current))
	}
	b.WriteString("\n\n")

	label := "Address: "
	if m.connecting {
		label = m.spinner.View() + " " + label
	}
	b.WriteString(paneStyle(m.input.Focused()).Padding(0, 1).Render(label + m.input.View()))

	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(m.lastErr.Error()))
	}

	help := HelpStyle.Render("e edit · enter connect · esc stop editing")
	return ContentPaddingStyle.Render(lipgloss.JoinVertical(lipgloss.Left, b.String(), help))
}
