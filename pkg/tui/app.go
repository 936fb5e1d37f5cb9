package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pluqqy/crux-terminal/pkg/models"
	"github.com/pluqqy/crux-terminal/pkg/session"
)

type sessionState int

const (
	componentsView sessionState = iota
	daemonView
	editorView
)

var viewTitles = map[sessionState]string{
	componentsView: "components",
	daemonView:     "daemon",
	editorView:     "pipeline",
}

// StatusMsg sets the status bar text
type StatusMsg string

// SwitchViewMsg switches the active view
type SwitchViewMsg struct {
	view sessionState
}

// refreshedMsg reports the end of a daemon and component refresh
type refreshedMsg struct {
	err error
}

// App is the root model. It owns one session and routes messages to the
// active view.
type App struct {
	state      sessionState
	session    *session.Session
	mirror     *stateMirror
	components *ComponentsModel
	daemon     *DaemonModel
	editor     *EditorModel
	width      int
	height     int
	statusMsg  string
}

// NewApp creates the app around s. The mirror is subscribed before anything
// can change the session.
func NewApp(s *session.Session, settings *models.Settings) *App {
	if settings == nil {
		settings = models.DefaultSettings()
	}

	mirror := newStateMirror()
	s.OnStateChange(mirror.handle)

	return &App{
		state:      componentsView,
		session:    s,
		mirror:     mirror,
		components: NewComponentsModel(s, mirror, settings.UI),
		daemon:     NewDaemonModel(s, mirror, settings.Daemon.Address),
		editor:     NewEditorModel(s, mirror),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.components.Init(), refreshCmd(a.session))
}

// refreshCmd fetches the daemon address and the components in the background
func refreshCmd(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: s.Refresh(context.Background())}
	}
}

// capturing reports whether the active view is reading text or a
// confirmation, in which case global keys are passed through.
func (a *App) capturing() bool {
	switch a.state {
	case componentsView:
		return a.components.Capturing()
	case daemonView:
		return a.daemon.Capturing()
	case editorView:
		return a.editor.Capturing()
	}
	return false
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.components.SetSize(msg.Width, msg.Height-2)
		a.daemon.SetSize(msg.Width, msg.Height-2)
		a.editor.SetSize(msg.Width, msg.Height-2)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if !a.capturing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				return a.Update(SwitchViewMsg{view: componentsView})
			case "2":
				return a.Update(SwitchViewMsg{view: daemonView})
			case "3":
				return a.Update(SwitchViewMsg{view: editorView})
			}
		}

	case StatusMsg:
		a.statusMsg = string(msg)
		return a, nil

	case SwitchViewMsg:
		a.state = msg.view
		a.statusMsg = ""
		return a, nil

	case refreshedMsg:
		a.components.SetBusy(false)
		if msg.err != nil {
			a.statusMsg = "✗ Refresh failed: " + msg.err.Error()
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.state {
	case componentsView:
		cmd = a.components.Update(msg)
	case daemonView:
		cmd = a.daemon.Update(msg)
	case editorView:
		cmd = a.editor.Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	var content string
	switch a.state {
	case componentsView:
		content = a.components.View()
	case daemonView:
		content = a.daemon.View()
	case editorView:
		content = a.editor.View()
	default:
		content = "Unknown view"
	}

	header := renderHeader(a.width, viewTitles[a.state], a.mirror.Daemon())

	footer := HelpStyle.Render(" 1 components · 2 daemon · 3 pipeline · q quit")
	if a.statusMsg != "" {
		footer = StatusBarStyle.Render(a.statusMsg)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}
