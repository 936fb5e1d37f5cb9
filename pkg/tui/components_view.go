package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pluqqy/crux-terminal/pkg/models"
	"github.com/pluqqy/crux-terminal/pkg/search"
	"github.com/pluqqy/crux-terminal/pkg/session"
)

type componentFetchedMsg struct {
	address string
	desc    models.Descriptor
	err     error
}

type componentLoadedMsg struct {
	path    string
	address string
	err     error
}

// ComponentsModel lists the loaded components and shows one in detail
type ComponentsModel struct {
	session *session.Session
	mirror  *stateMirror
	ui      models.UISettings

	cursor     int
	detail     *models.Descriptor
	detailAddr string

	loading   bool
	loadInput textinput.Model

	filtering   bool
	filterInput textinput.Model
	filterErr   error

	busy    bool
	spinner spinner.Model

	width  int
	height int
}

// NewComponentsModel creates the components view
func NewComponentsModel(s *session.Session, mirror *stateMirror, ui models.UISettings) *ComponentsModel {
	input := textinput.New()
	input.Placeholder = "path/to/component"
	input.CharLimit = 256

	filter := textinput.New()
	filter.Placeholder = "name:filter OR author:crux"
	filter.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &ComponentsModel{
		session:     s,
		mirror:      mirror,
		ui:          ui,
		loadInput:   input,
		filterInput: filter,
		busy:        true,
		spinner:     sp,
	}
}

func (m *ComponentsModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetSize sets the area the view may draw in
func (m *ComponentsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.loadInput.Width = width - 8
	m.filterInput.Width = width - 8
}

// SetBusy toggles the refresh spinner
func (m *ComponentsModel) SetBusy(busy bool) {
	m.busy = busy
}

// Capturing reports whether keys go to the load path or filter input
func (m *ComponentsModel) Capturing() bool {
	return m.loading || m.filtering
}

// addresses returns the sorted addresses that pass the current filter. An
// invalid filter shows everything.
func (m *ComponentsModel) addresses() []string {
	components := m.mirror.Components()

	addrs, err := search.Filter(components, m.filterInput.Value())
	m.filterErr = err
	if err == nil {
		return addrs
	}

	addrs = make([]string, 0, len(components))
	for addr := range components {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

func (m *ComponentsModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case componentFetchedMsg:
		if msg.err != nil {
			return statusCmd("✗ Failed to get %s: %v", msg.address, msg.err)
		}
		desc := msg.desc
		m.detail = &desc
		m.detailAddr = msg.address
		return nil

	case componentLoadedMsg:
		if msg.err != nil {
			return statusCmd("✗ Failed to load %s: %v", msg.path, msg.err)
		}
		m.busy = true
		return tea.Batch(
			statusCmd("✓ Loaded %s at %s", msg.path, msg.address),
			refreshCmd(m.session),
			m.spinner.Tick,
		)

	case tea.KeyMsg:
		if m.loading {
			return m.handleLoadInput(msg)
		}
		if m.filtering {
			return m.handleFilterInput(msg)
		}
		return m.handleKey(msg)
	}
	return nil
}

func (m *ComponentsModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	addrs := m.addresses()

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(addrs)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(addrs) {
			return fetchComponentCmd(m.session, addrs[m.cursor])
		}
	case "esc":
		if m.detail == nil {
			m.filterInput.SetValue("")
		}
		m.detail = nil
	case "/":
		m.filtering = true
		return m.filterInput.Focus()
	case "l":
		m.loading = true
		m.loadInput.SetValue("")
		return m.loadInput.Focus()
	case "r":
		m.busy = true
		return tea.Batch(refreshCmd(m.session), m.spinner.Tick)
	}
	return nil
}

func (m *ComponentsModel) handleLoadInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.loading = false
		m.loadInput.Blur()
		return nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.loadInput.Value())
		m.loading = false
		m.loadInput.Blur()
		if path == "" {
			return nil
		}
		return loadComponentCmd(m.session, path)
	}

	var cmd tea.Cmd
	m.loadInput, cmd = m.loadInput.Update(msg)
	return cmd
}

// handleFilterInput narrows the list as the query is typed
func (m *ComponentsModel) handleFilterInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterInput.SetValue("")
		fallthrough
	case tea.KeyEnter:
		m.filtering = false
		m.filterInput.Blur()
		m.cursor = 0
		return nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.cursor = 0
	return cmd
}

func fetchComponentCmd(s *session.Session, address string) tea.Cmd {
	return func() tea.Msg {
		desc, err := s.GetComponent(context.Background(), address)
		return componentFetchedMsg{address: address, desc: desc, err: err}
	}
}

func loadComponentCmd(s *session.Session, path string) tea.Cmd {
	return func() tea.Msg {
		addr, err := s.LoadComponent(context.Background(), path)
		return componentLoadedMsg{path: path, address: addr, err: err}
	}
}

func statusCmd(format string, args ...any) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg(fmt.Sprintf(format, args...))
	}
}

func (m *ComponentsModel) View() string {
	addrs := m.addresses()
	components := m.mirror.Components()

	var list strings.Builder
	title := fmt.Sprintf("Loaded components (%d)", len(addrs))
	if m.busy {
		title += " " + m.spinner.View()
	}
	list.WriteString(GetActiveHeaderStyle(true).Render(title))
	list.WriteString("\n\n")
	if len(addrs) == 0 {
		list.WriteString(EmptyStyle.Render("No components loaded. Press l to load one."))
	}
	for i, addr := range addrs {
		desc := components[addr]
		row := fmt.Sprintf("%-16s %-8s %s", desc.Name, desc.Version, addr)
		list.WriteString(renderRow(row, i == m.cursor, true))
		list.WriteString("\n")
	}

	sections := []string{list.String()}
	if m.detail != nil {
		sections = append(sections, m.detailView())
	}
	if m.loading {
		sections = append(sections, InputStyle.Render("Load component: "+m.loadInput.View()))
	}
	if m.filtering || m.filterInput.Value() != "" {
		line := InputStyle.Render("Filter: " + m.filterInput.View())
		if m.filterErr != nil {
			line += "\n" + ErrorStyle.Render(m.filterErr.Error())
		}
		sections = append(sections, line)
	}
	sections = append(sections, HelpStyle.Render("↑/↓ move · enter details · / filter · l load · r refresh · esc close"))

	return ContentPaddingStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *ComponentsModel) detailView() string {
	d := m.detail
	var b strings.Builder

	b.WriteString(GetActiveHeaderStyle(true).Render(fmt.Sprintf("%s %s", d.Name, d.Version)))
	b.WriteString(DescriptionStyle.Render("  " + m.detailAddr))
	b.WriteString("\n")
	if d.Author != "" {
		b.WriteString(NormalStyle.Render("by " + d.Author))
		b.WriteString("\n")
	}
	if m.ui.ShowDescriptions && d.Description != "" {
		b.WriteString(DescriptionStyle.Render(wordwrap.String(d.Description, m.ui.WrapWidth)))
		b.WriteString("\n")
	}

	writeFields := func(title string, fields map[string]models.Field) {
		b.WriteString("\n" + HeaderStyle.Render(title) + "\n")
		if len(fields) == 0 {
			b.WriteString(EmptyStyle.Render("  (none)") + "\n")
		}
		for _, name := range sortedKeys(fields) {
			b.WriteString(NormalStyle.Render(fmt.Sprintf("  %s (%s)", name, fields[name].Type)) + "\n")
		}
	}
	writeFields("Inputs", d.Inputs)
	writeFields("Outputs", d.Outputs)

	b.WriteString("\n" + HeaderStyle.Render("Parameters") + "\n")
	if len(d.Parameters) == 0 {
		b.WriteString(EmptyStyle.Render("  (none)") + "\n")
	}
	for _, key := range sortedKeys(d.Parameters) {
		p := d.Parameters[key]
		line := fmt.Sprintf("  %s (%s)", key, p.Type)
		if p.HasDefault() {
			line += fmt.Sprintf(" = %v", p.Default)
		}
		b.WriteString(NormalStyle.Render(line) + "\n")
		if m.ui.ShowDescriptions && p.Description != "" {
			b.WriteString(DescriptionStyle.Render(wordwrap.String("    "+p.Description, m.ui.WrapWidth)) + "\n")
		}
	}

	return InactiveBorderStyle.Padding(0, 1).Render(strings.TrimRight(b.String(), "\n"))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
