package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pluqqy/crux-terminal/pkg/models"
	"github.com/pluqqy/crux-terminal/pkg/session"
)

type pane int

const (
	candidatesPane pane = iota
	dependenciesPane
	stepsPane
	stepPane
	paneCount
)

type editMode int

const (
	editNone editMode = iota
	editParameter
	editRemap
)

// stepRow is one line of the step detail pane: a parameter or a remap entry
type stepRow struct {
	param bool
	key   string
}

// clipboardWrite is swapped out in tests
var clipboardWrite = clipboard.WriteAll

// EditorModel edits the session's pipeline: declared dependencies, the
// ordered steps, and the parameters and remap of the selected step.
type EditorModel struct {
	session *session.Session
	mirror  *stateMirror
	confirm *ConfirmationModel

	focus   pane
	cursors [paneCount]int

	mode    editMode
	editKey string
	input   textinput.Model

	width  int
	height int
}

// NewEditorModel creates the pipeline editor
func NewEditorModel(s *session.Session, mirror *stateMirror) *EditorModel {
	input := textinput.New()
	input.CharLimit = 512

	return &EditorModel{
		session: s,
		mirror:  mirror,
		confirm: NewConfirmation(),
		input:   input,
	}
}

// SetSize sets the area the view may draw in
func (m *EditorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 20
}

// Capturing reports whether keys go to an input or a confirmation
func (m *EditorModel) Capturing() bool {
	return m.mode != editNone || m.confirm.Active()
}

func (m *EditorModel) candidates() []string {
	return m.session.Pipeline().DependencyCandidates()
}

func dependencyNames(p models.Pipeline) []string {
	names := make([]string, 0, len(p.Components))
	for name := range p.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stepRows(step models.Step) []stepRow {
	rows := make([]stepRow, 0, len(step.Parameters)+len(step.Remap))
	for _, key := range sortedKeys(step.Parameters) {
		rows = append(rows, stepRow{param: true, key: key})
	}
	for _, src := range sortedKeys(step.Remap) {
		rows = append(rows, stepRow{key: src})
	}
	return rows
}

// paneLen returns the number of rows in a pane for pipeline p
func (m *EditorModel) paneLen(pn pane, p models.Pipeline) int {
	switch pn {
	case candidatesPane:
		return len(m.candidates())
	case dependenciesPane:
		return len(p.Components)
	case stepsPane:
		return p.Len()
	case stepPane:
		if i := m.cursors[stepsPane]; p.InRange(i) {
			return len(stepRows(p.Pipeline[i]))
		}
	}
	return 0
}

func (m *EditorModel) clampCursors(p models.Pipeline) {
	for pn := pane(0); pn < paneCount; pn++ {
		n := m.paneLen(pn, p)
		if m.cursors[pn] >= n {
			m.cursors[pn] = n - 1
		}
		if m.cursors[pn] < 0 {
			m.cursors[pn] = 0
		}
	}
}

func (m *EditorModel) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if m.confirm.Active() {
		return m.confirm.Update(key)
	}
	if m.mode != editNone {
		return m.handleInput(key)
	}

	p := m.session.Pipeline().Snapshot()
	var cmd tea.Cmd

	switch key.String() {
	case "tab":
		m.focus = (m.focus + 1) % paneCount
	case "shift+tab":
		m.focus = (m.focus + paneCount - 1) % paneCount
	case "up", "k":
		m.cursors[m.focus]--
	case "down", "j":
		m.cursors[m.focus]++
	case "ctrl+s", "s":
		cmd = m.copySaved()
	default:
		switch m.focus {
		case candidatesPane:
			cmd = m.handleCandidates(key)
		case dependenciesPane:
			cmd = m.handleDependencies(key, p)
		case stepsPane:
			cmd = m.handleSteps(key, p)
		case stepPane:
			cmd = m.handleStep(key, p)
		}
	}

	m.clampCursors(m.session.Pipeline().Snapshot())
	return cmd
}

func (m *EditorModel) handleCandidates(key tea.KeyMsg) tea.Cmd {
	names := m.candidates()
	i := m.cursors[candidatesPane]
	if i < 0 || i >= len(names) {
		return nil
	}
	name := names[i]

	switch key.String() {
	case "enter", "a":
		if err := m.session.Pipeline().AddStep(name); err != nil {
			return statusCmd("✗ %v", err)
		}
		m.cursors[stepsPane] = m.session.Pipeline().Snapshot().Len() - 1
		return statusCmd("✓ Added step %s", name)
	case "d":
		m.session.Pipeline().AddDependency(name, "", "")
		return statusCmd("✓ Declared dependency %s", name)
	}
	return nil
}

func (m *EditorModel) handleDependencies(key tea.KeyMsg, p models.Pipeline) tea.Cmd {
	names := dependencyNames(p)
	i := m.cursors[dependenciesPane]
	if i < 0 || i >= len(names) || (key.String() != "x" && key.String() != "delete") {
		return nil
	}
	name := names[i]

	var uses int
	for _, step := range p.Pipeline {
		if step.Component == name {
			uses++
		}
	}
	var details []string
	if uses > 0 {
		details = append(details, fmt.Sprintf("%d step(s) using %s will be deleted", uses, name))
	}

	store := m.session.Pipeline()
	m.confirm.Show(fmt.Sprintf("Remove dependency %s?", name), details, true,
		func() tea.Cmd {
			store.RemoveDependency(name)
			m.clampCursors(store.Snapshot())
			return statusCmd("✓ Removed dependency %s", name)
		},
		nil,
	)
	return nil
}

func (m *EditorModel) handleSteps(key tea.KeyMsg, p models.Pipeline) tea.Cmd {
	i := m.cursors[stepsPane]
	if !p.InRange(i) {
		return nil
	}
	store := m.session.Pipeline()

	switch key.String() {
	case "K", "shift+up":
		store.MoveStep(i, -1)
		if p.InRange(i - 1) {
			m.cursors[stepsPane] = i - 1
		}
	case "J", "shift+down":
		store.MoveStep(i, 1)
		if p.InRange(i + 1) {
			m.cursors[stepsPane] = i + 1
		}
	case "x", "delete":
		store.DeleteStep(i)
		return statusCmd("✓ Deleted step %d (%s)", i+1, p.Pipeline[i].Component)
	case "enter":
		m.focus = stepPane
		m.cursors[stepPane] = 0
	}
	return nil
}

func (m *EditorModel) handleStep(key tea.KeyMsg, p models.Pipeline) tea.Cmd {
	index := m.cursors[stepsPane]
	if !p.InRange(index) {
		return nil
	}
	step := p.Pipeline[index]
	store := m.session.Pipeline()

	switch key.String() {
	case "m":
		m.mode = editRemap
		m.input.Placeholder = "source=destination"
		m.input.SetValue("")
		return m.input.Focus()
	case "R":
		store.ReplaceRemap(index, map[string]string{})
		return statusCmd("✓ Cleared remap of step %d", index+1)
	case "esc":
		m.focus = stepsPane
		return nil
	}

	rows := stepRows(step)
	r := m.cursors[stepPane]
	if r < 0 || r >= len(rows) {
		return nil
	}
	row := rows[r]

	switch key.String() {
	case "enter", " ":
		if !row.param {
			return nil
		}
		return m.editParameter(index, row.key, step.Parameters[row.key])
	case "x", "delete":
		if row.param {
			return nil
		}
		store.ClearRemap(index, row.key)
	}
	return nil
}

// editParameter toggles booleans, cycles dropdowns and opens the text input
// for everything else.
func (m *EditorModel) editParameter(index int, key string, param models.Parameter) tea.Cmd {
	store := m.session.Pipeline()

	switch param.Type {
	case models.ParameterTypeBoolean:
		current, _ := param.Value.(bool)
		store.SetParameterValue(index, key, !current)
		return nil
	case models.ParameterTypeDropdown:
		if len(param.Options) == 0 {
			return nil
		}
		next := 0
		for i, opt := range param.Options {
			if param.Value != nil && opt == fmt.Sprint(param.Value) {
				next = (i + 1) % len(param.Options)
				break
			}
		}
		store.SetParameterValue(index, key, param.Options[next])
		return nil
	}

	m.mode = editParameter
	m.editKey = key
	m.input.Placeholder = key
	m.input.SetValue("")
	if param.Value != nil {
		m.input.SetValue(fmt.Sprint(param.Value))
	}
	return m.input.Focus()
}

func (m *EditorModel) handleInput(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		m.stopEditing()
		return nil
	case tea.KeyEnter:
		value := m.input.Value()
		mode, editKey := m.mode, m.editKey
		m.stopEditing()
		return m.commitInput(mode, editKey, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return cmd
}

func (m *EditorModel) stopEditing() {
	m.mode = editNone
	m.editKey = ""
	m.input.Blur()
}

func (m *EditorModel) commitInput(mode editMode, key, value string) tea.Cmd {
	store := m.session.Pipeline()
	index := m.cursors[stepsPane]

	switch mode {
	case editParameter:
		store.SetParameterValue(index, key, value)
	case editRemap:
		src, dest, ok := strings.Cut(value, "=")
		src, dest = strings.TrimSpace(src), strings.TrimSpace(dest)
		if !ok || src == "" || dest == "" {
			return statusCmd("✗ Remap must look like source=destination")
		}
		store.SetRemap(index, src, dest)
	}
	m.clampCursors(store.Snapshot())
	return nil
}

// copySaved copies the saved pipeline document to the clipboard
func (m *EditorModel) copySaved() tea.Cmd {
	data, err := m.session.Pipeline().Save()
	if err != nil {
		return statusCmd("✗ Failed to save pipeline: %v", err)
	}
	if err := clipboardWrite(string(data)); err != nil {
		return statusCmd("✗ Failed to copy to clipboard: %v", err)
	}
	return statusCmd("✓ Pipeline → clipboard")
}

func formatValue(v any) string {
	if v == nil {
		return "(unset)"
	}
	return fmt.Sprint(v)
}

func (m *EditorModel) View() string {
	p := m.mirror.Pipeline()
	m.clampCursors(p)

	colWidth := m.width/3 - 2
	if colWidth < 20 {
		colWidth = 20
	}

	candidates := m.renderPane(candidatesPane, "Components", colWidth, m.candidateRows())
	deps := m.renderPane(dependenciesPane, fmt.Sprintf("Dependencies (%d)", len(p.Components)), colWidth, dependencyRows(p))
	steps := m.renderPane(stepsPane, fmt.Sprintf("Steps (%d)", p.Len()), colWidth, stepListRows(p))
	detail := m.renderPane(stepPane, m.stepTitle(p), colWidth, m.stepDetailRows(p))

	left := lipgloss.JoinVertical(lipgloss.Left, candidates, deps)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, steps, detail)

	sections := []string{body}
	if m.confirm.Active() {
		sections = append(sections, m.confirm.View())
	}
	if m.mode != editNone {
		label := "Remap: "
		if m.mode == editParameter {
			label = m.editKey + ": "
		}
		sections = append(sections, InputStyle.Render(label+m.input.View()))
	}
	sections = append(sections, HelpStyle.Render(m.helpText()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *EditorModel) renderPane(pn pane, title string, width int, rows []string) string {
	focused := m.focus == pn

	var b strings.Builder
	b.WriteString(GetActiveHeaderStyle(focused).Render(title))
	b.WriteString("\n")
	if len(rows) == 0 {
		b.WriteString(EmptyStyle.Render("  (none)"))
	}
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderRow(row, i == m.cursors[pn], focused))
	}

	return paneStyle(focused).Width(width).Padding(0, 1).Render(b.String())
}

func (m *EditorModel) candidateRows() []string {
	names := m.candidates()
	rows := make([]string, len(names))
	for i, name := range names {
		rows[i] = name
		if addr, desc, ok := m.session.Resolve(name); ok {
			rows[i] = fmt.Sprintf("%s %s (%s)", name, desc.Version, addr)
		}
	}
	return rows
}

func dependencyRows(p models.Pipeline) []string {
	names := dependencyNames(p)
	rows := make([]string, len(names))
	for i, name := range names {
		dep := p.Components[name]
		version := dep.Version
		if version == "" {
			version = ">=0.0.0"
		}
		rows[i] = fmt.Sprintf("%s %s", name, version)
	}
	return rows
}

func stepListRows(p models.Pipeline) []string {
	rows := make([]string, p.Len())
	for i, step := range p.Pipeline {
		rows[i] = fmt.Sprintf("%d. %s", i+1, step.Component)
	}
	return rows
}

func (m *EditorModel) stepTitle(p models.Pipeline) string {
	i := m.cursors[stepsPane]
	if !p.InRange(i) {
		return "Step"
	}
	return fmt.Sprintf("Step %d: %s", i+1, p.Pipeline[i].Component)
}

func (m *EditorModel) stepDetailRows(p models.Pipeline) []string {
	i := m.cursors[stepsPane]
	if !p.InRange(i) {
		return nil
	}
	step := p.Pipeline[i]

	rows := stepRows(step)
	out := make([]string, len(rows))
	for r, row := range rows {
		if row.param {
			param := step.Parameters[row.key]
			out[r] = fmt.Sprintf("%s (%s) = %s", row.key, param.Type, formatValue(param.Value))
		} else {
			out[r] = fmt.Sprintf("remap %s → %s", row.key, step.Remap[row.key])
		}
	}
	return out
}

func (m *EditorModel) helpText() string {
	switch m.focus {
	case candidatesPane:
		return "enter add step · d declare dependency · tab next pane · s copy"
	case dependenciesPane:
		return "x remove dependency · tab next pane · s copy"
	case stepsPane:
		return "K/J move · x delete · enter edit step · tab next pane · s copy"
	default:
		return "enter edit parameter · m add remap · x clear remap · R clear all remaps · esc back"
	}
}
