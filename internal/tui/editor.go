package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/egoavara/ovos-settings/internal/editor"
	"github.com/egoavara/ovos-settings/internal/i18n"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/egoavara/ovos-settings/internal/skillinfo"
	"github.com/egoavara/ovos-settings/internal/syncer"
)

type editMode int

const (
	modeBrowse editMode = iota
	modeEdit
	modeAdd
	modeConfirmDelete
)

// draft form fields
const (
	fieldKey = iota
	fieldType
	fieldValue
)

// EditorModel edits the settings tree of one skill. Every change goes
// through the synchronizer; the model only keeps view state.
type EditorModel struct {
	ctx   context.Context
	sync  *syncer.Synchronizer
	skill string
	info  skillinfo.Info

	doc       settings.Value
	rows      []editor.Row
	collapsed map[string]bool
	cursor    int

	mode     editMode
	node     *editor.Node
	line     textinput.Model
	area     textarea.Model
	keyInput textinput.Model
	field    int
	confirm  ConfirmModel

	pending int
	status  string
	err     error

	width  int
	height int
	styles Styles
}

// NewEditorModel opens skill, which must already be loaded into sync
func NewEditorModel(ctx context.Context, sync *syncer.Synchronizer, skill string, styles Styles) EditorModel {
	line := textinput.New()
	line.CharLimit = 0
	line.Width = 40

	key := textinput.New()
	key.Placeholder = i18n.T("add.key", nil)
	key.CharLimit = 128
	key.Width = 30

	area := textarea.New()
	area.SetWidth(60)
	area.SetHeight(6)
	area.ShowLineNumbers = false

	m := EditorModel{
		ctx:       ctx,
		sync:      sync,
		skill:     skill,
		info:      skillinfo.Parse(skill),
		collapsed: make(map[string]bool),
		line:      line,
		area:      area,
		keyInput:  key,
		styles:    styles,
	}
	m.refresh()
	return m
}

// Skill returns the id being edited
func (m EditorModel) Skill() string { return m.skill }

// Busy reports whether a form or modal is open
func (m EditorModel) Busy() bool { return m.mode != modeBrowse }

// Pending returns the number of writes still in flight
func (m EditorModel) Pending() int { return m.pending }

func (m *EditorModel) refresh() {
	m.doc, _ = m.sync.Store().Get(m.skill)
	m.rows = editor.Rows(m.doc, m.collapsed)
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
}

func (m EditorModel) current() (editor.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return editor.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m EditorModel) Update(msg tea.Msg) (EditorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.area.SetWidth(max(20, min(80, msg.Width-8)))
		return m, nil

	case persistedMsg:
		if msg.skill != m.skill {
			return m, nil
		}
		m.pending = max(0, m.pending-1)
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
		} else if m.pending == 0 {
			m.status = i18n.T("editor.saved", nil)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeAdd:
			return m.updateAdd(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m EditorModel) updateBrowse(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	row, ok := m.current()

	switch msg.String() {
	case "esc", "q":
		return m, func() tea.Msg { return closeEditorMsg{} }

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(0, len(m.rows)-1)

	case "left", "h":
		if !ok {
			break
		}
		if row.Input.Composite() && !row.Collapsed {
			m.collapsed[row.Path.String()] = true
			m.refresh()
			break
		}
		// jump to the parent row
		parent := row.Path.Parent().String()
		for i := m.cursor - 1; i >= 0; i-- {
			if m.rows[i].Path.String() == parent {
				m.cursor = i
				break
			}
		}
	case "right", "l":
		if ok && row.Collapsed {
			delete(m.collapsed, row.Path.String())
			m.refresh()
		}

	case "enter", "e":
		if !ok {
			break
		}
		if row.Input.Composite() {
			if msg.String() == "enter" {
				m.toggleCollapse(row)
				break
			}
			m.err = editor.ErrNotEditable
			break
		}
		return m.beginEdit(row)

	case " ":
		if ok && row.Input == editor.InputBoolean {
			return m.quickToggle(row)
		}
		if ok && row.Input.Composite() {
			m.toggleCollapse(row)
		}

	case "a":
		if !ok {
			return m.beginAdd(editor.NewNode(nil, m.doc, editor.ParentNone))
		}
		if !row.Input.Composite() {
			m.err = editor.ErrNotComposite
			break
		}
		return m.beginAdd(row.NodeAt())
	case "A":
		return m.beginAdd(editor.NewNode(nil, m.doc, editor.ParentNone))

	case "d", "delete":
		if !ok {
			break
		}
		m.node = row.NodeAt()
		m.confirm = NewConfirmModel(
			i18n.T("delete.question", map[string]any{"Path": row.Path.String()}),
			preview(row.Value),
			m.styles,
		)
		m.mode = modeConfirmDelete

	case "u":
		if !m.sync.Store().CanUndo(m.skill) {
			m.status = i18n.T("error.noHistory", nil)
			break
		}
		return m.apply(syncer.Undo{})
	}

	return m, nil
}

func (m *EditorModel) toggleCollapse(row editor.Row) {
	key := row.Path.String()
	if m.collapsed[key] {
		delete(m.collapsed, key)
	} else {
		m.collapsed[key] = true
	}
	m.refresh()
}

func (m EditorModel) beginEdit(row editor.Row) (EditorModel, tea.Cmd) {
	node := row.NodeAt()
	if err := node.BeginEdit(); err != nil {
		m.err = err
		return m, nil
	}
	m.node = node
	m.mode = modeEdit
	m.err = nil

	switch node.Input() {
	case editor.InputBoolean:
		return m, nil
	case editor.InputMultiline:
		m.area.SetValue(node.Buffer())
		return m, m.area.Focus()
	}
	m.line.SetValue(node.Buffer())
	m.line.CursorEnd()
	return m, m.line.Focus()
}

func (m EditorModel) quickToggle(row editor.Row) (EditorModel, tea.Cmd) {
	node := row.NodeAt()
	if err := node.BeginEdit(); err != nil {
		m.err = err
		return m, nil
	}
	node.ToggleBool()
	intent, err := node.CommitEdit()
	if err != nil {
		m.err = err
		return m, nil
	}
	return m.applyIntent(intent)
}

func (m EditorModel) updateEdit(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	node := m.node
	multiline := node.Input() == editor.InputMultiline

	switch msg.String() {
	case "esc":
		node.CancelEdit()
		m.closeForm()
		return m, nil
	case "ctrl+s":
		return m.commitEdit()
	case "enter":
		if !multiline {
			return m.commitEdit()
		}
	}

	if node.Input() == editor.InputBoolean {
		switch msg.String() {
		case " ", "tab", "left", "right", "h", "l", "t", "f":
			node.ToggleBool()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if multiline {
		m.area, cmd = m.area.Update(msg)
	} else {
		m.line, cmd = m.line.Update(msg)
	}
	return m, cmd
}

func (m EditorModel) commitEdit() (EditorModel, tea.Cmd) {
	node := m.node
	switch node.Input() {
	case editor.InputMultiline:
		node.SetBuffer(m.area.Value())
	case editor.InputBoolean:
	default:
		node.SetBuffer(m.line.Value())
	}

	intent, err := node.CommitEdit()
	if err != nil {
		// invalid numbers put the last confirmed text back
		m.line.SetValue(node.Buffer())
		m.line.CursorEnd()
		return m, nil
	}
	m.closeForm()
	return m.applyIntent(intent)
}

func (m EditorModel) beginAdd(node *editor.Node) (EditorModel, tea.Cmd) {
	if err := node.BeginAdd(); err != nil {
		m.err = err
		return m, nil
	}
	m.node = node
	m.mode = modeAdd
	m.err = nil
	m.keyInput.SetValue("")
	m.line.SetValue("")

	if node.Value.Kind() == settings.KindArray {
		return m, m.focusField(fieldType)
	}
	return m, m.focusField(fieldKey)
}

func (m *EditorModel) focusField(f int) tea.Cmd {
	m.field = f
	m.keyInput.Blur()
	m.line.Blur()
	switch f {
	case fieldKey:
		return m.keyInput.Focus()
	case fieldValue:
		return m.line.Focus()
	}
	return nil
}

// draftFields lists the form fields that take input for the current draft
func (m EditorModel) draftFields() []int {
	var fields []int
	if m.node.Value.Kind() == settings.KindObject {
		fields = append(fields, fieldKey)
	}
	fields = append(fields, fieldType)
	switch m.node.Draft().Type {
	case settings.KindString, settings.KindNumber, settings.KindBool:
		fields = append(fields, fieldValue)
	}
	return fields
}

func (m EditorModel) nextField(step int) int {
	fields := m.draftFields()
	for i, f := range fields {
		if f == m.field {
			return fields[(i+step+len(fields))%len(fields)]
		}
	}
	return fields[0]
}

func (m EditorModel) updateAdd(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	draft := m.node.Draft()

	switch msg.String() {
	case "esc":
		m.node.CancelAdd()
		m.closeForm()
		return m, nil
	case "enter", "ctrl+s":
		return m.commitAdd()
	case "tab", "down":
		return m, m.focusField(m.nextField(1))
	case "shift+tab", "up":
		return m, m.focusField(m.nextField(-1))
	}

	switch m.field {
	case fieldType:
		switch msg.String() {
		case " ", "right", "l":
			draft.NextType()
			if draft.Type != settings.KindBool {
				draft.Raw = m.line.Value()
			}
		case "left", "h":
			for range len(editor.DraftTypes) - 1 {
				draft.NextType()
			}
		}
		return m, nil

	case fieldValue:
		if draft.Type == settings.KindBool {
			switch msg.String() {
			case " ", "left", "right", "h", "l", "t", "f":
				if draft.Raw == "true" {
					draft.Raw = "false"
				} else {
					draft.Raw = "true"
				}
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.line, cmd = m.line.Update(msg)
		draft.Raw = m.line.Value()
		return m, cmd
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	draft.Key = m.keyInput.Value()
	return m, cmd
}

func (m EditorModel) commitAdd() (EditorModel, tea.Cmd) {
	draft := m.node.Draft()
	draft.Key = m.keyInput.Value()
	if draft.Type != settings.KindBool {
		draft.Raw = m.line.Value()
	}

	parent := m.node.Path
	intent, err := m.node.CommitAdd()
	if err != nil {
		if errors.Is(err, editor.ErrEmptyKey) || errors.Is(err, editor.ErrDuplicateKey) {
			m.focusField(fieldKey)
		}
		return m, nil
	}
	m.closeForm()
	delete(m.collapsed, parent.String())
	m, cmd := m.applyIntent(intent)
	m.moveTo(intent.Path)
	return m, cmd
}

func (m EditorModel) updateConfirm(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	var cmd tea.Cmd
	m.confirm, cmd = m.confirm.Update(msg)
	if !m.confirm.Done() {
		return m, cmd
	}

	answer := m.confirm.Answer()
	node := m.node
	m.closeForm()

	intent, ok, err := node.Delete(func(settings.Path) bool { return answer })
	if err != nil {
		m.err = err
		return m, nil
	}
	if !ok {
		return m, nil
	}
	return m.applyIntent(intent)
}

func (m *EditorModel) closeForm() {
	m.mode = modeBrowse
	m.line.Blur()
	m.area.Blur()
	m.keyInput.Blur()
	m.node = nil
}

func (m *EditorModel) moveTo(path settings.Path) {
	for i, r := range m.rows {
		if r.Path.Equal(path) {
			m.cursor = i
			return
		}
	}
}

func (m EditorModel) applyIntent(intent any) (EditorModel, tea.Cmd) {
	mut, err := syncer.FromIntent(intent)
	if err != nil {
		m.err = err
		return m, nil
	}
	return m.apply(mut)
}

// apply changes the local document now and persists it in the background
func (m EditorModel) apply(mut syncer.Mutation) (EditorModel, tea.Cmd) {
	p, err := m.sync.Apply(m.skill, mut)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.pending++
	m.status = i18n.T("editor.saving", nil)
	m.refresh()

	ctx, skill := m.ctx, m.skill
	return m, func() tea.Msg {
		err := p.Persist(ctx)
		return persistedMsg{skill: skill, op: p.Op, err: err}
	}
}

func (m EditorModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.info.Name))
	b.WriteString(m.styles.Subtle.Render(fmt.Sprintf(" %s · %s", m.info.ID, m.info.Author)))
	b.WriteString("\n\n")

	if m.mode == modeConfirmDelete {
		b.WriteString(m.confirm.View())
		return b.String()
	}

	lines := m.renderRows()
	height := max(5, m.height-7)
	start := 0
	if focus := m.focusLine(lines); focus >= height {
		start = focus - height + 1
	}
	end := min(start+height, len(lines))
	for _, l := range lines[start:end] {
		b.WriteString(l.text)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil && m.mode == modeBrowse:
		b.WriteString(m.styles.Error.Render(ErrorText(m.err)))
	case m.status != "":
		b.WriteString(m.styles.Subtle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.helpLine()))
	return b.String()
}

type viewLine struct {
	text  string
	focus bool
}

func (m EditorModel) focusLine(lines []viewLine) int {
	for i, l := range lines {
		if l.focus {
			return i
		}
	}
	return 0
}

func (m EditorModel) renderRows() []viewLine {
	var lines []viewLine

	if m.mode == modeAdd && len(m.node.Path) == 0 {
		lines = append(lines, m.renderAddForm(0)...)
	}
	if len(m.rows) == 0 {
		lines = append(lines, viewLine{text: m.styles.Subtle.Render(i18n.T("editor.empty", nil))})
	}

	for i, row := range m.rows {
		editing := m.node != nil && m.node.Path.Equal(row.Path)
		lines = append(lines, viewLine{text: m.renderRow(i, row, editing && m.mode == modeEdit), focus: i == m.cursor})

		if editing && m.mode == modeEdit && m.node.Input() == editor.InputMultiline {
			for _, l := range strings.Split(m.area.View(), "\n") {
				lines = append(lines, viewLine{text: indent(row.Depth+1) + l})
			}
		}
		if editing && m.node.Err() != nil {
			lines = append(lines, viewLine{text: indent(row.Depth+1) + m.styles.Error.Render(ErrorText(m.node.Err()))})
		}
		if editing && m.mode == modeAdd {
			lines = append(lines, m.renderAddForm(row.Depth+1)...)
		}
	}
	return lines
}

func (m EditorModel) renderRow(i int, row editor.Row, editing bool) string {
	marker := "  "
	if row.Input.Composite() {
		marker = "▾ "
		if row.Collapsed {
			marker = "▸ "
		}
	}

	label := row.Label
	if row.Parent == editor.ParentObject {
		label = m.styles.Key.Render(label) + ":"
	} else {
		label = m.styles.Subtle.Render(label)
	}

	value := m.renderValue(row.Value)
	if editing {
		switch m.node.Input() {
		case editor.InputBoolean:
			value = m.styles.Selected.Render(" " + m.node.Buffer() + " ")
		case editor.InputMultiline:
			value = m.styles.Subtle.Render(i18n.T("editor.multiline", nil))
		default:
			value = m.line.View()
		}
	}

	cursor := "  "
	if i == m.cursor {
		cursor = m.styles.Selected.Render(">") + " "
	}
	return cursor + indent(row.Depth) + marker + label + " " + value
}

func (m EditorModel) renderValue(v settings.Value) string {
	switch v.Kind() {
	case settings.KindNull:
		return m.styles.Null.Render("null")
	case settings.KindBool:
		return m.styles.Bool.Render(strconv.FormatBool(v.AsBool()))
	case settings.KindNumber:
		return m.styles.Number.Render(settings.Text(v))
	case settings.KindString:
		s := v.AsString()
		if strings.Contains(s, "\n") {
			first, _, _ := strings.Cut(s, "\n")
			return m.styles.String.Render(strconv.Quote(first)) + m.styles.Subtle.Render(" …")
		}
		return m.styles.String.Render(strconv.Quote(s))
	case settings.KindArray:
		return m.styles.Subtle.Render(fmt.Sprintf("[%d]", v.Len()))
	case settings.KindObject:
		return m.styles.Subtle.Render(fmt.Sprintf("{%d}", v.Len()))
	}
	return ""
}

func (m EditorModel) renderAddForm(depth int) []viewLine {
	draft := m.node.Draft()
	pad := indent(depth) + "    "
	mark := func(f int) string {
		if m.field == f {
			return m.styles.Selected.Render(">") + " "
		}
		return "  "
	}

	title := i18n.T("add.titleObject", map[string]any{"Path": pathLabel(m.node.Path)})
	if m.node.Value.Kind() == settings.KindArray {
		title = i18n.T("add.titleArray", map[string]any{"Path": pathLabel(m.node.Path), "Index": m.node.Value.Len()})
	}
	lines := []viewLine{{text: pad + m.styles.Title.Render(title)}}

	if m.node.Value.Kind() == settings.KindObject {
		lines = append(lines, viewLine{
			text:  pad + mark(fieldKey) + m.styles.InputLabel.Render(i18n.T("add.key", nil)) + m.keyInput.View(),
			focus: true,
		})
	}

	types := make([]string, len(editor.DraftTypes))
	for i, k := range editor.DraftTypes {
		name := k.String()
		if k == draft.Type {
			types[i] = m.styles.Selected.Render(" " + name + " ")
		} else {
			types[i] = m.styles.Subtle.Render(" " + name + " ")
		}
	}
	lines = append(lines, viewLine{text: pad + mark(fieldType) + m.styles.InputLabel.Render(i18n.T("add.type", nil)) + strings.Join(types, "")})

	switch draft.Type {
	case settings.KindBool:
		lines = append(lines, viewLine{text: pad + mark(fieldValue) + m.styles.InputLabel.Render(i18n.T("add.value", nil)) + m.styles.Bool.Render(draft.Raw)})
	case settings.KindString, settings.KindNumber:
		lines = append(lines, viewLine{text: pad + mark(fieldValue) + m.styles.InputLabel.Render(i18n.T("add.value", nil)) + m.line.View()})
	default:
		lines = append(lines, viewLine{text: pad + "  " + m.styles.Subtle.Render(i18n.T("add.emptyComposite", nil))})
	}

	if err := m.node.Err(); err != nil && len(m.node.Path) == 0 {
		lines = append(lines, viewLine{text: pad + m.styles.Error.Render(ErrorText(err))})
	}
	return lines
}

func (m EditorModel) helpLine() string {
	switch m.mode {
	case modeEdit:
		if m.node.Input() == editor.InputMultiline {
			return i18n.T("editor.help.multiline", nil)
		}
		if m.node.Input() == editor.InputBoolean {
			return i18n.T("editor.help.bool", nil)
		}
		return i18n.T("editor.help.edit", nil)
	case modeAdd:
		return i18n.T("editor.help.add", nil)
	}
	help := i18n.T("editor.help.browse", nil)
	if !m.sync.Store().CanUndo(m.skill) {
		return help
	}
	return help + " | u: " + i18n.T("editor.undo", nil)
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func pathLabel(p settings.Path) string {
	if len(p) == 0 {
		return "/"
	}
	return p.String()
}

const previewWidth = 60

// preview renders v on one line for the delete modal
func preview(v settings.Value) string {
	return ansi.Truncate(v.String(), previewWidth, "...")
}
