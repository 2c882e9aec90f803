package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/egoavara/ovos-settings/internal/i18n"
)

// ConfirmOption is one answer of a yes/no modal
type ConfirmOption struct {
	Value bool
	Label string
}

// ConfirmModel is a yes/no modal. It does not quit the program; the owner
// checks Done after each Update.
type ConfirmModel struct {
	question string
	detail   string
	options  []ConfirmOption
	cursor   int
	answer   bool
	done     bool
	styles   Styles
}

// NewConfirmModel creates a modal that defaults to no
func NewConfirmModel(question, detail string, styles Styles) ConfirmModel {
	return ConfirmModel{
		question: question,
		detail:   detail,
		options: []ConfirmOption{
			{Value: false, Label: i18n.T("confirm.no", nil)},
			{Value: true, Label: i18n.T("confirm.yes", nil)},
		},
		styles: styles,
	}
}

func (m ConfirmModel) Update(msg tea.Msg) (ConfirmModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}
	switch key.String() {
	case "left", "up", "h", "k", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "down", "l", "j", "tab":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "y", "Y":
		m.answer, m.done = true, true
	case "n", "N", "esc", "q", "ctrl+c":
		m.answer, m.done = false, true
	case "enter", " ":
		m.answer = m.options[m.cursor].Value
		m.done = true
	}
	return m, nil
}

// Done reports whether the user answered
func (m ConfirmModel) Done() bool { return m.done }

// Answer is true only for an explicit yes
func (m ConfirmModel) Answer() bool { return m.done && m.answer }

func (m ConfirmModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.question))
	b.WriteString("\n\n")
	if m.detail != "" {
		b.WriteString(m.styles.Subtle.Render(m.detail))
		b.WriteString("\n\n")
	}

	labels := make([]string, len(m.options))
	for i, opt := range m.options {
		if i == m.cursor {
			labels[i] = m.styles.Selected.Render(fmt.Sprintf(" ▸ %s ", opt.Label))
		} else {
			labels[i] = m.styles.Normal.Render(fmt.Sprintf("   %s ", opt.Label))
		}
	}
	b.WriteString(strings.Join(labels, "  "))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Help.Render("[y] " + i18n.T("confirm.yes", nil) + "  [n] " + i18n.T("confirm.no", nil)))

	return m.styles.Modal.Render(b.String())
}
