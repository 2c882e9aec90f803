package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/i18n"
	"github.com/egoavara/ovos-settings/internal/search"
)

// SkillsModel lists skills with a fuzzy filter
type SkillsModel struct {
	skills    []api.Skill
	filtered  []search.SearchResult
	cursor    int
	filter    textinput.Model
	hideEmpty bool
	loading   bool
	err       error
	width     int
	height    int
	styles    Styles
}

// NewSkillsModel creates the skill list
func NewSkillsModel(hideEmpty bool, styles Styles) SkillsModel {
	ti := textinput.New()
	ti.Placeholder = i18n.T("skills.filter", nil)
	ti.CharLimit = 64
	ti.Width = 30

	return SkillsModel{
		filter:    ti,
		hideEmpty: hideEmpty,
		loading:   true,
		styles:    styles,
	}
}

// SetSkills replaces the listed skills and keeps the filter
func (m *SkillsModel) SetSkills(skills []api.Skill, err error) {
	m.loading = false
	m.err = err
	if err == nil {
		m.skills = skills
	}
	m.applyFilter()
}

// Selected returns the skill under the cursor
func (m SkillsModel) Selected() (api.Skill, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return api.Skill{}, false
	}
	return m.filtered[m.cursor].Skill, true
}

// HideEmpty reports the hide-empty toggle
func (m SkillsModel) HideEmpty() bool { return m.hideEmpty }

func (m SkillsModel) Update(msg tea.Msg) (SkillsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		case "tab":
			m.hideEmpty = !m.hideEmpty
			m.applyFilter()
			return m, nil
		case "esc":
			if m.filter.Value() != "" {
				m.filter.SetValue("")
				m.applyFilter()
			}
			return m, nil
		case "enter":
			if s, ok := m.Selected(); ok {
				id := s.ID
				return m, func() tea.Msg { return openSkillMsg{id: id} }
			}
			return m, nil
		}

		before := m.filter.Value()
		m.filter.Focus()
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != before {
			m.applyFilter()
		}
		return m, cmd
	}
	return m, nil
}

func (m *SkillsModel) applyFilter() {
	results := search.FuzzySearch(m.skills, m.filter.Value())
	if m.hideEmpty {
		results = search.WithoutEmpty(results)
	}
	m.filtered = results
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m SkillsModel) View() string {
	var b strings.Builder

	header := i18n.T("skills.header", map[string]any{"Count": len(m.filtered)}, len(m.filtered))
	b.WriteString(m.styles.Title.Render(header))
	if m.hideEmpty {
		b.WriteString(m.styles.Subtle.Render(" " + i18n.T("skills.hidingEmpty", nil)))
	}
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.styles.Subtle.Render(i18n.T("skills.loading", nil)))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(i18n.T("skills.fetchFailed", map[string]any{"Reason": ErrorText(m.err)})))
		b.WriteString("\n")
	case len(m.filtered) == 0:
		b.WriteString(m.styles.Subtle.Render(i18n.T("skills.empty", nil)))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	if m.filter.Value() != "" {
		b.WriteString("> " + m.filter.Value() + "_")
	} else {
		b.WriteString(m.styles.Help.Render("> " + i18n.T("skills.filter", nil)))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(i18n.T("skills.help", nil)))

	return b.String()
}

func (m SkillsModel) renderList() string {
	height := max(5, m.height-8)
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(start+height, len(m.filtered))

	nameWidth := 0
	for _, r := range m.filtered[start:end] {
		nameWidth = max(nameWidth, lipgloss.Width(r.Info.Name))
	}

	var lines []string
	for i := start; i < end; i++ {
		r := m.filtered[i]
		visible, _ := api.StripHidden(r.Skill.Settings)
		count := i18n.T("skills.count", map[string]any{"Count": visible.Len()}, visible.Len())
		text := fmt.Sprintf("%-*s  %s  %s", nameWidth, r.Info.Name, r.Info.Author, count)

		if i == m.cursor {
			lines = append(lines, m.styles.Selected.Render("> "+text))
			continue
		}
		line := "  " + m.styles.Normal.Render(fmt.Sprintf("%-*s", nameWidth, r.Info.Name)) +
			"  " + m.styles.Subtle.Render(r.Info.Author+"  "+count)
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n") + "\n"
}
