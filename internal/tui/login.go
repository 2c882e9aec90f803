package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/egoavara/ovos-settings/internal/i18n"
)

// LoginModel asks for a username and password
type LoginModel struct {
	user    textinput.Model
	pass    textinput.Model
	focus   int
	busy    bool
	err     error
	server  string
	styles  Styles
	backend Backend
	ctx     context.Context
}

// NewLoginModel creates the login form
func NewLoginModel(ctx context.Context, backend Backend, server string, styles Styles) LoginModel {
	user := textinput.New()
	user.Placeholder = i18n.T("login.username", nil)
	user.CharLimit = 128
	user.Width = 30
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = i18n.T("login.password", nil)
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 256
	pass.Width = 30

	return LoginModel{
		user:    user,
		pass:    pass,
		server:  server,
		styles:  styles,
		backend: backend,
		ctx:     ctx,
	}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.busy = false
		m.err = msg.err
		if msg.err != nil {
			m.pass.SetValue("")
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.setFocus(1 - m.focus)
			return m, nil
		case "enter":
			if m.focus == 0 {
				m.setFocus(1)
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.user, cmd = m.user.Update(msg)
	} else {
		m.pass, cmd = m.pass.Update(msg)
	}
	return m, cmd
}

func (m *LoginModel) setFocus(i int) {
	m.focus = i
	if i == 0 {
		m.user.Focus()
		m.pass.Blur()
	} else {
		m.pass.Focus()
		m.user.Blur()
	}
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	user := strings.TrimSpace(m.user.Value())
	pass := m.pass.Value()
	if user == "" {
		m.setFocus(0)
		return m, nil
	}
	m.busy = true
	m.err = nil

	ctx, backend := m.ctx, m.backend
	return m, func() tea.Msg {
		name, err := backend.Login(ctx, user, pass)
		if err != nil {
			return loginResultMsg{err: err}
		}
		if name == "" {
			name = user
		}
		return loginResultMsg{user: name, header: backend.AuthHeader()}
	}
}

func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(i18n.T("login.title", nil)))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtle.Render(m.server))
	b.WriteString("\n\n")
	b.WriteString(m.styles.InputLabel.Render(i18n.T("login.username", nil)) + m.user.View())
	b.WriteString("\n")
	b.WriteString(m.styles.InputLabel.Render(i18n.T("login.password", nil)) + m.pass.View())
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(m.styles.Subtle.Render(i18n.T("login.checking", nil)))
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(ErrorText(m.err)))
	default:
		b.WriteString(m.styles.Help.Render("Tab: " + i18n.T("help.next", nil) + " | Enter: " + i18n.T("login.submit", nil) + " | Ctrl+C: " + i18n.T("help.quit", nil)))
	}

	return m.styles.Box.Render(b.String())
}
