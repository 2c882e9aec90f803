package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/i18n"
	"github.com/egoavara/ovos-settings/internal/store"
	"github.com/egoavara/ovos-settings/internal/syncer"
)

// Options are the preferences the editor starts with. Callbacks let the
// caller persist changes; nil callbacks are skipped.
type Options struct {
	Server    string
	Theme     string
	HideEmpty bool
	// Skill opens this skill right after the list loads
	Skill string

	OnLogin     func(header string) error
	OnLogout    func() error
	OnTheme     func(theme string) error
	OnHideEmpty func(hide bool) error
}

type screen int

const (
	screenLogin screen = iota
	screenSkills
	screenEditor
)

// App is the root model of the terminal editor
type App struct {
	ctx     context.Context
	backend Backend
	sync    *syncer.Synchronizer
	opts    Options
	styles  Styles

	screen screen
	user   string
	login  LoginModel
	skills SkillsModel
	editor EditorModel

	width  int
	height int
	notice string
}

// NewApp builds the root model. It starts on the login screen when backend
// has no credential header; a stored header is checked by Init.
func NewApp(ctx context.Context, backend Backend, opts Options) App {
	if opts.Theme != "light" {
		opts.Theme = "dark"
	}
	styles := NewStyles(opts.Theme)
	a := App{
		ctx:     ctx,
		backend: backend,
		sync:    syncer.New(store.New(), backend),
		opts:    opts,
		styles:  styles,
		login:   NewLoginModel(ctx, backend, opts.Server, styles),
		skills:  NewSkillsModel(opts.HideEmpty, styles),
	}
	if backend.AuthHeader() != "" {
		a.screen = screenSkills
	}
	return a
}

func (a App) Init() tea.Cmd {
	if a.screen == screenLogin {
		return a.login.Init()
	}
	return a.checkAuth()
}

// checkAuth validates the stored header against the login endpoint
func (a App) checkAuth() tea.Cmd {
	ctx, backend := a.ctx, a.backend
	header := backend.AuthHeader()
	return func() tea.Msg {
		user, err := backend.Validate(ctx, header)
		return authCheckedMsg{user: user, err: err}
	}
}

func (a App) loadSkills() tea.Cmd {
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		skills, err := backend.ListSkills(ctx)
		return skillsLoadedMsg{skills: skills, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.skills, _ = a.skills.Update(msg)
		if a.screen == screenEditor {
			a.editor, _ = a.editor.Update(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case loginResultMsg:
		if msg.err != nil {
			a.login, _ = a.login.Update(msg)
			return a, nil
		}
		a.user = msg.user
		a.notice = i18n.T("login.welcome", map[string]any{"User": msg.user})
		if a.opts.OnLogin != nil {
			if err := a.opts.OnLogin(msg.header); err != nil {
				slog.Warn("store credential", "err", err)
			}
		}
		a.screen = screenSkills
		a.skills.loading = true
		return a, a.loadSkills()

	case authCheckedMsg:
		switch {
		case errors.Is(msg.err, api.ErrAuthenticationFailed), errors.Is(msg.err, api.ErrUnauthenticated):
			return a.toLogin(), nil
		case msg.err != nil:
			// the backend is unreachable; keep the credential and show why
			a.skills.SetSkills(nil, msg.err)
			return a, nil
		}
		a.user = msg.user
		return a, a.loadSkills()

	case skillsLoadedMsg:
		if errors.Is(msg.err, api.ErrUnauthenticated) {
			return a.toLogin(), nil
		}
		if msg.err == nil {
			for _, s := range msg.skills {
				a.sync.Load(s.ID, s.Settings)
			}
		}
		a.skills.SetSkills(msg.skills, msg.err)
		if id := a.opts.Skill; id != "" && msg.err == nil {
			a.opts.Skill = ""
			return a.openSkill(id)
		}
		return a, nil

	case openSkillMsg:
		return a.openSkill(msg.id)

	case closeEditorMsg:
		a.screen = screenSkills
		a.skills.SetSkills(a.currentSkills(), nil)
		return a, nil

	case persistedMsg:
		if errors.Is(msg.err, api.ErrUnauthenticated) {
			return a.toLogin(), nil
		}
		if msg.err != nil {
			slog.Warn("persist", "skill", msg.skill, "op", msg.op, "err", msg.err)
			if a.screen != screenEditor || a.editor.Skill() != msg.skill {
				a.notice = ErrorText(msg.err)
			}
		}
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		return a, cmd
	}

	switch a.screen {
	case screenLogin:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd

	case screenSkills:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "ctrl+r":
				a.skills.loading = true
				return a, a.loadSkills()
			case "ctrl+t":
				return a.toggleTheme(), nil
			case "ctrl+o":
				return a.logout(), nil
			case "tab":
				var cmd tea.Cmd
				a.skills, cmd = a.skills.Update(msg)
				if a.opts.OnHideEmpty != nil {
					if err := a.opts.OnHideEmpty(a.skills.HideEmpty()); err != nil {
						slog.Warn("store hide-empty", "err", err)
					}
				}
				return a, cmd
			}
		}
		var cmd tea.Cmd
		a.skills, cmd = a.skills.Update(msg)
		return a, cmd

	case screenEditor:
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		return a, cmd
	}

	return a, nil
}

// currentSkills rebuilds the list from the store so edits show up in the
// settings counts without another fetch
func (a App) currentSkills() []api.Skill {
	st := a.sync.Store()
	ids := st.Skills()
	out := make([]api.Skill, 0, len(ids))
	for _, id := range ids {
		doc, _ := st.Get(id)
		out = append(out, api.Skill{ID: id, Settings: doc})
	}
	return out
}

func (a App) openSkill(id string) (tea.Model, tea.Cmd) {
	if _, ok := a.sync.Store().Get(id); !ok {
		a.notice = ErrorText(fmt.Errorf("%s: %w", id, store.ErrUnknownSkill))
		return a, nil
	}
	a.notice = ""
	a.editor = NewEditorModel(a.ctx, a.sync, id, a.styles)
	a.editor, _ = a.editor.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	a.screen = screenEditor
	return a, nil
}

// toLogin drops the credential from the backend and from the caller's
// storage, then shows the login screen
func (a App) toLogin() App {
	a.backend.SetAuthHeader("")
	if a.opts.OnLogout != nil {
		if err := a.opts.OnLogout(); err != nil {
			slog.Warn("clear credential", "err", err)
		}
	}
	a.user = ""
	a.screen = screenLogin
	a.login = NewLoginModel(a.ctx, a.backend, a.opts.Server, a.styles)
	a.notice = ErrorText(api.ErrUnauthenticated)
	return a
}

func (a App) logout() App {
	a = a.toLogin()
	a.notice = i18n.T("logout.done", nil)
	return a
}

func (a App) toggleTheme() App {
	if a.opts.Theme == "dark" {
		a.opts.Theme = "light"
	} else {
		a.opts.Theme = "dark"
	}
	a.styles = NewStyles(a.opts.Theme)
	a.login.styles = a.styles
	a.skills.styles = a.styles
	a.editor.styles = a.styles
	a.editor.confirm.styles = a.styles
	if a.opts.OnTheme != nil {
		if err := a.opts.OnTheme(a.opts.Theme); err != nil {
			slog.Warn("store theme", "err", err)
		}
	}
	return a
}

func (a App) View() string {
	var b strings.Builder
	switch a.screen {
	case screenLogin:
		b.WriteString(a.login.View())
	case screenSkills:
		b.WriteString(a.skills.View())
	case screenEditor:
		b.WriteString(a.editor.View())
	}
	if a.notice != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.Subtle.Render(a.notice))
	}
	return b.String()
}

// Run starts the editor and blocks until the user quits
func Run(ctx context.Context, backend Backend, opts Options) error {
	p := tea.NewProgram(NewApp(ctx, backend, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
