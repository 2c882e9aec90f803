package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/editor"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/egoavara/ovos-settings/internal/store"
	"github.com/egoavara/ovos-settings/internal/syncer"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	header   string
	valid    string
	skills   []api.Skill
	replaced []settings.Value
	failNext error
}

func (f *fakeBackend) Login(_ context.Context, user, pass string) (string, error) {
	if user != "ana" || pass != "secret" {
		return "", api.ErrAuthenticationFailed
	}
	f.SetAuthHeader(api.BasicHeader(user, pass))
	return user, nil
}

func (f *fakeBackend) Validate(_ context.Context, header string) (string, error) {
	if header == "" || header != f.valid {
		return "", api.ErrAuthenticationFailed
	}
	return "ana", nil
}

func (f *fakeBackend) ListSkills(context.Context) ([]api.Skill, error) {
	return f.skills, nil
}

func (f *fakeBackend) AuthHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.header
}

func (f *fakeBackend) SetAuthHeader(h string) {
	f.mu.Lock()
	f.header = h
	f.mu.Unlock()
}

func (f *fakeBackend) ReplaceSettings(_ context.Context, _ string, doc settings.Value) (settings.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failNext; err != nil {
		f.failNext = nil
		return settings.Value{}, err
	}
	f.replaced = append(f.replaced, doc)
	return doc, nil
}

func (f *fakeBackend) MergeSettings(_ context.Context, _ string, partial settings.Value) (settings.Value, error) {
	return partial, nil
}

func (f *fakeBackend) last(t *testing.T) settings.Value {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.replaced)
	return f.replaced[len(f.replaced)-1]
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEscape}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyClear = tea.KeyMsg{Type: tea.KeyCtrlU}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func press(m EditorModel, keys ...tea.KeyMsg) (EditorModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(k)
	}
	return m, cmd
}

// settle runs the persist command and feeds its result back
func settle(t *testing.T, m EditorModel, cmd tea.Cmd) EditorModel {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(persistedMsg)
	require.True(t, ok)
	m, _ = m.Update(msg)
	return m
}

func newEditor(t *testing.T, doc string) (EditorModel, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{header: "Basic x"}
	s := syncer.New(store.New(), fb)
	s.Load("demo", settings.MustParse(doc))
	return NewEditorModel(context.Background(), s, "demo", NewStyles("dark")), fb
}

func requireDoc(t *testing.T, want string, got settings.Value) {
	t.Helper()
	require.True(t, settings.Equal(settings.MustParse(want), got), "got %s", got.String())
}

func TestEditorEditDeleteUndo(t *testing.T) {
	m, fb := newEditor(t, `{"volume": 5, "nested": {"enabled": true}}`)
	require.Len(t, m.rows, 3) // nested, nested.enabled, volume

	// invalid number keeps the field open with the old text
	m, cmd := press(m, keyDown, keyDown, runes("e"), keyClear, runes("abc"), keyEnter)
	require.Nil(t, cmd)
	require.Equal(t, modeEdit, m.mode)
	require.Equal(t, "5", m.line.Value())
	require.ErrorIs(t, m.node.Err(), settings.ErrInvalidNumber)
	requireDoc(t, `{"volume": 5, "nested": {"enabled": true}}`, m.doc)

	m, cmd = press(m, keyClear, runes("10"), keyEnter)
	require.Equal(t, modeBrowse, m.mode)
	m = settle(t, m, cmd)
	requireDoc(t, `{"volume": 10, "nested": {"enabled": true}}`, fb.last(t))

	// a declined delete changes nothing
	m, cmd = press(m, keyUp, runes("d"))
	require.Equal(t, modeConfirmDelete, m.mode)
	m, cmd = press(m, runes("n"))
	require.Nil(t, cmd)
	require.Equal(t, modeBrowse, m.mode)
	require.Len(t, fb.replaced, 1)

	m, _ = press(m, runes("d"))
	m, cmd = press(m, runes("y"))
	m = settle(t, m, cmd)
	requireDoc(t, `{"volume": 10, "nested": {}}`, fb.last(t))

	m, cmd = press(m, runes("u"))
	m = settle(t, m, cmd)
	requireDoc(t, `{"volume": 10, "nested": {"enabled": true}}`, fb.last(t))
	requireDoc(t, `{"volume": 10, "nested": {"enabled": true}}`, m.doc)

	// a second undo has nothing to restore
	_, cmd = press(m, runes("u"))
	require.Nil(t, cmd)
}

func TestEditorArrayAppend(t *testing.T) {
	m, fb := newEditor(t, `{"items": []}`)

	m, _ = press(m, runes("a"))
	require.Equal(t, modeAdd, m.mode)
	require.Equal(t, fieldType, m.field)

	m, cmd := press(m, keyTab, runes("x"), keyEnter)
	m = settle(t, m, cmd)
	requireDoc(t, `{"items": ["x"]}`, fb.last(t))

	m.cursor = 0
	m, cmd = press(m, runes("a"), keyTab, runes("y"), keyEnter)
	m = settle(t, m, cmd)
	requireDoc(t, `{"items": ["x", "y"]}`, fb.last(t))

	m.moveTo(settings.MustParsePath("items[0]"))
	m, _ = press(m, runes("d"))
	m, cmd = press(m, runes("y"))
	settle(t, m, cmd)
	requireDoc(t, `{"items": ["y"]}`, fb.last(t))
}

func TestEditorAddObjectKey(t *testing.T) {
	m, fb := newEditor(t, `{"name": "x"}`)

	// A adds at the root; an empty key keeps the form open
	m, cmd := press(m, runes("A"), keyEnter)
	require.Nil(t, cmd)
	require.Equal(t, modeAdd, m.mode)
	require.ErrorIs(t, m.node.Err(), editor.ErrEmptyKey)

	// duplicate keys are refused
	m, cmd = press(m, runes("name"), keyEnter)
	require.Nil(t, cmd)
	require.ErrorIs(t, m.node.Err(), editor.ErrDuplicateKey)

	// number type with bad text fails and stays open
	m, _ = press(m, keyClear, runes("port"), keyTab, keySpace, keyTab, runes("eighty"), keyEnter)
	require.Equal(t, modeAdd, m.mode)
	require.ErrorIs(t, m.node.Err(), settings.ErrInvalidNumber)

	m, cmd = press(m, keyClear, runes("8080"), keyEnter)
	m = settle(t, m, cmd)
	requireDoc(t, `{"name": "x", "port": 8080}`, fb.last(t))
	require.Equal(t, []string{"name", "port"}, m.doc.Keys())
	row, ok := m.current()
	require.True(t, ok)
	require.Equal(t, "port", row.Label)
}

func TestEditorQuickToggleAndCancel(t *testing.T) {
	m, fb := newEditor(t, `{"on": false, "text": "a"}`)

	m, cmd := press(m, keySpace)
	m = settle(t, m, cmd)
	requireDoc(t, `{"on": true, "text": "a"}`, fb.last(t))

	m, cmd = press(m, keyDown, runes("e"), runes("bc"), keyEsc)
	require.Nil(t, cmd)
	require.Equal(t, modeBrowse, m.mode)
	requireDoc(t, `{"on": true, "text": "a"}`, m.doc)

	// composites cannot be edited in place
	m, _ = newEditor(t, `{"obj": {}}`)
	m, _ = press(m, runes("e"))
	require.ErrorIs(t, m.err, editor.ErrNotEditable)
}

func TestEditorPersistFailureKeepsLocalChange(t *testing.T) {
	m, fb := newEditor(t, `{"n": 1}`)
	fb.failNext = &api.StatusError{Code: 500, Detail: "disk full"}

	m, cmd := press(m, runes("e"), keyClear, runes("2"), keyEnter)
	m = settle(t, m, cmd)
	var pe *syncer.PersistError
	require.ErrorAs(t, m.err, &pe)
	requireDoc(t, `{"n": 2}`, m.doc)
	require.Equal(t, "error.persist", ErrorText(m.err))
}

func TestEditorCollapse(t *testing.T) {
	m, _ := newEditor(t, `{"a": {"b": 1}, "c": 2}`)
	require.Len(t, m.rows, 3)

	m, _ = press(m, runes("h"))
	require.Len(t, m.rows, 2)
	require.True(t, m.rows[0].Collapsed)

	m, _ = press(m, runes("l"))
	require.Len(t, m.rows, 3)

	// left on a leaf jumps to its parent
	m, _ = press(m, keyDown, runes("h"))
	require.Equal(t, 0, m.cursor)
}

func TestAppLoginFlow(t *testing.T) {
	fb := &fakeBackend{skills: []api.Skill{
		{ID: "skill-weather.openvoiceos", Settings: settings.MustParse(`{"units": "metric"}`)},
	}}
	var stored string
	a := NewApp(context.Background(), fb, Options{
		Theme:   "dark",
		OnLogin: func(h string) error { stored = h; return nil },
	})
	require.Equal(t, screenLogin, a.screen)

	var model tea.Model = a
	for _, k := range []tea.KeyMsg{runes("ana"), keyTab, runes("wrong"), keyEnter} {
		model, _ = model.Update(k)
	}
	a = model.(App)
	require.True(t, a.login.busy)

	msg := loginCmd(t, a)
	model, _ = a.Update(msg)
	a = model.(App)
	require.Equal(t, screenLogin, a.screen)
	require.ErrorIs(t, a.login.err, api.ErrAuthenticationFailed)
	require.Empty(t, a.login.pass.Value())

	for _, k := range []tea.KeyMsg{runes("secret"), keyEnter} {
		model, _ = model.Update(k)
	}
	a = model.(App)
	model, cmd := a.Update(loginCmd(t, a))
	a = model.(App)
	require.Equal(t, screenSkills, a.screen)
	require.Equal(t, api.BasicHeader("ana", "secret"), stored)

	model, _ = a.Update(cmd())
	a = model.(App)
	require.Len(t, a.skills.filtered, 1)

	model, cmd = a.Update(keyEnter)
	model, _ = model.Update(cmd())
	a = model.(App)
	require.Equal(t, screenEditor, a.screen)
	require.Equal(t, "skill-weather.openvoiceos", a.editor.Skill())

	model, cmd = a.Update(keyEsc)
	model, _ = model.Update(cmd())
	require.Equal(t, screenSkills, model.(App).screen)
}

func loginCmd(t *testing.T, a App) tea.Msg {
	t.Helper()
	_, cmd := a.login.submit()
	require.NotNil(t, cmd)
	return cmd()
}

func TestAppUnauthenticatedReturnsToLogin(t *testing.T) {
	fb := &fakeBackend{header: "Basic stale"}
	loggedOut := 0
	a := NewApp(context.Background(), fb, Options{OnLogout: func() error { loggedOut++; return nil }})
	require.Equal(t, screenSkills, a.screen)

	model, _ := a.Update(skillsLoadedMsg{err: api.ErrUnauthenticated})
	a = model.(App)
	require.Equal(t, screenLogin, a.screen)
	require.Empty(t, fb.AuthHeader())
	require.Equal(t, 1, loggedOut)
}

func TestAppRejectsStoredHeaderOnStart(t *testing.T) {
	fb := &fakeBackend{header: "Basic stale", valid: "Basic good"}
	loggedOut := 0
	a := NewApp(context.Background(), fb, Options{OnLogout: func() error { loggedOut++; return nil }})

	cmd := a.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, authCheckedMsg{}, msg)

	model, cmd := a.Update(msg)
	a = model.(App)
	require.Nil(t, cmd)
	require.Equal(t, screenLogin, a.screen)
	require.Empty(t, fb.AuthHeader())
	require.Equal(t, 1, loggedOut)
	require.Empty(t, a.user)
}

func TestAppAcceptsStoredHeaderOnStart(t *testing.T) {
	fb := &fakeBackend{header: "Basic good", valid: "Basic good", skills: []api.Skill{
		{ID: "skill-weather.openvoiceos", Settings: settings.MustParse(`{"units": "metric"}`)},
	}}
	a := NewApp(context.Background(), fb, Options{})

	model, cmd := a.Update(a.Init()())
	a = model.(App)
	require.Equal(t, "ana", a.user)
	require.Equal(t, screenSkills, a.screen)
	require.NotNil(t, cmd)

	model, _ = a.Update(cmd())
	a = model.(App)
	require.Len(t, a.skills.filtered, 1)
	require.Equal(t, "Basic good", fb.AuthHeader())
}

func TestAppStartKeepsHeaderWhenBackendIsDown(t *testing.T) {
	fb := &fakeBackend{header: "Basic good"}
	a := NewApp(context.Background(), fb, Options{
		OnLogout: func() error { t.Fatal("credential must be kept"); return nil },
	})

	down := &api.NetworkError{Op: "login", Err: errors.New("connection refused")}
	model, _ := a.Update(authCheckedMsg{err: down})
	a = model.(App)
	require.Equal(t, screenSkills, a.screen)
	require.Equal(t, "Basic good", fb.AuthHeader())
	require.ErrorIs(t, a.skills.err, down)
}

func TestAppShowsFailedSaveAfterEditorCloses(t *testing.T) {
	fb := &fakeBackend{header: "Basic good"}
	var model tea.Model = NewApp(context.Background(), fb, Options{})
	model, _ = model.Update(skillsLoadedMsg{skills: []api.Skill{
		{ID: "skill-alarm.jarbas", Settings: settings.MustParse(`{"volume": 5}`)},
	}})
	model, _ = model.Update(openSkillMsg{id: "skill-alarm.jarbas"})
	require.Equal(t, screenEditor, model.(App).screen)

	fb.failNext = &api.StatusError{Code: 500, Detail: "disk full"}
	var persist tea.Cmd
	for _, k := range []tea.KeyMsg{runes("e"), keyClear, runes("7"), keyEnter} {
		model, persist = model.Update(k)
	}
	require.NotNil(t, persist)

	model, closeCmd := model.Update(keyEsc)
	model, _ = model.Update(closeCmd())
	require.Equal(t, screenSkills, model.(App).screen)
	require.NotContains(t, model.View(), "error.persist")

	model, _ = model.Update(persist())
	require.Contains(t, model.View(), "error.persist")
}

func TestSkillsFilterAndHideEmpty(t *testing.T) {
	m := NewSkillsModel(false, NewStyles("light"))
	m.SetSkills([]api.Skill{
		{ID: "skill-weather.openvoiceos", Settings: settings.MustParse(`{"units": "metric"}`)},
		{ID: "skill-alarm.jarbas", Settings: settings.MustParse(`{"__mycroft_skill_firstrun": false}`)},
	}, nil)
	require.Len(t, m.filtered, 2)

	m, _ = m.Update(keyTab)
	require.True(t, m.HideEmpty())
	require.Len(t, m.filtered, 1)
	m, _ = m.Update(keyTab)

	m, _ = m.Update(runes("alarm"))
	require.Len(t, m.filtered, 1)
	s, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, "skill-alarm.jarbas", s.ID)

	m, _ = m.Update(keyEsc)
	require.Len(t, m.filtered, 2)

	m.SetSkills(nil, errors.New("boom"))
	require.Contains(t, m.View(), "skills.fetchFailed")
}

func TestPreviewCutsOnCharacterBoundary(t *testing.T) {
	long := settings.String(strings.Repeat("알람", 40))
	got := preview(long)
	require.True(t, utf8.ValidString(got))
	require.True(t, strings.HasSuffix(got, "..."))
	require.LessOrEqual(t, ansi.StringWidth(got), previewWidth)

	require.Equal(t, `"short"`, preview(settings.String("short")))
}

func TestConfirmModel(t *testing.T) {
	c := NewConfirmModel("Delete?", "", NewStyles("dark"))
	c, _ = c.Update(keyEnter)
	require.True(t, c.Done())
	require.False(t, c.Answer())

	c = NewConfirmModel("Delete?", "", NewStyles("dark"))
	c, _ = c.Update(keyTab)
	c, _ = c.Update(keyEnter)
	require.True(t, c.Answer())
}

func TestErrorText(t *testing.T) {
	tests := map[error]string{
		api.ErrAuthenticationFailed:                       "error.authFailed",
		fmt.Errorf("x: %w", settings.ErrInvalidNumber):    "error.invalidNumber",
		&api.StatusError{Code: 404}:                       "error.server",
		&api.NetworkError{Op: "get", Err: errors.New("")}: "error.network",
		editor.ErrEmptyKey:                                "error.emptyKey",
		store.ErrNoHistory:                                "error.noHistory",
		errors.New("plain"):                               "plain",
	}
	for err, want := range tests {
		require.Equal(t, want, ErrorText(err))
	}
}
