package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/editor"
	"github.com/egoavara/ovos-settings/internal/i18n"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/egoavara/ovos-settings/internal/store"
	"github.com/egoavara/ovos-settings/internal/syncer"
)

// Backend is what the editor needs from the settings server
type Backend interface {
	syncer.Remote
	Login(ctx context.Context, user, pass string) (string, error)
	Validate(ctx context.Context, header string) (string, error)
	ListSkills(ctx context.Context) ([]api.Skill, error)
	AuthHeader() string
	SetAuthHeader(header string)
}

type loginResultMsg struct {
	user   string
	header string
	err    error
}

type authCheckedMsg struct {
	user string
	err  error
}

type skillsLoadedMsg struct {
	skills []api.Skill
	err    error
}

type persistedMsg struct {
	skill string
	op    string
	err   error
}

type openSkillMsg struct{ id string }

type closeEditorMsg struct{}

// ErrorText renders err for people. Known errors get a translated message;
// the rest fall back to err.Error().
func ErrorText(err error) string {
	var (
		status  *api.StatusError
		network *api.NetworkError
		persist *syncer.PersistError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrAuthenticationFailed):
		return i18n.T("error.authFailed", nil)
	case errors.Is(err, api.ErrUnauthenticated):
		return i18n.T("error.unauthenticated", nil)
	case errors.As(err, &persist):
		return i18n.T("error.persist", map[string]any{"Skill": persist.Skill, "Reason": ErrorText(persist.Err)})
	case errors.As(err, &status):
		return i18n.T("error.server", map[string]any{"Code": status.Code, "Detail": status.Detail})
	case errors.As(err, &network):
		return i18n.T("error.network", map[string]any{"Reason": network.Err.Error()})
	case errors.Is(err, settings.ErrInvalidNumber):
		return i18n.T("error.invalidNumber", nil)
	case errors.Is(err, settings.ErrInvalidBoolean):
		return i18n.T("error.invalidBoolean", nil)
	case errors.Is(err, settings.ErrInvalidPath):
		return i18n.T("error.invalidPath", nil)
	case errors.Is(err, settings.ErrInvalidTarget):
		return i18n.T("error.invalidTarget", nil)
	case errors.Is(err, settings.ErrNotFound):
		return i18n.T("error.notFound", nil)
	case errors.Is(err, editor.ErrEmptyKey):
		return i18n.T("error.emptyKey", nil)
	case errors.Is(err, editor.ErrDuplicateKey):
		return i18n.T("error.duplicateKey", nil)
	case errors.Is(err, editor.ErrRootDelete):
		return i18n.T("error.rootDelete", nil)
	case errors.Is(err, store.ErrNoHistory):
		return i18n.T("error.noHistory", nil)
	case errors.Is(err, store.ErrUnknownSkill):
		return i18n.T("error.unknownSkill", nil)
	}
	return fmt.Sprint(err)
}
