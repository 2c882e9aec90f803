package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/settings"
)

const (
	skillsTag  = "Skills"
	authTag    = "Auth"
	apiPrefix  = "/api/v1"
	skillsPath = apiPrefix + "/skills"
)

type skillIDInput struct {
	ID string `path:"id" doc:"Skill identifier, the directory name under the skills root"`
}

type settingInput struct {
	ID  string `path:"id"`
	Key string `path:"key"`
}

type writeInput struct {
	ID      string `path:"id"`
	RawBody []byte
}

type loginInput struct {
	Authorization string `header:"Authorization" required:"true"`
}

type loginOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Username string `json:"username"`
	}
}

type skillOutput struct{ Body api.Skill }

type listOutput struct{ Body []api.Skill }

type settingOutput struct{ Body api.Setting }

type handlers struct {
	store *FSStore
	auth  *Auth
}

func registerHandlers(humaAPI huma.API, h *handlers) {
	huma.Register(humaAPI, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/auth/login",
		Summary:     "Check Basic credentials and start a session",
		Tags:        []string{authTag},
	}, h.login)

	huma.Register(humaAPI, huma.Operation{
		OperationID: "list-skills",
		Method:      http.MethodGet,
		Path:        skillsPath,
		Summary:     "List skills that have a settings file",
		Tags:        []string{skillsTag},
	}, h.listSkills)

	huma.Register(humaAPI, huma.Operation{
		OperationID: "get-skill",
		Method:      http.MethodGet,
		Path:        skillsPath + "/{id}",
		Summary:     "Get the settings of one skill",
		Tags:        []string{skillsTag},
	}, h.getSkill)

	huma.Register(humaAPI, huma.Operation{
		OperationID: "get-skill-setting",
		Method:      http.MethodGet,
		Path:        skillsPath + "/{id}/settings/{key}",
		Summary:     "Get one top-level setting",
		Tags:        []string{skillsTag},
	}, h.getSetting)

	huma.Register(humaAPI, huma.Operation{
		OperationID: "merge-skill-settings",
		Method:      http.MethodPost,
		Path:        skillsPath + "/{id}/merge",
		Summary:     "Merge a partial object into the settings",
		Tags:        []string{skillsTag},
	}, h.mergeSettings)

	huma.Register(humaAPI, huma.Operation{
		OperationID: "replace-skill-settings",
		Method:      http.MethodPost,
		Path:        skillsPath + "/{id}",
		Summary:     "Replace the whole settings document",
		Tags:        []string{skillsTag},
	}, h.replaceSettings)
}

func (h *handlers) login(ctx context.Context, in *loginInput) (*loginOutput, error) {
	user, err := h.auth.CheckBasic(in.Authorization)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid credentials")
	}
	cookie, err := h.auth.SessionCookie(user)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to create session", err)
	}
	out := &loginOutput{SetCookie: cookie}
	out.Body.Username = user
	return out, nil
}

func (h *handlers) listSkills(ctx context.Context, _ *struct{}) (*listOutput, error) {
	skills, err := h.store.List()
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &listOutput{Body: skills}, nil
}

func (h *handlers) getSkill(ctx context.Context, in *skillIDInput) (*skillOutput, error) {
	doc, err := h.store.Get(in.ID)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &skillOutput{Body: api.Skill{ID: in.ID, Settings: doc}}, nil
}

func (h *handlers) getSetting(ctx context.Context, in *settingInput) (*settingOutput, error) {
	v, err := h.store.GetKey(in.ID, in.Key)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &settingOutput{Body: api.Setting{ID: in.ID, Key: in.Key, Value: v}}, nil
}

func (h *handlers) replaceSettings(ctx context.Context, in *writeInput) (*skillOutput, error) {
	doc, err := parseBody(in.RawBody)
	if err != nil {
		return nil, err
	}
	saved, err := h.store.Replace(in.ID, doc)
	if err != nil {
		return nil, toHTTPError(err)
	}
	slog.Info("settings replaced", "skill", in.ID, "keys", saved.Len())
	return &skillOutput{Body: api.Skill{ID: in.ID, Settings: saved}}, nil
}

func (h *handlers) mergeSettings(ctx context.Context, in *writeInput) (*skillOutput, error) {
	partial, err := parseBody(in.RawBody)
	if err != nil {
		return nil, err
	}
	merged, err := h.store.Merge(in.ID, partial)
	if err != nil {
		return nil, toHTTPError(err)
	}
	slog.Info("settings merged", "skill", in.ID, "keys", partial.Len())
	return &skillOutput{Body: api.Skill{ID: in.ID, Settings: merged}}, nil
}

// parseBody decodes a JSON object keeping its key order
func parseBody(raw []byte) (settings.Value, error) {
	doc, err := settings.Parse(raw)
	if err != nil {
		return settings.Value{}, huma.Error400BadRequest("invalid JSON body", err)
	}
	if doc.Kind() != settings.KindObject {
		return settings.Value{}, huma.Error400BadRequest(ErrInvalidDocument.Error())
	}
	return doc, nil
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidSkillID), errors.Is(err, ErrInvalidDocument):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, ErrSkillNotFound):
		return huma.Error404NotFound("Skill not found")
	}
	slog.Error("settings backend failure", "err", err)
	return huma.Error500InternalServerError(err.Error())
}
