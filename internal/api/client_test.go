package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			http.Error(w, `{"detail":"bad password for admin"}`, http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"username": user})
	})
	c := newTestClient(t, mux)

	_, err := c.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	require.NotContains(t, err.Error(), "admin")
	require.Empty(t, c.AuthHeader())

	name, err := c.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	require.Equal(t, "admin", name)
	require.Equal(t, BasicHeader("admin", "secret"), c.AuthHeader())

	_, err = c.Validate(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRequestsCarryHeaderAndKeepOrder(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/skills", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `[{"id":"skill-weather.openvoiceos","settings":{"units":"metric","lang":"en"}}]`)
	})
	mux.HandleFunc("POST /api/v1/skills/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, `{"id":"`+r.PathValue("id")+`","settings":`+string(gotBody)+`}`)
	})
	c := newTestClient(t, mux, WithAuthHeader("Basic abc"))

	skills, err := c.ListSkills(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Basic abc", gotAuth)
	require.Len(t, skills, 1)
	require.Equal(t, []string{"units", "lang"}, skills[0].Settings.Keys())

	doc := settings.MustParse(`{"z": 1, "a": [true]}`)
	out, err := c.ReplaceSettings(context.Background(), "skill-weather.openvoiceos", doc)
	require.NoError(t, err)
	require.Equal(t, `{"z":1,"a":[true]}`, string(gotBody))
	require.True(t, settings.Equal(doc, out))
}

func TestStatusErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/skills/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"title":"Not Found","status":404,"detail":"Skill not found"}`)
	})
	mux.HandleFunc("POST /api/v1/skills/{id}/merge", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "disk full")
	})
	mux.HandleFunc("GET /api/v1/skills", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(t, mux, WithAuthHeader("Basic abc"))

	_, err := c.GetSkill(context.Background(), "missing")
	require.True(t, IsNotFound(err))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "Skill not found", se.Detail)

	_, err = c.MergeSettings(context.Background(), "x", settings.MustParse(`{"a":1}`))
	require.ErrorAs(t, err, &se)
	require.Equal(t, 500, se.Code)
	require.Equal(t, "disk full", se.Detail)

	_, err = c.ListSkills(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.Empty(t, c.AuthHeader(), "a 401 drops the stored header")
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.ListSkills(context.Background())
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("not a url")
	require.Error(t, err)
}

func TestHiddenKeys(t *testing.T) {
	doc := settings.MustParse(`{"volume": 5, "__mycroft_skill_firstrun": false}`)

	visible, hidden := StripHidden(doc)
	require.Equal(t, []string{"volume"}, visible.Keys())
	require.NotNil(t, hidden)

	restored := WithHidden(visible, hidden)
	require.True(t, settings.Equal(doc, restored))

	plain, none := StripHidden(settings.MustParse(`{"a": 1}`))
	require.Nil(t, none)
	require.Equal(t, []string{"a"}, plain.Keys())
}
