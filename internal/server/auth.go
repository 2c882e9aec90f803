package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

const sessionCookie = "ovos_settings_session"

var errUnauthorized = errors.New("unauthorized")

type sessionPayload struct {
	Exp int64  `json:"exp"`
	Sub string `json:"sub"`
	N   string `json:"n,omitempty"`
}

// Auth checks Basic credentials and signed session cookies. A zero Auth
// (no username) accepts every request.
type Auth struct {
	Username string
	Password string
	Secret   []byte
	TTL      time.Duration
}

// Enabled reports whether credentials are configured
func (a *Auth) Enabled() bool { return a != nil && a.Username != "" }

// CheckBasic validates an Authorization header and returns the username.
// With auth disabled any well-formed header is accepted.
func (a *Auth) CheckBasic(header string) (string, error) {
	user, pass, ok := parseBasic(header)
	if !ok {
		return "", errUnauthorized
	}
	if !a.Enabled() {
		return user, nil
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(a.Password)) == 1
	if !userOK || !passOK {
		return "", errUnauthorized
	}
	return user, nil
}

// Allow reports whether r carries a valid credential
func (a *Auth) Allow(r *http.Request) bool {
	if !a.Enabled() {
		return true
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if _, err := a.CheckBasic(h); err == nil {
			return true
		}
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := a.verify(c.Value); err == nil {
			return true
		}
	}
	return false
}

// SessionCookie issues a signed session for user
func (a *Auth) SessionCookie(user string) (http.Cookie, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return http.Cookie{}, err
	}
	exp := time.Now().Add(a.TTL)
	token, err := a.sign(sessionPayload{
		Sub: user,
		N:   base64.RawURLEncoding.EncodeToString(nonce),
		Exp: exp.Unix(),
	})
	if err != nil {
		return http.Cookie{}, err
	}
	return http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func (a *Auth) sign(p sessionPayload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	body := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, a.Secret)
	_, _ = mac.Write([]byte(body))
	return body + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (a *Auth) verify(token string) (sessionPayload, error) {
	body, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok {
		return sessionPayload{}, errors.New("invalid token format")
	}
	mac := hmac.New(sha256.New, a.Secret)
	_, _ = mac.Write([]byte(body))
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(mac.Sum(nil), got) {
		return sessionPayload{}, errors.New("invalid token signature")
	}

	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return sessionPayload{}, errors.New("invalid token payload")
	}
	var p sessionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return sessionPayload{}, errors.New("invalid token payload")
	}
	if p.Exp == 0 || time.Now().Unix() > p.Exp {
		return sessionPayload{}, errors.New("token expired")
	}
	if p.Sub != a.Username {
		return sessionPayload{}, errors.New("token subject mismatch")
	}
	return p, nil
}

func parseBasic(header string) (user, pass string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", false
	}
	user, pass, ok = strings.Cut(string(raw), ":")
	if !ok || user == "" {
		return "", "", false
	}
	return user, pass, true
}

// randomSecret creates a signing key for the lifetime of the process
func randomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
