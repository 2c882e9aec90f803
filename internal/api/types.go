package api

import (
	"errors"
	"fmt"

	"github.com/egoavara/ovos-settings/internal/settings"
)

// FirstRunKey is written by the skill runtime and hidden from users
const FirstRunKey = "__mycroft_skill_firstrun"

// Skill is one entry of the skills listing
type Skill struct {
	ID       string         `json:"id"`
	Settings settings.Value `json:"settings"`
}

// Setting is the response of the single-key lookup
type Setting struct {
	ID    string         `json:"id"`
	Key   string         `json:"key"`
	Value settings.Value `json:"value"`
}

type loginResponse struct {
	Username string `json:"username"`
}

var (
	// ErrAuthenticationFailed hides whatever the server said about bad credentials
	ErrAuthenticationFailed = errors.New("invalid username or password")
	// ErrUnauthenticated means the stored credential is missing or was rejected
	ErrUnauthenticated = errors.New("not logged in")
)

// StatusError is a non-2xx reply from the backend
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Detail)
}

// NetworkError wraps a transport failure
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == 404
}

// StripHidden removes runtime-internal keys from a settings document and
// returns them separately so they can be re-attached on save.
func StripHidden(doc settings.Value) (visible settings.Value, hidden *settings.Object) {
	if doc.Kind() != settings.KindObject {
		return doc, nil
	}
	v, ok := doc.Field(FirstRunKey)
	if !ok {
		return doc, nil
	}
	hidden = settings.NewObject().Set(FirstRunKey, v)
	visible, _ = settings.Delete(doc, settings.Path{settings.Key(FirstRunKey)})
	return visible, hidden
}

// WithHidden appends the hidden keys back onto doc, unless doc already has them
func WithHidden(doc settings.Value, hidden *settings.Object) settings.Value {
	if hidden == nil || hidden.Len() == 0 || doc.Kind() != settings.KindObject {
		return doc
	}
	out := doc
	for _, k := range hidden.Keys() {
		if _, ok := out.Field(k); ok {
			continue
		}
		v, _ := hidden.Get(k)
		out, _ = settings.Write(out, settings.Path{settings.Key(k)}, v)
	}
	return out
}
