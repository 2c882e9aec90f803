package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/egoavara/ovos-settings/internal/settings"
)

const (
	basePath         = "/api/v1"
	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 4 << 10
)

// Client talks to the settings backend
type Client struct {
	baseURL string
	http    *http.Client

	mu         sync.RWMutex
	authHeader string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http client. A cookie jar is added
// when the client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAuthHeader starts the client with a stored credential header
func WithAuthHeader(header string) Option {
	return func(c *Client) { c.authHeader = header }
}

// New creates a client for the backend at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}

	c := &Client{baseURL: strings.TrimRight(u.String(), "/")}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// BaseURL returns the server root without trailing slash
func (c *Client) BaseURL() string { return c.baseURL }

// AuthHeader returns the stored credential header ("" when logged out)
func (c *Client) AuthHeader() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authHeader
}

// SetAuthHeader replaces the stored credential header
func (c *Client) SetAuthHeader(h string) {
	c.mu.Lock()
	c.authHeader = h
	c.mu.Unlock()
}

// BasicHeader builds the Authorization value for a username and password
func BasicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

// Login checks the credentials and stores the header on success
func (c *Client) Login(ctx context.Context, user, pass string) (string, error) {
	header := BasicHeader(user, pass)
	name, err := c.Validate(ctx, header)
	if err != nil {
		return "", err
	}
	c.SetAuthHeader(header)
	return name, nil
}

// Validate posts header to the login endpoint and returns the username.
// Any non-2xx answer is ErrAuthenticationFailed.
func (c *Client) Validate(ctx context.Context, header string) (string, error) {
	if header == "" {
		return "", ErrUnauthenticated
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+basePath+"/auth/login", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", header)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", ErrAuthenticationFailed
	}
	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	return out.Username, nil
}

// ListSkills returns every skill with settings
func (c *Client) ListSkills(ctx context.Context) ([]Skill, error) {
	var out []Skill
	if err := c.do(ctx, http.MethodGet, "/skills", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSkill fetches one skill
func (c *Client) GetSkill(ctx context.Context, id string) (Skill, error) {
	var out Skill
	err := c.do(ctx, http.MethodGet, "/skills/"+url.PathEscape(id), nil, &out)
	return out, err
}

// GetSetting fetches a single top-level key of a skill
func (c *Client) GetSetting(ctx context.Context, id, key string) (Setting, error) {
	var out Setting
	err := c.do(ctx, http.MethodGet, "/skills/"+url.PathEscape(id)+"/settings/"+url.PathEscape(key), nil, &out)
	return out, err
}

// ReplaceSettings overwrites the whole settings document of a skill
func (c *Client) ReplaceSettings(ctx context.Context, id string, doc settings.Value) (settings.Value, error) {
	var out Skill
	if err := c.do(ctx, http.MethodPost, "/skills/"+url.PathEscape(id), doc, &out); err != nil {
		return settings.Value{}, err
	}
	return out.Settings, nil
}

// MergeSettings merges a partial object into a skill's settings
func (c *Client) MergeSettings(ctx context.Context, id string, partial settings.Value) (settings.Value, error) {
	var out Skill
	if err := c.do(ctx, http.MethodPost, "/skills/"+url.PathEscape(id)+"/merge", partial, &out); err != nil {
		return settings.Value{}, err
	}
	return out.Settings, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	header := c.AuthHeader()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+basePath+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()
	slog.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.SetAuthHeader("")
		return ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Detail: errorDetail(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorDetail extracts the message of a huma problem document, falling back
// to the raw body text.
func errorDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	var problem struct {
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(raw, &problem); err == nil {
		if problem.Detail != "" {
			return problem.Detail
		}
		if problem.Title != "" {
			return problem.Title
		}
	}
	return strings.TrimSpace(string(raw))
}
