package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/egoavara/ovos-settings/internal/version"
	"github.com/google/uuid"
)

const (
	defaultSessionTTL = 24 * time.Hour
	shutdownTimeout   = 5 * time.Second
	requestIDHeader   = "X-Request-ID"
)

// Options configures the settings backend
type Options struct {
	Addr     string
	Root     string
	Username string
	Password string
	// Watch enables the fsnotify listing invalidation
	Watch bool
}

// Server is the skill settings REST backend
type Server struct {
	opts    Options
	store   *FSStore
	auth    *Auth
	handler http.Handler
}

// New builds the backend. An empty Root means SkillsRoot().
func New(opts Options) (*Server, error) {
	if opts.Root == "" {
		opts.Root = SkillsRoot()
	}
	secret, err := randomSecret()
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:  opts,
		store: NewFSStore(opts.Root),
		auth: &Auth{
			Username: opts.Username,
			Password: opts.Password,
			Secret:   secret,
			TTL:      defaultSessionTTL,
		},
	}

	mux := http.NewServeMux()
	humaAPI := humago.New(mux, huma.DefaultConfig("OVOS Skill Settings API", version.Version))
	registerHandlers(humaAPI, &handlers{store: s.store, auth: s.auth})

	s.handler = withRequestID(withAccessLog(s.withAuth(mux)))
	return s, nil
}

// Handler returns the root http handler
func (s *Server) Handler() http.Handler { return s.handler }

// Store returns the file store behind the API
func (s *Server) Store() *FSStore { return s.store }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.opts.Watch {
		w, err := NewWatcher(s.store)
		if err != nil {
			slog.Warn("skills watcher disabled", "err", err)
		} else {
			go func() {
				if err := w.Run(ctx); err != nil {
					slog.Error("skills watcher stopped", "err", err)
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("settings backend listening", "addr", s.opts.Addr, "root", s.store.Root(), "auth", s.auth.Enabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, skillsPath) && !s.auth.Allow(r) {
			w.Header().Set("Content-Type", "application/problem+json")
			w.Header().Set("WWW-Authenticate", `Basic realm="ovos-settings"`)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"title":"Unauthorized","status":401,"detail":"Authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
			"request_id", r.Header.Get(requestIDHeader),
		)
	})
}
