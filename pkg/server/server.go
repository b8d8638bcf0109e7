// Package server exposes card panels over HTTP.
//
// The service computes layouts for posted item lists, renders the panel of
// a configured vault, and keeps panels open as sessions so a client can
// poll the layout and close the panel later.
//
//	GET    /healthz
//	POST   /api/v1/layout
//	GET    /api/v1/panel.{format}?width=&height=
//	POST   /api/v1/sessions
//	GET    /api/v1/sessions/{id}
//	DELETE /api/v1/sessions/{id}
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cardmap/pkg/panel"
	"github.com/matzehuels/cardmap/pkg/pipeline"
	"github.com/matzehuels/cardmap/pkg/session"
)

const (
	// DefaultRequestTimeout bounds each request.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultCleanupInterval is how often expired sessions are closed.
	DefaultCleanupInterval = time.Minute

	maxBodyBytes = 1 << 20
)

// Config holds the collaborators of a Server.
type Config struct {
	// Runner computes layouts and artifacts. Required.
	Runner *pipeline.Runner

	// Vault backs GET /api/v1/panel.* and sessions opened without items.
	// Nil disables both.
	Vault panel.ItemSource

	// Defaults are merged into every request's options.
	Defaults pipeline.Options

	// SessionTTL is the lifetime of an open panel. Zero means session.DefaultTTL.
	SessionTTL time.Duration

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	vault    panel.ItemSource
	defaults pipeline.Options
	ttl      time.Duration
	sessions *session.MemoryStore
	logger   *log.Logger
	router   chi.Router
}

// New creates a server. Ended sessions are released through the runner so
// the runner's registry stops tracking their views.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = cfg.Runner.Logger
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}

	s := &Server{
		runner:   cfg.Runner,
		vault:    cfg.Vault,
		defaults: cfg.Defaults,
		ttl:      cfg.SessionTTL,
		sessions: session.NewMemoryStore(cfg.Runner.Release),
		logger:   cfg.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(DefaultRequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/panel.{format}", s.handlePanel)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleOpenSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleCloseSession)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the session store.
func (s *Server) Sessions() *session.MemoryStore {
	return s.sessions
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// and closes every open session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go s.sessions.RunCleanup(cleanupCtx, DefaultCleanupInterval)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down", "sessions", s.sessions.Len())
	err := srv.Shutdown(shutdownCtx)
	return errors.Join(err, s.sessions.Close(shutdownCtx))
}
