// Package server exposes the quiz builder over HTTP: HTML pages for the
// quiz list, viewer and admin editor, and a JSON API under /api.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/quizgrid/pkg/buildinfo"
	"github.com/matzehuels/quizgrid/pkg/cache"
	"github.com/matzehuels/quizgrid/pkg/config"
	"github.com/matzehuels/quizgrid/pkg/editor"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// Server routes requests to an editor. Rendered pages are kept in Cache.
type Server struct {
	Editor *editor.Editor
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	router chi.Router
}

// New creates a server. A nil cache disables page caching, a nil keyer
// means cache.DefaultKeyer, and a nil logger discards output.
func New(ed *editor.Editor, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{Editor: ed, Cache: c, Keyer: keyer, Logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok")
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})

	r.Get("/", s.handleList)
	r.Post("/quiz/new", s.handleCreate)
	r.Get("/quiz/{id}", s.handleView)
	r.Route("/quiz/admin/{id}", func(r chi.Router) {
		r.Get("/", s.handleAdmin)
		r.Post("/", s.handleSubmit)
		r.Post("/place", s.handlePlace)
		r.Post("/components/{cid}/delete", s.handleRemove)
	})

	r.Route("/api/quizzes", func(r chi.Router) {
		r.Get("/", s.apiList)
		r.Post("/", s.apiCreate)
		r.Get("/{id}", s.apiGet)
		r.Delete("/{id}", s.apiDelete)
		r.Put("/{id}/components", s.apiReplace)
		r.Post("/{id}/components", s.apiPlace)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe listens on cfg.Addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.Server) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully, giving in-flight requests cfg.ShutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg config.Server) error {
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.Logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout.Duration
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.Logger.Info("shutting down", "timeout", timeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
