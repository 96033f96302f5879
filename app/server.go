package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const errorPage = `<!DOCTYPE html><html><head><title>Error</title></head><body><p>Sorry, unable to open the page at this time.</p></body></html>`

type Server struct {
	addr     string
	router   *chi.Mux
	registry *Registry
	logger   *slog.Logger
	metrics  http.Handler
	server   *http.Server
}

type ServerOption func(*Server)

func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler exposes h at /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

func NewServer(addr string, registry *Registry, opts ...ServerOption) *Server {
	s := &Server{
		addr:     addr,
		router:   chi.NewRouter(),
		registry: registry,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/", s.handleEntry(EntryGet))

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", s.addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (s *Server) handleEntry(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.registry.Dispatch(r.Context(), name, r)
		if err != nil {
			s.fail(w, r, name, err)
			return
		}

		doc, err := resp.Document()
		if err != nil {
			s.fail(w, r, name, err)
			return
		}

		if err := resp.writeDocument(w, doc); err != nil {
			s.logger.Error("failed to write response", "entry", name, "error", err)
		}
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, name string, err error) {
	s.logger.Error("entry point failed",
		"entry", name,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(errorPage))
}
