package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/pipeline"
	"github.com/matzehuels/popdyn/pkg/store"
)

// DefaultShutdownTimeout bounds how long outstanding requests may take
// after shutdown begins.
const DefaultShutdownTimeout = 10 * time.Second

// Dependencies are the collaborators the handlers use.
type Dependencies struct {
	Store  store.Repository
	Runner *pipeline.Runner
	Panels *panels.Controller
}

// Config configures the HTTP server.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration

	// Defaults are applied to treemap requests before query parameters.
	Defaults pipeline.Options

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	router *chi.Mux
	deps   Dependencies
	cfg    Config
	logger *log.Logger
	server *http.Server
}

// New creates a server. A nil Runner gets an uncached one.
func New(cfg Config, deps Dependencies) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if deps.Runner == nil {
		deps.Runner = pipeline.NewRunner(nil, nil, logger)
	}

	s := &Server{deps: deps, cfg: cfg, logger: logger}

	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/treemap", s.treemapJSON)
		r.Get("/treemap.svg", s.treemapSVG)

		r.Get("/items", s.listItems)
		r.Put("/items", s.putItems)
		r.Get("/items/{id}", s.getItem)
		r.Get("/categories", s.categories)

		r.Get("/metrics", s.getMetrics)
		r.Put("/metrics", s.putMetrics)

		r.Route("/panels", func(r chi.Router) {
			r.Get("/", s.getPanels)
			r.Post("/override", s.setOverride)
			r.Delete("/override", s.resetOverride)
			r.Post("/pin", s.pin)
			r.Delete("/pin", s.unpin)
			r.Post("/hover", s.hover)
			r.Delete("/hover", s.unhover)
		})
	})

	s.router = router
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.server.Addr)
		serverErrors <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("graceful shutdown failed", "err", err)
			return s.server.Close()
		}
		return nil
	}
}
