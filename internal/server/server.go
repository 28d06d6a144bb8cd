// Package server provides the HTTP API for rwascore.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hyperjump/rwascore/internal/config"
	"github.com/hyperjump/rwascore/internal/ingest"
	"github.com/hyperjump/rwascore/internal/metrics"
	"github.com/hyperjump/rwascore/internal/scoring"
	"github.com/hyperjump/rwascore/internal/storage"
)

// ModelState reports whether the lazily loaded model handles are resident.
type ModelState interface {
	Loaded() bool
}

// Server is the HTTP server for the rwascore API.
type Server struct {
	registry *scoring.Registry
	assets   *ingest.Service
	store    storage.AssetStore
	config   *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	model    ModelState
	version  string
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics exposes m on /metrics and records scoring calls into it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithModelState reports model residency on the status endpoint.
func WithModelState(m ModelState) Option {
	return func(s *Server) { s.model = m }
}

// WithVersion sets the version reported by the index and status endpoints.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a server with the given dependencies.
func NewServer(
	registry *scoring.Registry,
	assets *ingest.Service,
	store storage.AssetStore,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		registry: registry,
		assets:   assets,
		store:    store,
		config:   cfg,
		logger:   logger,
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.config.Debug {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Post("/score", s.handleScore)
	r.Post("/tokenize", s.handleTokenize)
	r.Get("/api/v1/assets/{id}", s.handleGetAsset)
	r.Get("/api/v1/status", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
