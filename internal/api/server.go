// Package api provides the HTTP API for heritage searches.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/heritage-cli/internal/arcgis"
	"github.com/sells-group/heritage-cli/internal/geodesy"
	"github.com/sells-group/heritage-cli/internal/search"
)

// Searcher is the search surface the API needs.
type Searcher interface {
	Search(ctx context.Context, centroid geodesy.Coordinate, radiusKm float64) (*search.Result, error)
	FindByPostcode(ctx context.Context, postcode string, radiusKm float64) (*search.Result, error)
	Endpoints() []arcgis.Endpoint
}

// Options configures a Server.
type Options struct {
	Port            int
	CORSOrigins     []string
	DefaultRadiusKm float64
	// RequestTimeout bounds each request; zero means 60s.
	RequestTimeout time.Duration
}

// Server is the HTTP server for the heritage API.
type Server struct {
	searcher Searcher
	opts     Options
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server backed by searcher.
func NewServer(searcher Searcher, opts Options, logger *zap.Logger) *Server {
	if opts.DefaultRadiusKm <= 0 {
		opts.DefaultRadiusKm = search.DefaultRadiusKm
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		searcher: searcher,
		opts:     opts,
		logger:   logger,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/assets", s.handleAssets)
		r.Get("/assessment", s.handleAssessment)
		r.Get("/endpoints", s.handleEndpoints)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("api: starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
