// Package api serves the read-only review query API.
//
// Every request loads the review sequence afresh from the configured
// reviews.Source and runs one of the query operations over it. Responses are
// JSON envelopes except the CSV export. All responses carry permissive CORS
// headers and OPTIONS always succeeds with an empty body.
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/conneroisu/ope/internal/logging"
	"github.com/conneroisu/ope/internal/query"
	"github.com/conneroisu/ope/internal/reviews"
	"github.com/conneroisu/ope/internal/version"
)

// Options configures a Server.
type Options struct {
	// BasePath prefixes every route, e.g. "/api".
	BasePath string
	// DefaultPerPage is used when per_page is missing or not a positive integer.
	DefaultPerPage int
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int
	// Registry receives the HTTP metrics. A fresh registry is created when nil.
	Registry *prometheus.Registry
	// Version is reported by the health endpoint.
	Version string
}

// Server is the API http.Handler.
type Server struct {
	source  reviews.Source
	logger  logging.Logger
	opts    Options
	metrics *Metrics
	router  chi.Router
}

// New returns a Server answering from source.
func New(source reviews.Source, logger logging.Logger, opts Options) *Server {
	opts.BasePath = strings.TrimRight(opts.BasePath, "/")
	if opts.DefaultPerPage < 1 {
		opts.DefaultPerPage = query.DefaultPerPage
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Version == "" {
		opts.Version = version.GetVersion()
	}

	s := &Server{
		source:  source,
		logger:  logger.WithComponent("api"),
		opts:    opts,
		metrics: NewMetrics(opts.Registry),
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Registry is the registry the HTTP metrics are recorded in.
func (s *Server) Registry() *prometheus.Registry {
	return s.opts.Registry
}

// BasePath is the prefix every API route lives under.
func (s *Server) BasePath() string {
	return s.opts.BasePath
}

// Endpoints lists the routes reported by the not-found response.
func (s *Server) Endpoints() []string {
	base := s.opts.BasePath
	return []string{
		base + "/reviews",
		base + "/reviews/<review_id>",
		base + "/search?q=<query>",
		base + "/analytics",
		base + "/export/csv",
		base + "/health",
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(cors)
	r.Use(s.metrics.Middleware)
	r.Use(s.accessLog)
	r.Use(s.recoverer)
	if s.opts.RateLimit > 0 {
		r.Use(rateLimit(s.opts.RateLimit))
	}

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	mount := func(r chi.Router) {
		r.NotFound(s.handleNotFound)
		r.MethodNotAllowed(s.handleNotFound)

		r.Get("/reviews", s.handleListReviews)
		r.Get("/reviews/{id}", s.handleGetReview)
		r.Get("/search", s.handleSearch)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/export/csv", s.handleExportCSV)
		r.Get("/health", s.handleHealth)
	}
	if s.opts.BasePath == "" {
		mount(r)
	} else {
		r.Route(s.opts.BasePath, mount)
	}

	return r
}
