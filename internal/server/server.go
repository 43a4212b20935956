// Package server runs `ope serve`: it builds the page, serves the output
// directory together with the query API and live reload, and rebuilds when
// the content changes.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/ope/internal/api"
	"github.com/conneroisu/ope/internal/build"
	"github.com/conneroisu/ope/internal/config"
	"github.com/conneroisu/ope/internal/livereload"
	"github.com/conneroisu/ope/internal/logging"
	"github.com/conneroisu/ope/internal/reviews"
)

// Stylesheet is the stylesheet the page links to, next to the output file.
const Stylesheet = "styles.css"

// LiveReloadPath is where browsers connect for reload notifications.
const LiveReloadPath = "/ws"

// MetricsPath serves the Prometheus metrics when enabled.
const MetricsPath = "/metrics"

const shutdownTimeout = 5 * time.Second

// Server is the development server.
type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	builder  *build.Builder
	api      *api.Server
	hub      *livereload.Hub
	registry *prometheus.Registry
	debounce time.Duration
}

// New wires a server for cfg answering API requests from source.
func New(cfg *config.Config, logger logging.Logger, source reviews.Source) *Server {
	logger = logger.WithComponent("server")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := build.Options{}
	if cfg.Server.LiveReload {
		opts.LiveReloadPath = LiveReloadPath
	}

	builder := build.NewBuilder(cfg, logger, opts)
	registerBuildMetrics(registry, builder.Metrics())

	return &Server{
		cfg:     cfg,
		logger:  logger,
		builder: builder,
		api: api.New(source, logger, api.Options{
			BasePath:       cfg.API.BasePath,
			DefaultPerPage: cfg.API.DefaultPerPage,
			RateLimit:      cfg.API.RateLimit,
			Registry:       registry,
		}),
		hub:      livereload.NewHub(logger),
		registry: registry,
	}
}

// registerBuildMetrics exports the builder's running totals.
func registerBuildMetrics(reg prometheus.Registerer, m *build.BuildMetrics) {
	factory := promauto.With(reg)
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "ope_builds_total",
		Help: "Page builds attempted",
	}, func() float64 { return float64(m.GetSnapshot().TotalBuilds) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "ope_builds_failed_total",
		Help: "Page builds that failed",
	}, func() float64 { return float64(m.GetSnapshot().FailedBuilds) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ope_build_duration_average_seconds",
		Help: "Mean page build duration",
	}, func() float64 { return m.GetSnapshot().AverageDuration.Seconds() })
}

// Handler routes the static output, the API, live reload and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	base := strings.TrimRight(s.cfg.API.BasePath, "/")
	mux.Handle(base, s.api)
	mux.Handle(base+"/", s.api)

	if s.cfg.Server.LiveReload {
		mux.Handle(LiveReloadPath, s.hub)
	}
	if s.cfg.Server.Metrics {
		mux.Handle(MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	mux.Handle("/", noDotfiles(s.static()))
	return mux
}

// static serves the output directory. When that directory also holds the
// content or the review data, only the page and its stylesheet are served.
func (s *Server) static() http.Handler {
	output := s.cfg.Build.Output
	dir := filepath.Dir(output)
	if !within(dir, s.cfg.Content.Dir) && !within(dir, s.cfg.Data.Source) {
		return http.FileServer(http.Dir(dir))
	}

	page := "/" + filepath.Base(output)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/", page:
			http.ServeFile(w, r, output)
		case "/" + Stylesheet:
			http.ServeFile(w, r, filepath.Join(dir, Stylesheet))
		default:
			http.NotFound(w, r)
		}
	})
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return true
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return true
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Listen opens the configured address. Port 0 picks a free port.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr(), err)
	}
	return ln, nil
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve builds once, then serves on ln and watches the content directory
// until ctx is done. Shutdown is graceful; ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if _, err := s.builder.Build(ctx); err != nil {
		_ = ln.Close()
		return err
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(ctx, "Server listening", "url", "http://"+ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return Watch(ctx, s.builder, s.logger, WatchOptions{
			Dir:      s.cfg.Content.Dir,
			Debounce: s.debounce,
			OnBuild:  s.afterRebuild,
		})
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hubErr := s.hub.Close(shutdownCtx)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return hubErr
	})

	return g.Wait()
}

func (s *Server) afterRebuild(result *build.Result) {
	if s.cfg.Server.LiveReload {
		n := s.hub.Reload()
		s.logger.Debug(context.Background(), "Reload sent", "clients", n, "output", result.Output)
	}
}

// noDotfiles hides dotfiles and dot directories, such as the config file,
// from the static file server.
func noDotfiles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, part := range strings.Split(r.URL.Path, "/") {
			if strings.HasPrefix(part, ".") {
				http.NotFound(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
