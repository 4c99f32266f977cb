// Package server exposes the metrics engine and preprocessing operations over
// HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/dataviz-cli/internal/ingest"
	"github.com/KaramelBytes/dataviz-cli/internal/preprocess"
	"github.com/KaramelBytes/dataviz-cli/internal/quality"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 32 << 20

// Options configures a Server.
type Options struct {
	Quality    quality.Options
	Preprocess preprocess.Params
	Ingest     ingest.Options
	// Workers bounds concurrent analyses in a batch request.
	Workers int
	// Version is reported by /health.
	Version string
}

// Server holds the router and its dependencies.
type Server struct {
	opts     Options
	router   *chi.Mux
	registry *prometheus.Registry
	metrics  *serverMetrics
	started  time.Time
}

// New builds a server with its routes mounted.
func New(opts Options) *Server {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		opts:     opts,
		router:   chi.NewRouter(),
		registry: reg,
		metrics:  newServerMetrics(reg),
		started:  time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/catalogue", s.catalogue)
		r.Post("/analyze", s.analyze)
		r.Route("/preprocess", func(r chi.Router) {
			r.Get("/operations", s.operations)
			r.Post("/", s.preprocess)
			r.Post("/validate", s.validate)
		})
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
