// Package server exposes the section pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz              liveness probe
//	POST /v1/sections          assemble a section, returns the section document
//	POST /v1/sections/map      plan-view overlay (?format=svg|png|dot|geojson)
//	POST /v1/sections/profile  cross-section drawing (SVG)
//
// Request bodies carry the input document and optional pipeline options:
//
//	{"input": {"line": [[0,0],[100,0]], "columns": [...]},
//	 "options": {"policy": "tour", "reproject": true}}
//
// Errors are JSON objects with the machine-readable code, the message and
// the request ID.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/geoprofile/pkg/buildinfo"
	"github.com/matzehuels/geoprofile/pkg/pipeline"
)

// DefaultMaxBodyBytes limits request bodies when Config leaves it unset.
const DefaultMaxBodyBytes = 8 << 20

const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	// Defaults seed the options of every request; fields present in the
	// request body override them.
	Defaults pipeline.Options
	Logger   *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		cfg:    cfg,
		logger: logger.WithPrefix("http"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/sections", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/", s.handleSection)
		r.Post("/map", s.handleMap)
		r.Post("/profile", s.handleProfile)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String(), "version", buildinfo.Version)
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
