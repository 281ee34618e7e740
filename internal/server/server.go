// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET /healthz               build info and backend status
//	GET /v1/tracks             track names available to the other routes
//	GET /v1/layout             row assignment as JSON
//	GET /v1/track.{format}     rendered track (svg, png, pdf, json, dot)
//
// Layout and track routes take the query parameters track, region, width,
// max_rows, label_char_width, row_height, row_padding, hidden_pixels,
// titles and scale. A track ending in .bed, .bed.gz or .json is read from
// the data directory; any other name is looked up in the MongoDB store.
package server

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/genetrack/pkg/pipeline"
	"github.com/matzehuels/genetrack/pkg/source/mongo"
)

// Config wires a Server to its backends.
type Config struct {
	Runner *pipeline.Runner

	// DataDir holds BED and JSON track files. Empty disables file tracks.
	DataDir string

	// Store serves tracks from MongoDB. Nil disables database tracks.
	Store *mongo.Store

	// Defaults supplies the layout and render settings used when a request
	// does not set them. Input, Source and Region are ignored.
	Defaults pipeline.Options

	Logger *log.Logger
}

// Server handles HTTP requests. It holds no per-request state.
type Server struct {
	runner   *pipeline.Runner
	data     fs.FS
	store    *mongo.Store
	defaults pipeline.Options
	logger   *log.Logger
	router   chi.Router
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		defaults: cfg.Defaults,
		logger:   cfg.Logger,
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if cfg.DataDir != "" {
		s.data = os.DirFS(cfg.DataDir)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/tracks", s.handleTracks)
		r.Get("/layout", s.handleLayout)
		r.Get("/track.{format}", s.handleTrack)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
