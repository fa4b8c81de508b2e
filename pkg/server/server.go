// Package server serves treemap views over HTTP.
//
// Every endpoint takes the view as query parameters: year, zoom (a region
// code; empty for the world view) and width in pixels.
//
//	GET /healthz
//	GET /version
//	GET /api/v1/frame             laid-out frame as JSON
//	GET /api/v1/treemap.svg       rendered SVG
//	GET /api/v1/treemap.pdf       rendered PDF
//	GET /api/v1/hit?x=&y=         cell under a point, its tooltip and click target
//	GET /api/v1/nodes/{code}      one node with its tooltip
//	GET /api/v1/zoom/in?code=     zoom state after clicking code
//	GET /api/v1/zoom/out          zoom state after clicking the breadcrumb
//
// Errors are JSON objects with the error code and a user message; the HTTP
// status follows [errors.HTTPStatus].
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gdpmap/pkg/config"
	"github.com/matzehuels/gdpmap/pkg/pipeline"
)

// shutdownTimeout bounds the graceful shutdown of ListenAndServe.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end of a [pipeline.Runner].
type Server struct {
	runner *pipeline.Runner
	cfg    config.Server
	logger *log.Logger
	router chi.Router
}

// New creates a server over runner using runner.Config.Server. A nil
// logger discards output.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		runner: runner,
		cfg:    runner.Config.Server,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/frame", s.handleArtifact(pipeline.FormatJSON, "application/json"))
		r.Get("/treemap.svg", s.handleArtifact(pipeline.FormatSVG, "image/svg+xml"))
		r.Get("/treemap.pdf", s.handleArtifact(pipeline.FormatPDF, "application/pdf"))
		r.Get("/hit", s.handleHit)
		r.Get("/nodes/{code}", s.handleNode)
		r.Get("/zoom/in", s.handleZoomIn)
		r.Get("/zoom/out", s.handleZoomOut)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on the configured address until ctx is canceled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout.Duration,
		WriteTimeout: s.cfg.WriteTimeout.Duration,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
