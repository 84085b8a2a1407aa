// Package server exposes the generation service over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/coach/internal/control"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    *control.Service
	log    *slog.Logger
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *control.Service, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))

	s.router.Route("/api/v1/workouts", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Get("/", s.handleListWorkouts)
		r.Get("/{id}", s.handleGetWorkout)
	})

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
}
