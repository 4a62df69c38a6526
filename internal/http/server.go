// README: API gateway; wires handlers, middleware and CORS around the gin engine.
package http

import (
	"context"
	"net/http"

	"github.com/go-chi/cors"

	"mrx/internal/infra"
	"mrx/internal/modules/game"
	"mrx/internal/modules/replay"
	"mrx/internal/modules/stops"
)

// HealthCheck probes one dependency. Name is reported in /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type ServerDeps struct {
	Loop     *game.Loop
	Stops    *stops.Catalog
	Replays  *replay.Library
	Verifier infra.TokenVerifier
	Health   []HealthCheck
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	return &Server{deps: deps}
}

// Routes returns the engine behind a permissive CORS layer.
func (s *Server) Routes() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(NewRouter(s.deps))
}
