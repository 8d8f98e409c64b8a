/*
server.go - HTTP router and middleware configuration

ROUTER: chi
MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a frontend running on its own
     dev-server port

ROUTE GROUPS:
  /api/configs/*      Config CRUD and sanitize preview
  /api/simulations/*  Run lifecycle: start, status, frames, cancel

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/falculator-server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/configs", func(r chi.Router) {
			r.Get("/", h.ListConfigs)
			r.Post("/", h.CreateConfig)
			r.Get("/{id}", h.GetConfig)
			r.Post("/{id}/sanitize", h.PreviewSanitize)
			r.Delete("/{id}", h.DeleteConfig)
		})

		r.Route("/simulations", func(r chi.Router) {
			r.Post("/", h.CreateSimulation)
			r.Get("/{id}", h.GetSimulation)
			r.Get("/{id}/frames", h.ListFrames)
			r.Post("/{id}/cancel", h.CancelSimulation)
		})
	})

	return r
}
