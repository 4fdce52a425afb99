package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/health", s.health)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)

			// Views
			r.Get("/effective", s.getEffective)
			r.Get("/delta", s.getDelta)
			r.Get("/changed", s.getChanged)
			r.Get("/custom", s.getCustom)
			r.Get("/fields", s.getFields)

			// Exchange
			r.Get("/export", s.exportDelta)
			r.Get("/sharelink", s.getShareLink)
			r.Post("/import", s.importOverrides)

			// Values
			r.Put("/values/{path}", s.setValue)
			r.Delete("/values/{path}", s.resetValue)
			r.Delete("/values", s.resetAll)

			// Validation and query
			r.Post("/validate", s.validateSession)
			r.Get("/query", s.querySession)

			// Event streaming (SSE)
			r.Get("/events", s.sessionEvents)
		})
	})
}
