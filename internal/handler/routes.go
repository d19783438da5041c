package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the API route tree. Middleware (logging, rate limiting,
// CORS) is layered on top by the caller so tests can exercise the bare
// handlers.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.Healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/routes", func(r chi.Router) {
			r.Post("/", s.BuildRoute)
			r.Get("/", s.ListRoutes)
			r.Get("/{routeID}", s.GetRoute)
			r.Put("/{routeID}/favorite", s.SetFavorite)
		})
		r.Get("/objects/{objectID}/narrative", s.GetNarrative)
		r.Get("/geocode/reverse", s.ReverseGeocode)
	})

	return r
}
