package handler

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
}

// Healthz handles GET /healthz. It reports degraded with a 503 when the
// database does not answer a ping.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded"})
			return
		}
	}
	s.respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
