package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type narrativeResponse struct {
	ObjectID  uuid.UUID `json:"object_id"`
	Narrative string    `json:"narrative"`
}

// GetNarrative handles GET /v1/objects/{objectID}/narrative.
func (s *Server) GetNarrative(w http.ResponseWriter, r *http.Request) {
	objectID, err := uuid.Parse(chi.URLParam(r, "objectID"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid object id")
		return
	}

	text, err := s.narratives.GetNarrative(r.Context(), objectID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, narrativeResponse{ObjectID: objectID, Narrative: text})
}
