package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FACorreiaa/heritage-routes-api/internal/types"
)

// userIDHeader carries the caller identity. Authentication itself happens
// upstream of this service; here the header is only parsed and trusted.
const userIDHeader = "X-User-ID"

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// respondServiceError maps domain sentinels onto HTTP statuses. Anything
// unrecognized stays opaque to the client.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, types.ErrBadRequest):
		s.respondError(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		s.logger.Error("request failed", slog.Any("error", err))
		s.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// ownerID extracts and validates the caller identity header.
func ownerID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		return uuid.Nil, errors.New("missing " + userIDHeader + " header")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid " + userIDHeader + " header")
	}
	return id, nil
}
