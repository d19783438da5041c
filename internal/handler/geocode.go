package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/heritage-routes-api/internal/types"
)

type reverseGeocodeResponse struct {
	Address string `json:"address"`
}

// ReverseGeocode handles GET /v1/geocode/reverse. An empty address means the
// geocoder found nothing near the coordinates.
func (s *Server) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	if s.geocoder == nil {
		s.respondError(w, http.StatusServiceUnavailable, "geocoder_disabled", "reverse geocoding is not configured")
		return
	}

	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if latErr != nil || lonErr != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "latitude and longitude must be decimal degrees")
		return
	}

	address, err := s.geocoder.ReverseGeocode(r.Context(), types.Coordinates{Latitude: lat, Longitude: lon})
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			s.respondError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		s.logger.Error("reverse geocoding failed", slog.Any("error", err))
		s.respondError(w, http.StatusBadGateway, "bad_gateway", "geocoder unavailable")
		return
	}

	s.respondJSON(w, http.StatusOK, reverseGeocodeResponse{Address: address})
}
