package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/heritage-routes-api/internal/types"
)

type buildRouteRequest struct {
	StartLatitude  float64 `json:"start_latitude"`
	StartLongitude float64 `json:"start_longitude"`
	StartAddress   *string `json:"start_address,omitempty"`
	ObjectsCount   int     `json:"objects_count,omitempty"`
}

type setFavoriteRequest struct {
	IsFavorite bool `json:"is_favorite"`
}

type routeResponse struct {
	ID                  uuid.UUID           `json:"id"`
	StartLatitude       float64             `json:"start_latitude"`
	StartLongitude      float64             `json:"start_longitude"`
	StartAddress        *string             `json:"start_address,omitempty"`
	TotalDistanceMeters float64             `json:"total_distance_meters"`
	StopCount           int                 `json:"stop_count"`
	IsFavorite          bool                `json:"is_favorite"`
	CreatedAt           time.Time           `json:"created_at"`
	Stops               []routeStopResponse `json:"stops,omitempty"`
}

type routeStopResponse struct {
	SequenceNumber             int                   `json:"sequence_number"`
	DistanceFromPreviousMeters float64               `json:"distance_from_previous_meters"`
	Object                     objectSummaryResponse `json:"object"`
}

type objectSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     *string   `json:"address,omitempty"`
	Description *string   `json:"description,omitempty"`
	BuildYear   *string   `json:"build_year,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
}

type routeListResponse struct {
	Routes []routeResponse `json:"routes"`
}

// BuildRoute handles POST /v1/routes.
func (s *Server) BuildRoute(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	var req buildRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	start := types.Coordinates{Latitude: req.StartLatitude, Longitude: req.StartLongitude}
	route, err := s.routes.BuildRoute(r.Context(), owner, start, req.StartAddress, req.ObjectsCount)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, routeToResponse(route))
}

// ListRoutes handles GET /v1/routes. Supports ?favorites=true and ?limit=N.
func (s *Server) ListRoutes(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	filter := types.RouteListFilter{
		FavoritesOnly: r.URL.Query().Get("favorites") == "true",
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.respondError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	routes, err := s.routes.ListRoutes(r.Context(), owner, filter)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	resp := routeListResponse{Routes: make([]routeResponse, 0, len(routes))}
	for i := range routes {
		resp.Routes = append(resp.Routes, routeToResponse(&routes[i]))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// GetRoute handles GET /v1/routes/{routeID}.
func (s *Server) GetRoute(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	routeID, err := uuid.Parse(chi.URLParam(r, "routeID"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid route id")
		return
	}

	route, err := s.routes.GetRoute(r.Context(), owner, routeID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, routeToResponse(route))
}

// SetFavorite handles PUT /v1/routes/{routeID}/favorite.
func (s *Server) SetFavorite(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	routeID, err := uuid.Parse(chi.URLParam(r, "routeID"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid route id")
		return
	}

	var req setFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	if err := s.routes.SetFavorite(r.Context(), owner, routeID, req.IsFavorite); err != nil {
		s.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func routeToResponse(route *types.Route) routeResponse {
	resp := routeResponse{
		ID:                  route.ID,
		StartLatitude:       route.StartCoordinates.Latitude,
		StartLongitude:      route.StartCoordinates.Longitude,
		StartAddress:        route.StartAddress,
		TotalDistanceMeters: route.TotalDistanceMeters,
		StopCount:           route.StopCount,
		IsFavorite:          route.IsFavorite,
		CreatedAt:           route.CreatedAt,
	}
	for _, stop := range route.Stops {
		resp.Stops = append(resp.Stops, routeStopResponse{
			SequenceNumber:             stop.SequenceNumber,
			DistanceFromPreviousMeters: stop.DistanceFromPreviousMeters,
			Object: objectSummaryResponse{
				ID:          stop.Object.ID,
				Name:        stop.Object.Name,
				Address:     stop.Object.Address,
				Description: stop.Object.Description,
				BuildYear:   stop.Object.BuildYear,
				Latitude:    stop.Object.Coordinates.Latitude,
				Longitude:   stop.Object.Coordinates.Longitude,
			},
		})
	}
	return resp
}
