// Package handler implements the HTTP handlers for the heritage routes API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (route.go, narrative.go, health.go) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/FACorreiaa/heritage-routes-api/internal/types"
)

// RouteServicer defines the business operations the route handlers depend
// on. Defining the interface here, in the consumer package, lets handler
// tests inject a mock without touching the database or service layer.
type RouteServicer interface {
	BuildRoute(ctx context.Context, ownerID uuid.UUID, start types.Coordinates, startAddress *string, desiredCount int) (*types.Route, error)
	GetRoute(ctx context.Context, ownerID, routeID uuid.UUID) (*types.Route, error)
	ListRoutes(ctx context.Context, ownerID uuid.UUID, filter types.RouteListFilter) ([]types.Route, error)
	SetFavorite(ctx context.Context, ownerID, routeID uuid.UUID, isFavorite bool) error
}

// NarrativeServicer defines the narrative lookup the narrative handler
// depends on.
type NarrativeServicer interface {
	GetNarrative(ctx context.Context, objectID uuid.UUID) (string, error)
}

// Geocoder defines the reverse-geocoding lookup the geocode handler depends
// on. A nil Geocoder disables the endpoint.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, coords types.Coordinates) (string, error)
}

// Pinger reports whether the database connection is alive. *pgxpool.Pool
// satisfies it directly.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds every handler dependency.
type Server struct {
	logger     *slog.Logger
	routes     RouteServicer
	narratives NarrativeServicer
	geocoder   Geocoder
	db         Pinger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(logger *slog.Logger, routes RouteServicer, narratives NarrativeServicer, geocoder Geocoder, db Pinger) *Server {
	return &Server{
		logger:     logger,
		routes:     routes,
		narratives: narratives,
		geocoder:   geocoder,
		db:         db,
	}
}
