package route

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/heritage-routes-api/internal/domain/heritage"
	"github.com/FACorreiaa/heritage-routes-api/internal/types"
	"github.com/FACorreiaa/heritage-routes-api/pkg/config"
	"github.com/FACorreiaa/heritage-routes-api/pkg/observability"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the business contract for route operations.
type Service interface {
	// BuildRoute selects candidates around start, orders them with the greedy
	// heuristic and persists the result. Returns types.ErrNotFound when no
	// candidate lies within the configured search radius.
	BuildRoute(ctx context.Context, ownerID uuid.UUID, start types.Coordinates, startAddress *string, desiredCount int) (*types.Route, error)
	GetRoute(ctx context.Context, ownerID, routeID uuid.UUID) (*types.Route, error)
	ListRoutes(ctx context.Context, ownerID uuid.UUID, filter types.RouteListFilter) ([]types.Route, error)
	SetFavorite(ctx context.Context, ownerID, routeID uuid.UUID, isFavorite bool) error
}

type ServiceImpl struct {
	logger       *slog.Logger
	heritageRepo heritage.Repository
	routeRepo    Repository
	cfg          config.RouteConfig
}

func NewService(heritageRepo heritage.Repository, routeRepo Repository, cfg config.RouteConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:       logger,
		heritageRepo: heritageRepo,
		routeRepo:    routeRepo,
		cfg:          cfg,
	}
}

func (s *ServiceImpl) BuildRoute(ctx context.Context, ownerID uuid.UUID, start types.Coordinates, startAddress *string, desiredCount int) (*types.Route, error) {
	ctx, span := otel.Tracer("RouteService").Start(ctx, "BuildRoute", trace.WithAttributes(
		attribute.String("owner.id", ownerID.String()),
		attribute.Int("desired_count", desiredCount),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "BuildRoute"))
	startTime := time.Now()

	if !start.Valid() {
		span.SetStatus(codes.Error, "invalid start coordinates")
		return nil, fmt.Errorf("%w: start coordinates out of range (%f, %f)",
			types.ErrBadRequest, start.Latitude, start.Longitude)
	}

	count := desiredCount
	if count <= 0 {
		count = s.cfg.DefaultStops
	}
	if count > s.cfg.MaxStops {
		count = s.cfg.MaxStops
	}

	// Over-fetch so the greedy pass has slack beyond the strict N closest,
	// then cut back to the N closest before sequencing.
	radiusMeters := s.cfg.MaxSearchRadiusKm * 1000
	candidates, err := s.heritageRepo.NearestWithinRadius(ctx, start, radiusMeters, count*2)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "candidate lookup failed")
		return nil, fmt.Errorf("failed to find route candidates: %w", err)
	}
	if len(candidates) == 0 {
		l.InfoContext(ctx, "no heritage objects within search radius",
			slog.Float64("latitude", start.Latitude),
			slog.Float64("longitude", start.Longitude),
			slog.Float64("radius_meters", radiusMeters))
		observability.RoutesNotFound.Inc()
		span.SetStatus(codes.Ok, "no candidates")
		return nil, types.ErrNotFound
	}
	if len(candidates) > count {
		candidates = candidates[:count]
	}

	stops := BuildGreedyRoute(start, candidates)

	routeID, createdAt, err := s.routeRepo.SaveRoute(ctx, ownerID, start, startAddress, stops)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "route persistence failed")
		return nil, fmt.Errorf("failed to persist route: %w", err)
	}

	rt := &types.Route{
		ID:                  routeID,
		OwnerID:             ownerID,
		StartCoordinates:    start,
		StartAddress:        startAddress,
		TotalDistanceMeters: TotalDistanceMeters(stops),
		StopCount:           len(stops),
		CreatedAt:           createdAt,
		Stops:               stops,
	}

	observability.RoutesBuilt.Inc()
	observability.RouteBuildDuration.Observe(time.Since(startTime).Seconds())

	l.InfoContext(ctx, "route built",
		slog.String("route_id", routeID.String()),
		slog.Int("stop_count", rt.StopCount),
		slog.Float64("total_distance_meters", rt.TotalDistanceMeters))
	span.SetAttributes(attribute.String("route.id", routeID.String()))
	span.SetStatus(codes.Ok, "route built")
	return rt, nil
}

func (s *ServiceImpl) GetRoute(ctx context.Context, ownerID, routeID uuid.UUID) (*types.Route, error) {
	return s.routeRepo.GetRoute(ctx, ownerID, routeID)
}

func (s *ServiceImpl) ListRoutes(ctx context.Context, ownerID uuid.UUID, filter types.RouteListFilter) ([]types.Route, error) {
	return s.routeRepo.ListRoutes(ctx, ownerID, filter)
}

func (s *ServiceImpl) SetFavorite(ctx context.Context, ownerID, routeID uuid.UUID, isFavorite bool) error {
	return s.routeRepo.SetFavorite(ctx, ownerID, routeID, isFavorite)
}
