package route

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/heritage-routes-api/internal/types"
	"github.com/FACorreiaa/heritage-routes-api/pkg/db"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists and reads routes.
type Repository interface {
	// SaveRoute writes the route header and every stop in one transaction.
	// Either all rows become visible or none do. Returns the generated route
	// id and the database creation timestamp.
	SaveRoute(ctx context.Context, ownerID uuid.UUID, start types.Coordinates, startAddress *string, stops []types.RouteStop) (uuid.UUID, time.Time, error)
	GetRoute(ctx context.Context, ownerID, routeID uuid.UUID) (*types.Route, error)
	ListRoutes(ctx context.Context, ownerID uuid.UUID, filter types.RouteListFilter) ([]types.Route, error)
	SetFavorite(ctx context.Context, ownerID, routeID uuid.UUID, isFavorite bool) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     db.Querier
}

func NewRepository(querier db.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     querier,
	}
}

const defaultListLimit = 50

func (r *RepositoryImpl) SaveRoute(ctx context.Context, ownerID uuid.UUID, start types.Coordinates, startAddress *string, stops []types.RouteStop) (uuid.UUID, time.Time, error) {
	ctx, span := otel.Tracer("Repository").Start(ctx, "SaveRoute", trace.WithAttributes(
		attribute.String("owner.id", ownerID.String()),
		attribute.Int("stop_count", len(stops)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SaveRoute"))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to begin transaction")
		return uuid.Nil, time.Time{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			l.ErrorContext(ctx, "failed to rollback route transaction", slog.Any("error", rbErr))
		}
	}()

	totalDistance := TotalDistanceMeters(stops)

	headerQuery := `
        INSERT INTO routes (user_id, start_location, start_address, total_distance, objects_count)
        VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4, $5, $6)
        RETURNING id, created_at
    `
	var (
		routeID   uuid.UUID
		createdAt time.Time
	)
	if err := tx.QueryRow(ctx, headerQuery,
		ownerID, start.Longitude, start.Latitude, startAddress, totalDistance, len(stops),
	).Scan(&routeID, &createdAt); err != nil {
		l.ErrorContext(ctx, "failed to insert route header", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "header insert failed")
		return uuid.Nil, time.Time{}, fmt.Errorf("failed to insert route header: %w", err)
	}

	stopQuery := `
        INSERT INTO route_stops (route_id, object_id, sequence_number, distance_from_previous)
        VALUES ($1, $2, $3, $4)
    `
	for _, stop := range stops {
		if _, err := tx.Exec(ctx, stopQuery,
			routeID, stop.Object.ID, stop.SequenceNumber, stop.DistanceFromPreviousMeters,
		); err != nil {
			l.ErrorContext(ctx, "failed to insert route stop",
				slog.Int("sequence_number", stop.SequenceNumber), slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "stop insert failed")
			return uuid.Nil, time.Time{}, fmt.Errorf("failed to insert route stop %d: %w", stop.SequenceNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		return uuid.Nil, time.Time{}, fmt.Errorf("failed to commit route: %w", err)
	}

	span.SetAttributes(attribute.String("route.id", routeID.String()))
	span.SetStatus(codes.Ok, "route saved")
	return routeID, createdAt, nil
}

func (r *RepositoryImpl) GetRoute(ctx context.Context, ownerID, routeID uuid.UUID) (*types.Route, error) {
	ctx, span := otel.Tracer("Repository").Start(ctx, "GetRoute", trace.WithAttributes(
		attribute.String("route.id", routeID.String()),
	))
	defer span.End()

	headerQuery := `
        SELECT
            id,
            user_id,
            ST_Y(start_location::geometry) AS start_latitude,
            ST_X(start_location::geometry) AS start_longitude,
            start_address,
            total_distance,
            objects_count,
            is_favorite,
            created_at
        FROM routes
        WHERE id = $1 AND user_id = $2
    `
	var (
		rt           types.Route
		startAddress sql.NullString
	)
	if err := r.db.QueryRow(ctx, headerQuery, routeID, ownerID).Scan(
		&rt.ID,
		&rt.OwnerID,
		&rt.StartCoordinates.Latitude,
		&rt.StartCoordinates.Longitude,
		&startAddress,
		&rt.TotalDistanceMeters,
		&rt.StopCount,
		&rt.IsFavorite,
		&rt.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "route not found")
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "header query failed")
		return nil, fmt.Errorf("failed to fetch route: %w", err)
	}
	if startAddress.Valid {
		v := startAddress.String
		rt.StartAddress = &v
	}

	stopsQuery := `
        SELECT
            rs.sequence_number,
            rs.distance_from_previous,
            h.id,
            h.global_id,
            h.name,
            h.address,
            h.district,
            h.adm_area,
            h.object_type,
            h.category,
            h.security_status,
            h.description,
            h.build_year,
            ST_Y(h.location::geometry) AS latitude,
            ST_X(h.location::geometry) AS longitude
        FROM route_stops rs
        JOIN heritage_objects h ON rs.object_id = h.id
        WHERE rs.route_id = $1
        ORDER BY rs.sequence_number ASC
    `
	rows, err := r.db.Query(ctx, stopsQuery, routeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stops query failed")
		return nil, fmt.Errorf("failed to fetch route stops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			stop     types.RouteStop
			globalID sql.NullInt64

			address, district, admArea, objectType,
			category, securityStatus, description, buildYear sql.NullString
		)
		if err := rows.Scan(
			&stop.SequenceNumber,
			&stop.DistanceFromPreviousMeters,
			&stop.Object.ID,
			&globalID,
			&stop.Object.Name,
			&address,
			&district,
			&admArea,
			&objectType,
			&category,
			&securityStatus,
			&description,
			&buildYear,
			&stop.Object.Coordinates.Latitude,
			&stop.Object.Coordinates.Longitude,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan route stop row: %w", err)
		}
		if globalID.Valid {
			stop.Object.GlobalID = globalID.Int64
		}
		stop.Object.Address = nullableString(address)
		stop.Object.District = nullableString(district)
		stop.Object.AdmArea = nullableString(admArea)
		stop.Object.ObjectType = nullableString(objectType)
		stop.Object.Category = nullableString(category)
		stop.Object.SecurityStatus = nullableString(securityStatus)
		stop.Object.Description = nullableString(description)
		stop.Object.BuildYear = nullableString(buildYear)

		rt.Stops = append(rt.Stops, stop)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating route stop rows: %w", err)
	}

	span.SetStatus(codes.Ok, "route fetched")
	return &rt, nil
}

func (r *RepositoryImpl) ListRoutes(ctx context.Context, ownerID uuid.UUID, filter types.RouteListFilter) ([]types.Route, error) {
	ctx, span := otel.Tracer("Repository").Start(ctx, "ListRoutes", trace.WithAttributes(
		attribute.String("owner.id", ownerID.String()),
		attribute.Bool("favorites_only", filter.FavoritesOnly),
	))
	defer span.End()

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	builder := squirrel.Select(
		"id",
		"user_id",
		"ST_Y(start_location::geometry) AS start_latitude",
		"ST_X(start_location::geometry) AS start_longitude",
		"start_address",
		"total_distance",
		"objects_count",
		"is_favorite",
		"created_at",
	).
		From("routes").
		PlaceholderFormat(squirrel.Dollar).
		Where(squirrel.Eq{"user_id": ownerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	if filter.FavoritesOnly {
		builder = builder.Where(squirrel.Eq{"is_favorite": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build route listing query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing query failed")
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	defer rows.Close()

	var routes []types.Route
	for rows.Next() {
		var (
			rt           types.Route
			startAddress sql.NullString
		)
		if err := rows.Scan(
			&rt.ID,
			&rt.OwnerID,
			&rt.StartCoordinates.Latitude,
			&rt.StartCoordinates.Longitude,
			&startAddress,
			&rt.TotalDistanceMeters,
			&rt.StopCount,
			&rt.IsFavorite,
			&rt.CreatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan route row: %w", err)
		}
		if startAddress.Valid {
			v := startAddress.String
			rt.StartAddress = &v
		}
		routes = append(routes, rt)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating route rows: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(routes)))
	span.SetStatus(codes.Ok, "routes listed")
	return routes, nil
}

func (r *RepositoryImpl) SetFavorite(ctx context.Context, ownerID, routeID uuid.UUID, isFavorite bool) error {
	ctx, span := otel.Tracer("Repository").Start(ctx, "SetFavorite", trace.WithAttributes(
		attribute.String("route.id", routeID.String()),
		attribute.Bool("is_favorite", isFavorite),
	))
	defer span.End()

	query, args, err := squirrel.Update("routes").
		PlaceholderFormat(squirrel.Dollar).
		Set("is_favorite", isFavorite).
		Where(squirrel.Eq{"id": routeID, "user_id": ownerID}).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to build favorite update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "favorite update failed")
		return fmt.Errorf("failed to update route favorite flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Ok, "route not found")
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "favorite updated")
	return nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
