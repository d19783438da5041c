// Package heritage provides read-only access to the heritage object registry,
// including the spatial nearest-candidate lookup the route builder consumes.
package heritage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

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

// Repository is the query contract over heritage objects. The registry is
// owned by the data-import pipeline; this service only reads it.
type Repository interface {
	// NearestWithinRadius returns objects within radiusMeters of origin,
	// ascending by distance, truncated to limit. An empty result is not an
	// error.
	NearestWithinRadius(ctx context.Context, origin types.Coordinates, radiusMeters float64, limit int) ([]types.HeritageObject, error)
	GetObject(ctx context.Context, objectID uuid.UUID) (*types.HeritageObject, error)
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

const objectColumns = `
        id,
        global_id,
        name,
        address,
        district,
        adm_area,
        object_type,
        category,
        security_status,
        description,
        build_year,
        ST_Y(location::geometry) AS latitude,
        ST_X(location::geometry) AS longitude`

func (r *RepositoryImpl) NearestWithinRadius(ctx context.Context, origin types.Coordinates, radiusMeters float64, limit int) ([]types.HeritageObject, error) {
	ctx, span := otel.Tracer("Repository").Start(ctx, "NearestWithinRadius", trace.WithAttributes(
		attribute.Float64("origin.latitude", origin.Latitude),
		attribute.Float64("origin.longitude", origin.Longitude),
		attribute.Float64("radius_meters", radiusMeters),
		attribute.Int("limit", limit),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "NearestWithinRadius"))

	query := `
        SELECT` + objectColumns + `,
            ST_Distance(
                location::geography,
                ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
            ) AS distance_meters
        FROM heritage_objects
        WHERE ST_DWithin(
            location::geography,
            ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
            $3
        )
        ORDER BY distance_meters ASC
        LIMIT $4
    `

	rows, err := r.db.Query(ctx, query, origin.Longitude, origin.Latitude, radiusMeters, limit)
	if err != nil {
		l.ErrorContext(ctx, "failed to query nearest heritage objects", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "database query failed")
		return nil, fmt.Errorf("failed to query nearest heritage objects: %w", err)
	}
	defer rows.Close()

	var objects []types.HeritageObject
	for rows.Next() {
		obj, err := scanObject(rows, true)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan heritage object row: %w", err)
		}
		objects = append(objects, *obj)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating heritage object rows: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(objects)))
	span.SetStatus(codes.Ok, "candidates fetched")
	return objects, nil
}

func (r *RepositoryImpl) GetObject(ctx context.Context, objectID uuid.UUID) (*types.HeritageObject, error) {
	ctx, span := otel.Tracer("Repository").Start(ctx, "GetObject", trace.WithAttributes(
		attribute.String("object.id", objectID.String()),
	))
	defer span.End()

	query := `
        SELECT` + objectColumns + `
        FROM heritage_objects
        WHERE id = $1
    `

	row := r.db.QueryRow(ctx, query, objectID)
	obj, err := scanObject(row, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "object not found")
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "failed to fetch heritage object",
			slog.String("object_id", objectID.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "database query failed")
		return nil, fmt.Errorf("failed to fetch heritage object: %w", err)
	}

	span.SetStatus(codes.Ok, "object found")
	return obj, nil
}

// scanObject reads one heritage object from a row. The optional registry
// fields arrive as NULLs and are mapped onto pointer fields.
func scanObject(row pgx.Row, withDistance bool) (*types.HeritageObject, error) {
	var (
		obj      types.HeritageObject
		globalID sql.NullInt64

		address, district, admArea, objectType,
		category, securityStatus, description, buildYear sql.NullString
	)

	dest := []any{
		&obj.ID,
		&globalID,
		&obj.Name,
		&address,
		&district,
		&admArea,
		&objectType,
		&category,
		&securityStatus,
		&description,
		&buildYear,
		&obj.Coordinates.Latitude,
		&obj.Coordinates.Longitude,
	}
	if withDistance {
		dest = append(dest, &obj.DistanceMeters)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if globalID.Valid {
		obj.GlobalID = globalID.Int64
	}
	obj.Address = nullableString(address)
	obj.District = nullableString(district)
	obj.AdmArea = nullableString(admArea)
	obj.ObjectType = nullableString(objectType)
	obj.Category = nullableString(category)
	obj.SecurityStatus = nullableString(securityStatus)
	obj.Description = nullableString(description)
	obj.BuildYear = nullableString(buildYear)

	return &obj, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
