// Package narrative generates and caches the tour-guide narration shown for
// each heritage object.
package narrative

import (
	"context"
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

// Repository is the durable narrative cache. Rows are unique per
// (object_id, generation_key); rows under old keys are never deleted, a key
// change simply shadows them.
type Repository interface {
	GetNarrative(ctx context.Context, objectID uuid.UUID, generationKey string) (string, error)
	UpsertNarrative(ctx context.Context, objectID uuid.UUID, generationKey, text string) error
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

func (r *RepositoryImpl) GetNarrative(ctx context.Context, objectID uuid.UUID, generationKey string) (string, error) {
	ctx, span := otel.Tracer("Repository").Start(ctx, "GetNarrative", trace.WithAttributes(
		attribute.String("object.id", objectID.String()),
		attribute.String("generation_key", generationKey),
	))
	defer span.End()

	query := `
        SELECT narrative
        FROM object_narratives
        WHERE object_id = $1 AND generation_key = $2
    `
	var text string
	if err := r.db.QueryRow(ctx, query, objectID, generationKey).Scan(&text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "cache miss")
			return "", types.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache lookup failed")
		return "", fmt.Errorf("failed to fetch cached narrative: %w", err)
	}

	span.SetStatus(codes.Ok, "cache hit")
	return text, nil
}

func (r *RepositoryImpl) UpsertNarrative(ctx context.Context, objectID uuid.UUID, generationKey, text string) error {
	ctx, span := otel.Tracer("Repository").Start(ctx, "UpsertNarrative", trace.WithAttributes(
		attribute.String("object.id", objectID.String()),
		attribute.String("generation_key", generationKey),
	))
	defer span.End()

	query := `
        INSERT INTO object_narratives (object_id, generation_key, narrative)
        VALUES ($1, $2, $3)
        ON CONFLICT (object_id, generation_key) DO UPDATE SET
            narrative = EXCLUDED.narrative,
            updated_at = NOW()
    `
	if _, err := r.db.Exec(ctx, query, objectID, generationKey, text); err != nil {
		r.logger.ErrorContext(ctx, "failed to upsert narrative",
			slog.String("object_id", objectID.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		return fmt.Errorf("failed to upsert narrative: %w", err)
	}

	span.SetStatus(codes.Ok, "narrative stored")
	return nil
}
