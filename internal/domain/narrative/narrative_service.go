package narrative

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"

	"github.com/FACorreiaa/heritage-routes-api/internal/domain/heritage"
	"github.com/FACorreiaa/heritage-routes-api/internal/llm"
	"github.com/FACorreiaa/heritage-routes-api/internal/types"
	"github.com/FACorreiaa/heritage-routes-api/pkg/observability"
)

const (
	// promptVersion is baked into the generation key; bump it whenever the
	// prompt wording changes so cached text is regenerated.
	promptVersion = "prompt-v3"

	// fallbackGenerationKey keys fallback-composed entries. It deliberately
	// differs from any model-backed key: once a generator becomes available
	// its text must not be masked by an old fallback row.
	fallbackGenerationKey = "fallback:story-v3"

	generationTemperature = 0.7
)

var _ Service = (*ServiceImpl)(nil)

// Service returns the narration for a heritage object. It always produces
// non-empty text for known objects; generator failures degrade to the
// deterministic fallback composer and are never surfaced to the caller.
type Service interface {
	GetNarrative(ctx context.Context, objectID uuid.UUID) (string, error)
}

type ServiceImpl struct {
	logger       *slog.Logger
	heritageRepo heritage.Repository
	repo         Repository
	aiClient     llm.ChatClient
	genTimeout   time.Duration

	// cache is a process-local tier in front of the durable cache rows.
	cache *cache.Cache
	group singleflight.Group
}

// NewService builds the narrative service. aiClient may be nil, in which case
// every narration comes from the fallback composer.
func NewService(heritageRepo heritage.Repository, repo Repository, aiClient llm.ChatClient, genTimeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:       logger,
		heritageRepo: heritageRepo,
		repo:         repo,
		aiClient:     aiClient,
		genTimeout:   genTimeout,
		cache:        cache.New(48*time.Hour, 1*time.Hour),
	}
}

// generationKey encodes the active generation strategy. Switching between
// fallback and model-backed modes (or changing the model or prompt version)
// changes the key, which invalidates by shadowing rather than deletion.
func (s *ServiceImpl) generationKey() string {
	if s.aiClient != nil {
		return s.aiClient.Model() + ":" + promptVersion
	}
	return fallbackGenerationKey
}

func (s *ServiceImpl) GetNarrative(ctx context.Context, objectID uuid.UUID) (string, error) {
	ctx, span := otel.Tracer("NarrativeService").Start(ctx, "GetNarrative", trace.WithAttributes(
		attribute.String("object.id", objectID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetNarrative"))

	key := s.generationKey()
	span.SetAttributes(attribute.String("generation_key", key))
	memKey := objectID.String() + "|" + key

	if cached, found := s.cache.Get(memKey); found {
		observability.NarrativeCacheHits.WithLabelValues("memory").Inc()
		span.SetStatus(codes.Ok, "memory cache hit")
		return cached.(string), nil
	}

	text, err := s.repo.GetNarrative(ctx, objectID, key)
	switch {
	case err == nil:
		observability.NarrativeCacheHits.WithLabelValues("database").Inc()
		s.cache.Set(memKey, text, cache.DefaultExpiration)
		span.SetStatus(codes.Ok, "database cache hit")
		return text, nil
	case !errors.Is(err, types.ErrNotFound):
		// A degraded cache read is not fatal; regenerate instead.
		l.WarnContext(ctx, "narrative cache read failed, regenerating", slog.Any("error", err))
	}

	observability.NarrativeCacheMisses.Inc()

	// Concurrent misses for the same object and key collapse into a single
	// generation; the upsert is idempotent either way.
	result, err, _ := s.group.Do(memKey, func() (any, error) {
		obj, err := s.heritageRepo.GetObject(ctx, objectID)
		if err != nil {
			return nil, err
		}

		text := s.generate(ctx, obj)

		if err := s.repo.UpsertNarrative(ctx, objectID, key, text); err != nil {
			// The text is still valid; losing one cache write only costs a
			// future regeneration.
			l.WarnContext(ctx, "failed to persist narrative", slog.Any("error", err))
		}
		s.cache.Set(memKey, text, cache.DefaultExpiration)

		return text, nil
	})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			span.SetStatus(codes.Ok, "object not found")
			return "", types.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "narrative generation failed")
		return "", err
	}

	span.SetStatus(codes.Ok, "narrative generated")
	return result.(string), nil
}

// generate produces narration text. It never fails: any generator problem
// (missing client, timeout, transport error, empty or refusal-looking output)
// falls through to the deterministic composer.
func (s *ServiceImpl) generate(ctx context.Context, obj *types.HeritageObject) string {
	l := s.logger.With(slog.String("method", "generate"), slog.String("object_id", obj.ID.String()))

	if s.aiClient == nil {
		observability.NarrativeFallbacks.Inc()
		return ComposeFallback(obj)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	startTime := time.Now()
	response, err := s.aiClient.GenerateResponse(genCtx, buildNarrativePrompt(obj), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](generationTemperature),
	})
	observability.NarrativeGenerationDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		l.WarnContext(ctx, "narrative generation failed, using fallback", slog.Any("error", err))
		observability.NarrativeFallbacks.Inc()
		return ComposeFallback(obj)
	}

	var txt string
	if response != nil {
		for _, candidate := range response.Candidates {
			if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
				txt = candidate.Content.Parts[0].Text
				break
			}
		}
	}
	txt = strings.TrimSpace(txt)

	if txt == "" {
		l.WarnContext(ctx, "empty generator response, using fallback")
		observability.NarrativeFallbacks.Inc()
		return ComposeFallback(obj)
	}
	if types.IsGeneratorRefusal(txt) {
		l.WarnContext(ctx, "generator refused, using fallback")
		observability.NarrativeFallbacks.Inc()
		return ComposeFallback(obj)
	}

	return txt
}
