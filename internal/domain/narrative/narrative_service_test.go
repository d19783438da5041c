package narrative

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/FACorreiaa/heritage-routes-api/internal/types"
)

// --- Mocks for dependencies ---

type MockHeritageRepo struct {
	mock.Mock
}

func (m *MockHeritageRepo) NearestWithinRadius(ctx context.Context, origin types.Coordinates, radiusMeters float64, limit int) ([]types.HeritageObject, error) {
	args := m.Called(ctx, origin, radiusMeters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.HeritageObject), args.Error(1)
}

func (m *MockHeritageRepo) GetObject(ctx context.Context, objectID uuid.UUID) (*types.HeritageObject, error) {
	args := m.Called(ctx, objectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.HeritageObject), args.Error(1)
}

type MockNarrativeRepo struct {
	mock.Mock
}

func (m *MockNarrativeRepo) GetNarrative(ctx context.Context, objectID uuid.UUID, generationKey string) (string, error) {
	args := m.Called(ctx, objectID, generationKey)
	return args.String(0), args.Error(1)
}

func (m *MockNarrativeRepo) UpsertNarrative(ctx context.Context, objectID uuid.UUID, generationKey, text string) error {
	args := m.Called(ctx, objectID, generationKey, text)
	return args.Error(0)
}

// fakeChatClient counts generator invocations and returns a canned response.
type fakeChatClient struct {
	calls    atomic.Int64
	text     string
	err      error
	model    string
	blockCtx bool
}

func (f *fakeChatClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls.Add(1)
	if f.blockCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}},
		},
	}, nil
}

func (f *fakeChatClient) Model() string { return f.model }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func testObject() *types.HeritageObject {
	return &types.HeritageObject{ID: uuid.New(), Name: "Pashkov House", BuildYear: strPtr("1786")}
}

func TestGetNarrative_GeneratorInvokedAtMostOnce(t *testing.T) {
	obj := testObject()
	client := &fakeChatClient{text: "A story about the mansion on the hill.", model: "gemini-2.5-flash"}

	heritageRepo := new(MockHeritageRepo)
	heritageRepo.On("GetObject", mock.Anything, obj.ID).Return(obj, nil).Once()

	repo := new(MockNarrativeRepo)
	key := "gemini-2.5-flash:prompt-v3"
	repo.On("GetNarrative", mock.Anything, obj.ID, key).Return("", types.ErrNotFound).Once()
	repo.On("UpsertNarrative", mock.Anything, obj.ID, key, client.text).Return(nil).Once()

	svc := NewService(heritageRepo, repo, client, time.Second, testLogger())

	first, err := svc.GetNarrative(context.Background(), obj.ID)
	require.NoError(t, err)
	second, err := svc.GetNarrative(context.Background(), obj.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, client.calls.Load(), "second call must be a pure cache hit")

	heritageRepo.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestGetNarrative_FallbackModeUsesFallbackKey(t *testing.T) {
	obj := testObject()

	heritageRepo := new(MockHeritageRepo)
	heritageRepo.On("GetObject", mock.Anything, obj.ID).Return(obj, nil).Once()

	repo := new(MockNarrativeRepo)
	repo.On("GetNarrative", mock.Anything, obj.ID, fallbackGenerationKey).Return("", types.ErrNotFound).Once()
	repo.On("UpsertNarrative", mock.Anything, obj.ID, fallbackGenerationKey, mock.AnythingOfType("string")).Return(nil).Once()

	svc := NewService(heritageRepo, repo, nil, time.Second, testLogger())

	text, err := svc.GetNarrative(context.Background(), obj.ID)
	require.NoError(t, err)
	assert.Equal(t, ComposeFallback(obj), text)

	repo.AssertExpectations(t)
}

func TestGetNarrative_ModeSwitchShadowsStaleFallbackEntry(t *testing.T) {
	obj := testObject()

	// Phase 1: no generator configured, a fallback row gets cached.
	heritageRepo := new(MockHeritageRepo)
	heritageRepo.On("GetObject", mock.Anything, obj.ID).Return(obj, nil)

	stored := map[string]string{}
	repo := new(MockNarrativeRepo)
	repo.On("GetNarrative", mock.Anything, obj.ID, mock.AnythingOfType("string")).
		Return("", types.ErrNotFound)
	repo.On("UpsertNarrative", mock.Anything, obj.ID, mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			stored[args.String(2)] = args.String(3)
		}).Return(nil)

	fallbackSvc := NewService(heritageRepo, repo, nil, time.Second, testLogger())
	fallbackText, err := fallbackSvc.GetNarrative(context.Background(), obj.ID)
	require.NoError(t, err)

	// Phase 2: generator becomes available; the new key must miss and produce
	// different text, while the fallback row is upserted under its own key,
	// never deleted.
	client := &fakeChatClient{text: "Fresh model-written narration.", model: "gemini-2.5-flash"}
	modelSvc := NewService(heritageRepo, repo, client, time.Second, testLogger())

	modelText, err := modelSvc.GetNarrative(context.Background(), obj.ID)
	require.NoError(t, err)

	assert.NotEqual(t, fallbackText, modelText)
	assert.EqualValues(t, 1, client.calls.Load())

	require.Contains(t, stored, fallbackGenerationKey)
	require.Contains(t, stored, "gemini-2.5-flash:prompt-v3")
	assert.Equal(t, fallbackText, stored[fallbackGenerationKey], "old entry is shadowed, not removed")
}

func TestGetNarrative_CachedRowSkipsGeneration(t *testing.T) {
	obj := testObject()
	client := &fakeChatClient{text: "should never be used", model: "gemini-2.5-flash"}

	heritageRepo := new(MockHeritageRepo)

	repo := new(MockNarrativeRepo)
	repo.On("GetNarrative", mock.Anything, obj.ID, "gemini-2.5-flash:prompt-v3").
		Return("persisted story", nil).Once()

	svc := NewService(heritageRepo, repo, client, time.Second, testLogger())

	text, err := svc.GetNarrative(context.Background(), obj.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted story", text)
	assert.Zero(t, client.calls.Load())

	heritageRepo.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything)
}

func TestGetNarrative_GeneratorErrorFallsBackSilently(t *testing.T) {
	obj := testObject()
	client := &fakeChatClient{err: context.DeadlineExceeded, model: "gemini-2.5-flash"}

	heritageRepo := new(MockHeritageRepo)
	heritageRepo.On("GetObject", mock.Anything, obj.ID).Return(obj, nil).Once()

	repo := new(MockNarrativeRepo)
	key := "gemini-2.5-flash:prompt-v3"
	repo.On("GetNarrative", mock.Anything, obj.ID, key).Return("", types.ErrNotFound).Once()
	repo.On("UpsertNarrative", mock.Anything, obj.ID, key, mock.AnythingOfType("string")).Return(nil).Once()

	svc := NewService(heritageRepo, repo, client, time.Second, testLogger())

	text, err := svc.GetNarrative(context.Background(), obj.ID)
	require.NoError(t, err, "generator failures must never surface")
	assert.Equal(t, ComposeFallback(obj), text)
}

func TestGetNarrative_TimeoutBoundsTheGeneratorCall(t *testing.T) {
	obj := testObject()
	client := &fakeChatClient{blockCtx: true, model: "gemini-2.5-flash"}

	heritageRepo := new(MockHeritageRepo)
	heritageRepo.On("GetObject", mock.Anything, obj.ID).Return(obj, nil).Once()

	repo := new(MockNarrativeRepo)
	key := "gemini-2.5-flash:prompt-v3"
	repo.On("GetNarrative", mock.Anything, obj.ID, key).Return("", types.ErrNotFound).Once()
	repo.On("UpsertNarrative", mock.Anything, obj.ID, key, mock.AnythingOfType("string")).Return(nil).Once()

	svc := NewService(heritageRepo, repo, client, 50*time.Millisecond, testLogger())

	done := make(chan struct{})
	var text string
	go func() {
		defer close(done)
		text, _ = svc.GetNarrative(context.Background(), obj.ID)
	}()

	select {
	case <-done:
		assert.Equal(t, ComposeFallback(obj), text)
	case <-time.After(2 * time.Second):
		t.Fatal("generator call was not bounded by its timeout")
	}
}

func TestGetNarrative_RefusalTextFallsBack(t *testing.T) {
	obj := testObject()
	client := &fakeChatClient{text: "I'm sorry, I cannot describe this building.", model: "gemini-2.5-flash"}

	heritageRepo := new(MockHeritageRepo)
	heritageRepo.On("GetObject", mock.Anything, obj.ID).Return(obj, nil).Once()

	repo := new(MockNarrativeRepo)
	key := "gemini-2.5-flash:prompt-v3"
	repo.On("GetNarrative", mock.Anything, obj.ID, key).Return("", types.ErrNotFound).Once()
	repo.On("UpsertNarrative", mock.Anything, obj.ID, key, ComposeFallback(obj)).Return(nil).Once()

	svc := NewService(heritageRepo, repo, client, time.Second, testLogger())

	text, err := svc.GetNarrative(context.Background(), obj.ID)
	require.NoError(t, err)
	assert.Equal(t, ComposeFallback(obj), text)
}

func TestGetNarrative_UnknownObjectReturnsNotFound(t *testing.T) {
	objectID := uuid.New()

	heritageRepo := new(MockHeritageRepo)
	heritageRepo.On("GetObject", mock.Anything, objectID).Return(nil, types.ErrNotFound).Once()

	repo := new(MockNarrativeRepo)
	repo.On("GetNarrative", mock.Anything, objectID, fallbackGenerationKey).Return("", types.ErrNotFound).Once()

	svc := NewService(heritageRepo, repo, nil, time.Second, testLogger())

	_, err := svc.GetNarrative(context.Background(), objectID)
	require.ErrorIs(t, err, types.ErrNotFound)
}
