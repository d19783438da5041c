package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/heritage-routes-api/internal/handler"
	"github.com/FACorreiaa/heritage-routes-api/internal/types"
)

// mockRouteServicer is a test double for handler.RouteServicer.
// Set only the method fields your test needs.
type mockRouteServicer struct {
	buildRoute  func(ctx context.Context, ownerID uuid.UUID, start types.Coordinates, startAddress *string, desiredCount int) (*types.Route, error)
	getRoute    func(ctx context.Context, ownerID, routeID uuid.UUID) (*types.Route, error)
	listRoutes  func(ctx context.Context, ownerID uuid.UUID, filter types.RouteListFilter) ([]types.Route, error)
	setFavorite func(ctx context.Context, ownerID, routeID uuid.UUID, isFavorite bool) error
}

func (m *mockRouteServicer) BuildRoute(ctx context.Context, ownerID uuid.UUID, start types.Coordinates, startAddress *string, desiredCount int) (*types.Route, error) {
	return m.buildRoute(ctx, ownerID, start, startAddress, desiredCount)
}

func (m *mockRouteServicer) GetRoute(ctx context.Context, ownerID, routeID uuid.UUID) (*types.Route, error) {
	return m.getRoute(ctx, ownerID, routeID)
}

func (m *mockRouteServicer) ListRoutes(ctx context.Context, ownerID uuid.UUID, filter types.RouteListFilter) ([]types.Route, error) {
	return m.listRoutes(ctx, ownerID, filter)
}

func (m *mockRouteServicer) SetFavorite(ctx context.Context, ownerID, routeID uuid.UUID, isFavorite bool) error {
	return m.setFavorite(ctx, ownerID, routeID, isFavorite)
}

var _ handler.RouteServicer = (*mockRouteServicer)(nil)

// ---- helpers ---------------------------------------------------------------

func newHTTPHandler(routes handler.RouteServicer, narratives handler.NarrativeServicer) http.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return handler.NewServer(logger, routes, narratives, nil, nil).Routes()
}

func routeFixture(ownerID uuid.UUID) *types.Route {
	address := "Mokhovaya St, 1"
	return &types.Route{
		ID:                  uuid.New(),
		OwnerID:             ownerID,
		StartCoordinates:    types.Coordinates{Latitude: 55.75, Longitude: 37.62},
		StartAddress:        &address,
		TotalDistanceMeters: 1240.5,
		StopCount:           2,
		CreatedAt:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Stops: []types.RouteStop{
			{
				SequenceNumber:             1,
				DistanceFromPreviousMeters: 420.0,
				Object: types.HeritageObject{
					ID:   uuid.New(),
					Name: "Pashkov House",
					Coordinates: types.Coordinates{
						Latitude:  55.7486,
						Longitude: 37.6093,
					},
				},
			},
			{
				SequenceNumber:             2,
				DistanceFromPreviousMeters: 820.5,
				Object: types.HeritageObject{
					ID:   uuid.New(),
					Name: "Bolshoi Theatre",
					Coordinates: types.Coordinates{
						Latitude:  55.7601,
						Longitude: 37.6186,
					},
				},
			},
		},
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// ---- POST /v1/routes -------------------------------------------------------

func TestBuildRoute_201(t *testing.T) {
	owner := uuid.New()
	fixture := routeFixture(owner)

	var gotCount int
	svc := &mockRouteServicer{
		buildRoute: func(_ context.Context, ownerID uuid.UUID, start types.Coordinates, _ *string, desiredCount int) (*types.Route, error) {
			assert.Equal(t, owner, ownerID)
			assert.InDelta(t, 55.75, start.Latitude, 1e-9)
			gotCount = desiredCount
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"start_latitude":  55.75,
		"start_longitude": 37.62,
		"objects_count":   3,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/routes", body)
	req.Header.Set("X-User-ID", owner.String())
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 3, gotCount)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, fixture.ID.String(), resp["id"])
	assert.Equal(t, float64(2), resp["stop_count"])
	stops, ok := resp["stops"].([]any)
	require.True(t, ok)
	assert.Len(t, stops, 2)
}

func TestBuildRoute_404WhenNoCandidates(t *testing.T) {
	svc := &mockRouteServicer{
		buildRoute: func(_ context.Context, _ uuid.UUID, _ types.Coordinates, _ *string, _ int) (*types.Route, error) {
			return nil, types.ErrNotFound
		},
	}

	body := jsonBody(t, map[string]any{"start_latitude": 0.0, "start_longitude": 0.0})
	req := httptest.NewRequest(http.MethodPost, "/v1/routes", body)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildRoute_400OnInvalidCoordinates(t *testing.T) {
	svc := &mockRouteServicer{
		buildRoute: func(_ context.Context, _ uuid.UUID, _ types.Coordinates, _ *string, _ int) (*types.Route, error) {
			return nil, types.ErrBadRequest
		},
	}

	body := jsonBody(t, map[string]any{"start_latitude": 91.0, "start_longitude": 37.62})
	req := httptest.NewRequest(http.MethodPost, "/v1/routes", body)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuildRoute_401WithoutUserHeader(t *testing.T) {
	body := jsonBody(t, map[string]any{"start_latitude": 55.75, "start_longitude": 37.62})
	req := httptest.NewRequest(http.MethodPost, "/v1/routes", body)
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockRouteServicer{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBuildRoute_400OnMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/routes", bytes.NewBufferString("{not json"))
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockRouteServicer{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GET /v1/routes --------------------------------------------------------

func TestListRoutes_200PassesFilter(t *testing.T) {
	owner := uuid.New()

	var gotFilter types.RouteListFilter
	svc := &mockRouteServicer{
		listRoutes: func(_ context.Context, _ uuid.UUID, filter types.RouteListFilter) ([]types.Route, error) {
			gotFilter = filter
			return []types.Route{*routeFixture(owner)}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/routes?favorites=true&limit=10", nil)
	req.Header.Set("X-User-ID", owner.String())
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotFilter.FavoritesOnly)
	assert.Equal(t, 10, gotFilter.Limit)
}

func TestListRoutes_200EmptyList(t *testing.T) {
	svc := &mockRouteServicer{
		listRoutes: func(_ context.Context, _ uuid.UUID, _ types.RouteListFilter) ([]types.Route, error) {
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/routes", nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"routes":[]}`, rec.Body.String())
}

func TestListRoutes_400OnBadLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/routes?limit=zero", nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockRouteServicer{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GET /v1/routes/{routeID} ----------------------------------------------

func TestGetRoute_200(t *testing.T) {
	owner := uuid.New()
	fixture := routeFixture(owner)

	svc := &mockRouteServicer{
		getRoute: func(_ context.Context, _ uuid.UUID, routeID uuid.UUID) (*types.Route, error) {
			assert.Equal(t, fixture.ID, routeID)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/routes/"+fixture.ID.String(), nil)
	req.Header.Set("X-User-ID", owner.String())
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, fixture.ID.String(), resp["id"])
}

func TestGetRoute_200SerializesStopObjectFields(t *testing.T) {
	owner := uuid.New()
	fixture := routeFixture(owner)

	address := "Vozdvizhenka St, 3/5"
	buildYear := "1786"
	description := "Neoclassical mansion overlooking the Kremlin"
	fixture.Stops[0].Object.Address = &address
	fixture.Stops[0].Object.BuildYear = &buildYear
	fixture.Stops[0].Object.Description = &description

	svc := &mockRouteServicer{
		getRoute: func(_ context.Context, _, _ uuid.UUID) (*types.Route, error) {
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/routes/"+fixture.ID.String(), nil)
	req.Header.Set("X-User-ID", owner.String())
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Stops []struct {
			Object map[string]any `json:"object"`
		} `json:"stops"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Stops, 2)

	obj := resp.Stops[0].Object
	assert.Equal(t, fixture.Stops[0].Object.ID.String(), obj["id"])
	assert.Equal(t, "Pashkov House", obj["name"])
	assert.Equal(t, address, obj["address"])
	assert.Equal(t, buildYear, obj["build_year"])
	assert.Equal(t, description, obj["description"])
	assert.InDelta(t, 55.7486, obj["latitude"].(float64), 1e-9)

	// Every serialized field maps back to a column on the heritage record.
	var gotKeys []string
	for k := range obj {
		gotKeys = append(gotKeys, k)
	}
	assert.ElementsMatch(t,
		[]string{"id", "name", "address", "build_year", "description", "latitude", "longitude"},
		gotKeys)
}

func TestGetRoute_404(t *testing.T) {
	svc := &mockRouteServicer{
		getRoute: func(_ context.Context, _, _ uuid.UUID) (*types.Route, error) {
			return nil, types.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/routes/"+uuid.NewString(), nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRoute_400OnBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/routes/not-a-uuid", nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockRouteServicer{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- PUT /v1/routes/{routeID}/favorite -------------------------------------

func TestSetFavorite_204(t *testing.T) {
	owner := uuid.New()
	routeID := uuid.New()

	var gotFavorite bool
	svc := &mockRouteServicer{
		setFavorite: func(_ context.Context, _ uuid.UUID, id uuid.UUID, isFavorite bool) error {
			assert.Equal(t, routeID, id)
			gotFavorite = isFavorite
			return nil
		},
	}

	body := jsonBody(t, map[string]any{"is_favorite": true})
	req := httptest.NewRequest(http.MethodPut, "/v1/routes/"+routeID.String()+"/favorite", body)
	req.Header.Set("X-User-ID", owner.String())
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, gotFavorite)
}

func TestSetFavorite_404(t *testing.T) {
	svc := &mockRouteServicer{
		setFavorite: func(_ context.Context, _, _ uuid.UUID, _ bool) error {
			return types.ErrNotFound
		},
	}

	body := jsonBody(t, map[string]any{"is_favorite": false})
	req := httptest.NewRequest(http.MethodPut, "/v1/routes/"+uuid.NewString()+"/favorite", body)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
