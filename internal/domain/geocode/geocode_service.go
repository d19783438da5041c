// Package geocode proxies reverse-geocoding lookups to the Yandex geocoder
// so clients can prefill a route's start address from a map pick.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/heritage-routes-api/internal/types"
)

const geocoderBaseURL = "https://geocode-maps.yandex.ru/1.x/"

var _ Service = (*ServiceImpl)(nil)

// Service resolves a coordinate pair to a human-readable address.
type Service interface {
	// ReverseGeocode returns the nearest house address, or an empty string
	// when the geocoder knows nothing about the location.
	ReverseGeocode(ctx context.Context, coords types.Coordinates) (string, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewService(apiKey string, timeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: geocoderBaseURL,
	}
}

// geocoderResponse mirrors the slice of the Yandex payload this service
// reads. Missing keys decode to zero values, which collapse to an empty
// address rather than an error.
type geocoderResponse struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject struct {
					MetaDataProperty struct {
						GeocoderMetaData struct {
							Text string `json:"text"`
						} `json:"GeocoderMetaData"`
					} `json:"metaDataProperty"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

func (s *ServiceImpl) ReverseGeocode(ctx context.Context, coords types.Coordinates) (string, error) {
	ctx, span := otel.Tracer("GeocodeService").Start(ctx, "ReverseGeocode", trace.WithAttributes(
		attribute.Float64("latitude", coords.Latitude),
		attribute.Float64("longitude", coords.Longitude),
	))
	defer span.End()

	if !coords.Valid() {
		span.SetStatus(codes.Error, "invalid coordinates")
		return "", fmt.Errorf("%w: coordinates out of range (%f, %f)",
			types.ErrBadRequest, coords.Latitude, coords.Longitude)
	}

	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("format", "json")
	params.Set("geocode",
		strconv.FormatFloat(coords.Longitude, 'f', -1, 64)+","+strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("kind", "house")
	params.Set("results", "1")
	params.Set("lang", "ru_RU")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to build geocoder request: %w", err)
	}
	req.Header.Set("User-Agent", "heritage-routes")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.ErrorContext(ctx, "geocoder request failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocoder request failed")
		return "", fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, "geocoder returned non-OK status")
		return "", fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var payload geocoderResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed geocoder response")
		return "", fmt.Errorf("failed to decode geocoder response: %w", err)
	}

	members := payload.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		span.SetStatus(codes.Ok, "no address found")
		return "", nil
	}

	address := members[0].GeoObject.MetaDataProperty.GeocoderMetaData.Text
	span.SetAttributes(attribute.Bool("address_found", address != ""))
	span.SetStatus(codes.Ok, "address resolved")
	return address, nil
}
