package route

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/heritage-routes-api/internal/types"
)

func TestHaversineMeters_ZeroForIdenticalPoints(t *testing.T) {
	p := types.Coordinates{Latitude: 55.7558, Longitude: 37.6173}
	assert.Zero(t, HaversineMeters(p, p))
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	pairs := []struct {
		a, b types.Coordinates
	}{
		{types.Coordinates{Latitude: 55.7558, Longitude: 37.6173}, types.Coordinates{Latitude: 55.7601, Longitude: 37.6186}},
		{types.Coordinates{Latitude: 0, Longitude: 0}, types.Coordinates{Latitude: -45, Longitude: 170}},
		{types.Coordinates{Latitude: 89.9, Longitude: 10}, types.Coordinates{Latitude: -89.9, Longitude: -10}},
	}
	for _, pair := range pairs {
		assert.InDelta(t, HaversineMeters(pair.a, pair.b), HaversineMeters(pair.b, pair.a), 1e-9)
	}
}

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// One degree of longitude on the equator is R * pi/180.
	a := types.Coordinates{Latitude: 0, Longitude: 0}
	b := types.Coordinates{Latitude: 0, Longitude: 1}
	assert.InDelta(t, 111194.93, HaversineMeters(a, b), 0.5)
}

func TestHaversineMeters_RedSquareToBolshoi(t *testing.T) {
	redSquare := types.Coordinates{Latitude: 55.7539, Longitude: 37.6208}
	bolshoi := types.Coordinates{Latitude: 55.7601, Longitude: 37.6186}

	d := HaversineMeters(redSquare, bolshoi)
	assert.Greater(t, d, 600.0)
	assert.Less(t, d, 800.0)
}
