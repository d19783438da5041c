package types

import (
	"time"

	"github.com/google/uuid"
)

// RouteStop is one ordered visit inside a route. SequenceNumber is 1-based
// and contiguous; DistanceFromPreviousMeters is measured from the previous
// stop, or from the route start for the first stop.
type RouteStop struct {
	SequenceNumber             int            `json:"sequence_number"`
	Object                     HeritageObject `json:"object"`
	DistanceFromPreviousMeters float64        `json:"distance_from_previous_meters"`
}

// Route is a persisted walking route. Routes are written once inside a single
// transaction and never mutated afterwards, except for the favorite flag.
type Route struct {
	ID                  uuid.UUID   `json:"id"`
	OwnerID             uuid.UUID   `json:"owner_id"`
	StartCoordinates    Coordinates `json:"start_coordinates"`
	StartAddress        *string     `json:"start_address,omitempty"`
	TotalDistanceMeters float64     `json:"total_distance_meters"`
	StopCount           int         `json:"stop_count"`
	IsFavorite          bool        `json:"is_favorite"`
	CreatedAt           time.Time   `json:"created_at"`
	Stops               []RouteStop `json:"stops,omitempty"`
}

// RouteListFilter narrows a route history listing.
type RouteListFilter struct {
	FavoritesOnly bool
	Limit         int
}
