package types

import "github.com/google/uuid"

// Coordinates is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the pair lies within the WGS84 coordinate ranges.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// HeritageObject is a single cultural heritage record. Rows are imported from
// the open-data registry and are read-only to this service; every descriptive
// field except the name can be missing.
type HeritageObject struct {
	ID             uuid.UUID   `json:"id"`
	GlobalID       int64       `json:"global_id"`
	Name           string      `json:"name"`
	Address        *string     `json:"address,omitempty"`
	District       *string     `json:"district,omitempty"`
	AdmArea        *string     `json:"adm_area,omitempty"`
	ObjectType     *string     `json:"object_type,omitempty"`
	Category       *string     `json:"category,omitempty"`
	SecurityStatus *string     `json:"security_status,omitempty"`
	Description    *string     `json:"description,omitempty"`
	BuildYear      *string     `json:"build_year,omitempty"`
	Coordinates    Coordinates `json:"coordinates"`

	// DistanceMeters is only populated by spatial queries and holds the
	// distance from the query origin.
	DistanceMeters float64 `json:"distance_meters,omitempty"`
}
