package route

import (
	"github.com/google/uuid"

	"github.com/FACorreiaa/heritage-routes-api/internal/types"
)

// BuildGreedyRoute orders candidates into a visitable sequence using the
// nearest-neighbor heuristic: starting from start, repeatedly visit the
// closest unvisited candidate. Ties are broken by input position, so the
// result is deterministic regardless of how the candidate query happened to
// order equidistant rows.
//
// The heuristic is O(n²) and intentionally approximate; it is not a
// shortest-path or TSP solver. An empty candidate set yields an empty route.
func BuildGreedyRoute(start types.Coordinates, candidates []types.HeritageObject) []types.RouteStop {
	remaining := dedupeByID(candidates)
	if len(remaining) == 0 {
		return nil
	}

	stops := make([]types.RouteStop, 0, len(remaining))
	current := start

	for sequence := 1; len(remaining) > 0; sequence++ {
		nearestIdx := 0
		minDistance := HaversineMeters(current, remaining[0].Coordinates)
		for i := 1; i < len(remaining); i++ {
			// Strict less-than keeps the earliest candidate on equal distances.
			if d := HaversineMeters(current, remaining[i].Coordinates); d < minDistance {
				minDistance = d
				nearestIdx = i
			}
		}

		nearest := remaining[nearestIdx]
		remaining = append(remaining[:nearestIdx], remaining[nearestIdx+1:]...)

		stops = append(stops, types.RouteStop{
			SequenceNumber:             sequence,
			Object:                     nearest,
			DistanceFromPreviousMeters: minDistance,
		})
		current = nearest.Coordinates
	}

	return stops
}

// TotalDistanceMeters sums the per-stop leg distances.
func TotalDistanceMeters(stops []types.RouteStop) float64 {
	var total float64
	for _, stop := range stops {
		total += stop.DistanceFromPreviousMeters
	}
	return total
}

// dedupeByID drops repeated objects, keeping the first occurrence so the
// input ordering (and with it the tie-break rule) is preserved.
func dedupeByID(candidates []types.HeritageObject) []types.HeritageObject {
	seen := make(map[uuid.UUID]struct{}, len(candidates))
	out := make([]types.HeritageObject, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
