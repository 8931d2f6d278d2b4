package maps

import (
	"context"
)

// Provider estimates routes between free-text addresses. Estimates are
// advisory; ride creation succeeds even when the provider is unavailable.
type Provider interface {
	EstimateRoute(ctx context.Context, origin, destination string) (*RouteEstimate, error)
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
}

type RouteEstimate struct {
	DistanceText    string  `json:"distance_text"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationText    string  `json:"duration_text"`
	DurationSeconds int     `json:"duration_seconds"`
	Summary         string  `json:"summary"`
}

type GeocodeResult struct {
	PlaceID   string  `json:"place_id"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
