package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

type GoogleMapsProvider struct {
	client *maps.Client
}

func NewGoogleMapsProvider(apiKey string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsProvider{
		client: client,
	}, nil
}

func (g *GoogleMapsProvider) EstimateRoute(ctx context.Context, origin, destination string) (*RouteEstimate, error) {
	req := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, fmt.Errorf("no route found between %q and %q", origin, destination)
	}

	leg := routes[0].Legs[0]
	return &RouteEstimate{
		DistanceText:    leg.Distance.HumanReadable,
		DistanceMeters:  float64(leg.Distance.Meters),
		DurationText:    leg.Duration.String(),
		DurationSeconds: int(leg.Duration.Seconds()),
		Summary:         routes[0].Summary,
	}, nil
}

func (g *GoogleMapsProvider) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	resp, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("no geocoding results for %q", address)
	}

	result := resp[0]
	return &GeocodeResult{
		PlaceID:   result.PlaceID,
		Address:   result.FormattedAddress,
		Latitude:  result.Geometry.Location.Lat,
		Longitude: result.Geometry.Location.Lng,
	}, nil
}
