// README: Google Maps transit directions; traces the rail path between two stops for the curve file.
package maps

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"mrx/internal/types"
)

var ErrNoRoute = errors.New("no transit route found")

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// TransitPath returns the polyline of the rail/tram legs from origin to destination.
// Walking steps are left out; when the route has no transit step the overview line is used.
func (s *RouteService) TransitPath(ctx context.Context, origin, destination types.Point) ([]types.Point, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(origin),
		Destination: latLng(destination),
		Mode:        maps.TravelModeTransit,
		TransitMode: []maps.TransitMode{maps.TransitModeTram, maps.TransitModeRail, maps.TransitModeSubway},
		Language:    "de",
		Region:      "DE",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, ErrNoRoute
	}

	var out []types.Point
	for _, leg := range routes[0].Legs {
		for _, step := range leg.Steps {
			if step.TravelMode != "TRANSIT" {
				continue
			}
			pts, err := step.Polyline.Decode()
			if err != nil {
				return nil, fmt.Errorf("decode step polyline: %w", err)
			}
			out = appendPoints(out, pts)
		}
	}
	if len(out) < 2 {
		pts, err := routes[0].OverviewPolyline.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode overview polyline: %w", err)
		}
		out = appendPoints(out[:0], pts)
	}
	if len(out) < 2 {
		return nil, ErrNoRoute
	}
	return out, nil
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}

// appendPoints skips a point equal to the previous one, which joins consecutive steps.
func appendPoints(out []types.Point, pts []maps.LatLng) []types.Point {
	for _, ll := range pts {
		p := types.Point{Lat: ll.Lat, Lng: ll.Lng}
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}
