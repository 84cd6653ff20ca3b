package googlemaps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/yanqian/packwise/internal/domain/weather"
	apperrors "github.com/yanqian/packwise/pkg/errors"
)

// Geocoder resolves destinations through the Google Maps Geocoding API.
type Geocoder struct {
	client *maps.Client
}

// NewGeocoder initializes a Google Maps client.
func NewGeocoder(apiKey string) (*Geocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create google maps client: %w", err)
	}
	return &Geocoder{client: client}, nil
}

// Geocode implements weather.Geocoder.
func (g *Geocoder) Geocode(ctx context.Context, query string) ([]weather.Location, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransport, "google maps geocode failed", err)
	}
	return toLocations(results), nil
}

func toLocations(results []maps.GeocodingResult) []weather.Location {
	out := make([]weather.Location, 0, len(results))
	for _, r := range results {
		out = append(out, weather.Location{
			Name:    r.FormattedAddress,
			Country: countryCode(r.AddressComponents),
			Lat:     r.Geometry.Location.Lat,
			Lon:     r.Geometry.Location.Lng,
		})
	}
	return out
}

func countryCode(components []maps.AddressComponent) string {
	for _, c := range components {
		for _, t := range c.Types {
			if t == "country" {
				return c.ShortName
			}
		}
	}
	return ""
}

var _ weather.Geocoder = (*Geocoder)(nil)
