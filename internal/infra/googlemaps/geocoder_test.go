package googlemaps

import (
	"testing"

	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"github.com/yanqian/packwise/internal/domain/weather"
)

func TestToLocations(t *testing.T) {
	results := []maps.GeocodingResult{{
		FormattedAddress: "Lisbon, Portugal",
		AddressComponents: []maps.AddressComponent{
			{LongName: "Lisbon", ShortName: "Lisbon", Types: []string{"locality"}},
			{LongName: "Portugal", ShortName: "PT", Types: []string{"country", "political"}},
		},
		Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 38.72, Lng: -9.14}},
	}}

	require.Equal(t, []weather.Location{{Name: "Lisbon, Portugal", Country: "PT", Lat: 38.72, Lon: -9.14}}, toLocations(results))
}

func TestNewGeocoderRequiresKey(t *testing.T) {
	_, err := NewGeocoder("")
	require.Error(t, err)
}
