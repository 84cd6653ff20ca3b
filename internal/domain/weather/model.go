package weather

import (
	"context"
	"strings"
	"time"
)

// Units selects the temperature unit system requested by the caller.
type Units string

const (
	// UnitsMetric reports temperatures in Celsius.
	UnitsMetric Units = "metric"
	// UnitsImperial reports temperatures in Fahrenheit.
	UnitsImperial Units = "imperial"
)

// ParseUnits normalizes free-form caller input, defaulting to metric.
func ParseUnits(raw string) Units {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "imperial", "fahrenheit", "f":
		return UnitsImperial
	default:
		return UnitsMetric
	}
}

// Source records where a summary came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Summary is the weather context consumed by packing list generation.
type Summary struct {
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Current     *float64 `json:"current,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Units       Units    `json:"units"`
	Source      Source   `json:"source"`
}

// Location is a geocoding match.
type Location struct {
	Name    string
	Country string
	Lat     float64
	Lon     float64
}

// Condition is a single weather condition reported by the forecast upstream.
type Condition struct {
	Main        string
	Description string
	Icon        string
}

// Forecast is the normalized multi-day forecast for a coordinate.
type Forecast struct {
	CurrentTemp       *float64
	CurrentConditions []Condition
	Daily             []DailyForecast
}

// DailyForecast covers one forecast day.
type DailyForecast struct {
	Date       time.Time
	Min        float64
	Max        float64
	Conditions []Condition
}

// Entry is what the cache store persists.
type Entry struct {
	Summary  Summary   `json:"summary"`
	StoredAt time.Time `json:"storedAt"`
}

// Geocoder resolves a destination name to coordinates. Implementations return
// matches in relevance order; only the first one is used.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]Location, error)
}

// Forecaster fetches a forecast for coordinates in the given unit system.
type Forecaster interface {
	Forecast(ctx context.Context, lat, lon float64, units Units) (Forecast, error)
}

// Store persists cached summaries. Expiry is decided by the service on read.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}

// Config wires runtime knobs for the weather service.
type Config struct {
	CacheTTL      time.Duration
	LookupTimeout time.Duration
}
