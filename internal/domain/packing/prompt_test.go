package packing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/packwise/internal/domain/weather"
)

func sampleTrip() Trip {
	return Trip{
		Destination:     " Lisbon ",
		StartDate:       time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC),
		Occasion:        OccasionVacation,
		Activities:      []Activity{ActivityPhotography, ActivityBeach},
		ExpectedWeather: WeatherHot,
		TripType:        TripTypeRoadTrip,
	}
}

func TestPromptBuilderDefaultTemplate(t *testing.T) {
	builder, err := NewPromptBuilder("")
	require.NoError(t, err)

	prompt, err := builder.Build(sampleTrip(), nil)
	require.NoError(t, err)

	require.Contains(t, prompt, "trip to Lisbon from Jul 10, 2025 to Jul 14, 2025 (4 days)")
	require.Contains(t, prompt, "Trip type: Road trip")
	require.Contains(t, prompt, "Occasion: Vacation")
	require.Contains(t, prompt, "Planned activities: Beach, Photography")
	require.Contains(t, prompt, "Weather: Hot")
	require.Contains(t, prompt, "Essentials, Clothing, Toiletries, Electronics, Weather Gear, Activity Gear")
}

func TestPromptBuilderUsesLiveWeather(t *testing.T) {
	builder, err := NewPromptBuilder("{{.Weather}} / {{.Activities}}")
	require.NoError(t, err)

	current := 71.6
	trip := sampleTrip()
	trip.Activities = nil
	prompt, err := builder.Build(trip, &weather.Summary{Description: "clear sky", Current: &current, Units: weather.UnitsImperial})
	require.NoError(t, err)
	require.Equal(t, "clear sky, 72°F / general activities", prompt)
}

func TestPromptBuilderRejectsBadTemplates(t *testing.T) {
	_, err := NewPromptBuilder("{{.Destination")
	require.Error(t, err)

	builder, err := NewPromptBuilder("{{.Budget}}")
	require.NoError(t, err)
	_, err = builder.Build(sampleTrip(), nil)
	require.Error(t, err)
}
