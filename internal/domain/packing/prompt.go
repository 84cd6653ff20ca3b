package packing

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/yanqian/packwise/internal/domain/weather"
)

// DefaultPromptTemplate is used when no template is configured.
const DefaultPromptTemplate = `Create a detailed packing list for a trip to {{.Destination}} from {{.StartDate}} to {{.EndDate}} ({{.Days}} days).
Trip type: {{.TripType}}
Occasion: {{.Occasion}}
Planned activities: {{.Activities}}
Weather: {{.Weather}}

Organize the list into exactly these six categories: Essentials, Clothing, Toiletries, Electronics, Weather Gear, Activity Gear.
Write each category name on its own line ending with a colon, followed by one item per line starting with "- ".
Example:
Essentials:
- Passport
- Wallet
`

const promptDateLayout = "Jan 2, 2006"

type promptData struct {
	Destination string
	StartDate   string
	EndDate     string
	Days        int
	TripType    string
	Occasion    string
	Activities  string
	Weather     string
}

// PromptBuilder renders the generation prompt for a trip.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder parses the template, falling back to DefaultPromptTemplate when empty.
func NewPromptBuilder(raw string) (*PromptBuilder, error) {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultPromptTemplate
	}
	tmpl, err := template.New("packing").Option("missingkey=error").Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// Build renders the prompt for the trip and optional live weather.
func (b *PromptBuilder) Build(trip Trip, summary *weather.Summary) (string, error) {
	data := promptData{
		Destination: strings.TrimSpace(trip.Destination),
		StartDate:   trip.StartDate.Format(promptDateLayout),
		EndDate:     trip.EndDate.Format(promptDateLayout),
		Days:        trip.DurationDays(),
		TripType:    humanize(string(trip.TripType)),
		Occasion:    humanize(string(trip.Occasion)),
		Activities:  activityList(trip.Activities),
		Weather:     weatherLine(trip.ExpectedWeather, summary),
	}
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

func activityList(activities []Activity) string {
	selected := make(map[Activity]bool, len(activities))
	for _, a := range activities {
		selected[a] = true
	}
	names := make([]string, 0, len(selected))
	for _, a := range activityOrder {
		if selected[a] {
			names = append(names, humanize(string(a)))
		}
	}
	if len(names) == 0 {
		return "general activities"
	}
	return strings.Join(names, ", ")
}

func weatherLine(kind WeatherKind, summary *weather.Summary) string {
	if summary == nil || strings.TrimSpace(summary.Description) == "" {
		return kind.Label()
	}
	line := summary.Description
	if summary.Current != nil {
		unit := "°C"
		if summary.Units == weather.UnitsImperial {
			unit = "°F"
		}
		line = fmt.Sprintf("%s, %.0f%s", line, *summary.Current, unit)
	}
	return line
}

func humanize(value string) string {
	value = strings.ReplaceAll(strings.TrimSpace(value), "_", " ")
	if value == "" {
		return "unspecified"
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
