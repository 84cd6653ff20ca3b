package packing

import (
	"fmt"
	"math"
	"time"

	"github.com/yanqian/packwise/internal/domain/weather"
	"github.com/yanqian/packwise/pkg/metrics"
)

// Occasion is the purpose of a trip.
type Occasion string

const (
	OccasionBusiness   Occasion = "business"
	OccasionVacation   Occasion = "vacation"
	OccasionAdventure  Occasion = "adventure"
	OccasionFamily     Occasion = "family"
	OccasionRomantic   Occasion = "romantic"
	OccasionSolo       Occasion = "solo"
	OccasionGroup      Occasion = "group"
	OccasionWedding    Occasion = "wedding"
	OccasionConference Occasion = "conference"
	OccasionOther      Occasion = "other"
)

var occasions = []Occasion{
	OccasionBusiness, OccasionVacation, OccasionAdventure, OccasionFamily, OccasionRomantic,
	OccasionSolo, OccasionGroup, OccasionWedding, OccasionConference, OccasionOther,
}

// UnmarshalText rejects values outside the closed set.
func (o *Occasion) UnmarshalText(text []byte) error {
	v := Occasion(text)
	for _, known := range occasions {
		if v == known {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown occasion %q", string(text))
}

// Activity is something planned during the trip.
type Activity string

const (
	ActivitySightseeing Activity = "sightseeing"
	ActivityBeach       Activity = "beach"
	ActivitySwimming    Activity = "swimming"
	ActivityHiking      Activity = "hiking"
	ActivitySkiing      Activity = "skiing"
	ActivityCamping     Activity = "camping"
	ActivitySports      Activity = "sports"
	ActivityPhotography Activity = "photography"
	ActivityDining      Activity = "dining"
	ActivityShopping    Activity = "shopping"
	ActivityNightlife   Activity = "nightlife"
	ActivityMeetings    Activity = "business_meetings"
	ActivityMuseums     Activity = "museums"
)

// activityOrder is the canonical iteration order used wherever activities are listed.
var activityOrder = []Activity{
	ActivitySightseeing, ActivityBeach, ActivitySwimming, ActivityHiking, ActivitySkiing,
	ActivityCamping, ActivitySports, ActivityPhotography, ActivityDining, ActivityShopping,
	ActivityNightlife, ActivityMeetings, ActivityMuseums,
}

// UnmarshalText rejects values outside the closed set.
func (a *Activity) UnmarshalText(text []byte) error {
	v := Activity(text)
	for _, known := range activityOrder {
		if v == known {
			*a = v
			return nil
		}
	}
	return fmt.Errorf("unknown activity %q", string(text))
}

// WeatherKind is the coarse expected weather for a trip.
type WeatherKind string

const (
	WeatherHot      WeatherKind = "hot"
	WeatherWarm     WeatherKind = "warm"
	WeatherModerate WeatherKind = "moderate"
	WeatherCool     WeatherKind = "cool"
	WeatherCold     WeatherKind = "cold"
	WeatherRainy    WeatherKind = "rainy"
	WeatherSnowy    WeatherKind = "snowy"
	WeatherVariable WeatherKind = "variable"
)

var weatherKinds = []WeatherKind{
	WeatherHot, WeatherWarm, WeatherModerate, WeatherCool, WeatherCold, WeatherRainy, WeatherSnowy, WeatherVariable,
}

// UnmarshalText rejects values outside the closed set.
func (w *WeatherKind) UnmarshalText(text []byte) error {
	v := WeatherKind(text)
	for _, known := range weatherKinds {
		if v == known {
			*w = v
			return nil
		}
	}
	return fmt.Errorf("unknown weather %q", string(text))
}

// Label is the human readable form used in prompts.
func (w WeatherKind) Label() string {
	switch w {
	case WeatherHot:
		return "Hot"
	case WeatherWarm:
		return "Warm"
	case WeatherModerate:
		return "Moderate"
	case WeatherCool:
		return "Cool"
	case WeatherCold:
		return "Cold"
	case WeatherRainy:
		return "Rainy"
	case WeatherSnowy:
		return "Snowy"
	default:
		return "Variable"
	}
}

// TripType describes how the trip is taken.
type TripType string

const (
	TripTypeDomestic      TripType = "domestic"
	TripTypeInternational TripType = "international"
	TripTypeRoadTrip      TripType = "road_trip"
	TripTypeCruise        TripType = "cruise"
	TripTypeBackpacking   TripType = "backpacking"
)

var tripTypes = []TripType{TripTypeDomestic, TripTypeInternational, TripTypeRoadTrip, TripTypeCruise, TripTypeBackpacking}

// UnmarshalText rejects values outside the closed set.
func (t *TripType) UnmarshalText(text []byte) error {
	v := TripType(text)
	for _, known := range tripTypes {
		if v == known {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("unknown trip type %q", string(text))
}

// Trip is supplied by callers and never mutated by the engine.
type Trip struct {
	Destination     string      `json:"destination" binding:"required"`
	StartDate       time.Time   `json:"startDate" binding:"required"`
	EndDate         time.Time   `json:"endDate" binding:"required"`
	Occasion        Occasion    `json:"occasion" binding:"required"`
	Activities      []Activity  `json:"activities"`
	ExpectedWeather WeatherKind `json:"expectedWeather" binding:"required"`
	TripType        TripType    `json:"tripType"`
}

// DurationDays is the whole number of days between the dates, never below one.
func (t Trip) DurationDays() int {
	days := int(math.Floor(t.EndDate.Sub(t.StartDate).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Item is one thing to pack.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Packed   bool   `json:"packed"`
}

// Category is a named, ordered group of items.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Source identifies which tier produced a packing list.
type Source string

const (
	SourceRemote Source = "remote"
	SourceRules  Source = "rules"
)

// Request is the payload accepted by both generation strategies.
type Request struct {
	Trip    Trip             `json:"trip" binding:"required"`
	Weather *weather.Summary `json:"weather,omitempty"`
}

// Response is what the generation entry points resolve to.
type Response struct {
	RequestID      string              `json:"requestId"`
	Categories     []Category          `json:"categories"`
	Source         Source              `json:"source"`
	FallbackReason FailureKind         `json:"fallbackReason,omitempty"`
	DurationMs     int64               `json:"durationMs,omitempty"`
	TokenUsage     *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// ChatRequest carries a free-form question for the assistant.
type ChatRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// ChatResponse is the assistant reply.
type ChatResponse struct {
	RequestID string `json:"requestId"`
	Reply     string `json:"reply"`
}
