package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/packwise/internal/domain/weather"
	apperrors "github.com/yanqian/packwise/pkg/errors"
)

const (
	defaultGeocodeURL  = "https://api.openweathermap.org/geo/1.0/direct"
	defaultForecastURL = "https://api.openweathermap.org/data/3.0/onecall"
)

// Client geocodes destinations and fetches forecasts from OpenWeather.
type Client struct {
	apiKey      string
	geocodeURL  string
	forecastURL string
	httpClient  *http.Client
}

// NewClient builds an API client. Empty URLs fall back to the public endpoints.
func NewClient(apiKey, geocodeURL, forecastURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(geocodeURL) == "" {
		geocodeURL = defaultGeocodeURL
	}
	if strings.TrimSpace(forecastURL) == "" {
		forecastURL = defaultForecastURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:      apiKey,
		geocodeURL:  strings.TrimRight(geocodeURL, "/"),
		forecastURL: strings.TrimRight(forecastURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Geocode implements weather.Geocoder.
func (c *Client) Geocode(ctx context.Context, query string) ([]weather.Location, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "1")
	params.Set("appid", c.apiKey)

	var raw []geoResult
	if err := c.getJSON(ctx, c.geocodeURL+"?"+params.Encode(), &raw); err != nil {
		return nil, err
	}
	out := make([]weather.Location, 0, len(raw))
	for _, r := range raw {
		out = append(out, weather.Location{Name: r.Name, Country: r.Country, Lat: r.Lat, Lon: r.Lon})
	}
	return out, nil
}

// Forecast implements weather.Forecaster.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, units weather.Units) (weather.Forecast, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("units", string(units))
	params.Set("exclude", "minutely,hourly,alerts")
	params.Set("appid", c.apiKey)

	var raw forecastResponse
	if err := c.getJSON(ctx, c.forecastURL+"?"+params.Encode(), &raw); err != nil {
		return weather.Forecast{}, err
	}
	return raw.normalize(), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransport, "build weather request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransport, "weather request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return apperrors.Wrap(apperrors.CodeTransport, fmt.Sprintf("weather request error: status=%d body=%s", resp.StatusCode, string(payload)), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransport, "read weather response", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrap(apperrors.CodeDecode, "decode weather response", err)
	}
	return nil
}

type geoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

type forecastResponse struct {
	Current *struct {
		Temp    *float64    `json:"temp"`
		Weather []condition `json:"weather"`
	} `json:"current"`
	Daily []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Weather []condition `json:"weather"`
	} `json:"daily"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (r forecastResponse) normalize() weather.Forecast {
	var out weather.Forecast
	if r.Current != nil {
		out.CurrentTemp = r.Current.Temp
		out.CurrentConditions = conditions(r.Current.Weather)
	}
	for _, d := range r.Daily {
		out.Daily = append(out.Daily, weather.DailyForecast{
			Date:       time.Unix(d.Dt, 0).UTC(),
			Min:        d.Temp.Min,
			Max:        d.Temp.Max,
			Conditions: conditions(d.Weather),
		})
	}
	return out
}

func conditions(in []condition) []weather.Condition {
	out := make([]weather.Condition, 0, len(in))
	for _, c := range in {
		out = append(out, weather.Condition{Main: c.Main, Description: c.Description, Icon: c.Icon})
	}
	return out
}

var (
	_ weather.Geocoder   = (*Client)(nil)
	_ weather.Forecaster = (*Client)(nil)
)
