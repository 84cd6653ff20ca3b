package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/packwise/internal/domain/packing"
	"github.com/yanqian/packwise/internal/domain/weather"
	"github.com/yanqian/packwise/internal/infra/config"
)

const tripBody = `{"trip":{"destination":"Lisbon","startDate":"2025-07-10T00:00:00Z","endDate":"2025-07-14T00:00:00Z","occasion":"vacation","activities":["beach"],"expectedWeather":"hot","tripType":"international"}}`

func TestRouter_GeneratePackingList(t *testing.T) {
	svc := &stubPackingService{
		localFn: func(ctx context.Context, req packing.Request) packing.Response {
			require.Equal(t, "Lisbon", req.Trip.Destination)
			require.Equal(t, []packing.Activity{packing.ActivityBeach}, req.Trip.Activities)
			require.Equal(t, 4, req.Trip.DurationDays())
			return packing.Response{RequestID: "r1", Source: packing.SourceRules, Categories: packing.CategorizeTrip(req.Trip)}
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/packing-lists", tripBody, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	var got packing.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, packing.SourceRules, got.Source)
	require.Equal(t, packing.CategoryEssentials, got.Categories[0].Name)
}

func TestRouter_GeneratePackingListRemoteReportsFallback(t *testing.T) {
	svc := &stubPackingService{
		remoteFn: func(ctx context.Context, req packing.Request) packing.Response {
			return packing.Response{Source: packing.SourceRules, FallbackReason: packing.FailureTransport, Categories: packing.CategorizeTrip(req.Trip)}
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/packing-lists/remote", tripBody, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "rules", got["source"])
	require.Equal(t, "transport", got["fallbackReason"])
}

func TestRouter_RejectsInvalidTrips(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"trip":`},
		{name: "unknown occasion", body: `{"trip":{"destination":"Lisbon","startDate":"2025-07-10T00:00:00Z","endDate":"2025-07-14T00:00:00Z","occasion":"party","expectedWeather":"hot"}}`},
		{name: "unknown activity", body: `{"trip":{"destination":"Lisbon","startDate":"2025-07-10T00:00:00Z","endDate":"2025-07-14T00:00:00Z","occasion":"vacation","activities":["surfing"],"expectedWeather":"hot"}}`},
		{name: "blank destination", body: `{"trip":{"destination":"  ","startDate":"2025-07-10T00:00:00Z","endDate":"2025-07-14T00:00:00Z","occasion":"vacation","expectedWeather":"hot"}}`},
		{name: "end before start", body: `{"trip":{"destination":"Lisbon","startDate":"2025-07-10T00:00:00Z","endDate":"2025-07-01T00:00:00Z","occasion":"vacation","expectedWeather":"hot"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := performRequest(http.MethodPost, "/api/v1/packing-lists", tc.body, newRouterUnderTest(t, &stubPackingService{}))
			require.Equal(t, http.StatusBadRequest, recorder.Code)

			errBody := decodeErrorBody(t, recorder.Body.Bytes())
			require.Equal(t, "invalid_request", errBody["error"]["code"])
			require.NotEmpty(t, errBody["error"]["message"])
		})
	}
}

func TestRouter_Chat(t *testing.T) {
	svc := &stubPackingService{
		chatFn: func(ctx context.Context, req packing.ChatRequest) packing.ChatResponse {
			require.Equal(t, "What shoes for Oslo?", req.Prompt)
			return packing.ChatResponse{RequestID: "c1", Reply: "Winter boots."}
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/chat", `{"prompt":"What shoes for Oslo?"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got packing.ChatResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "Winter boots.", got.Reply)

	recorder = performRequest(http.MethodPost, "/api/v1/chat", `{"prompt":"   "}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_Weather(t *testing.T) {
	svc := &stubPackingService{
		weatherFn: func(ctx context.Context, q packing.WeatherQuery) weather.Summary {
			require.Equal(t, "Oslo", q.Destination)
			require.Equal(t, time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC), q.Start.UTC())
			require.Equal(t, weather.UnitsImperial, q.Units)
			return weather.Summary{Icon: "snow", Description: "light snow", Units: q.Units, Source: weather.SourceLive}
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/weather?destination=Oslo&start=2025-01-03&units=Imperial", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got weather.Summary
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "snow", got.Icon)

	recorder = performRequest(http.MethodGet, "/api/v1/weather?start=2025-01-03", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_ClientDisconnect(t *testing.T) {
	unblock := make(chan struct{})
	t.Cleanup(func() { close(unblock) })
	svc := &stubPackingService{
		localFn: func(ctx context.Context, req packing.Request) packing.Response {
			<-unblock
			return packing.Response{}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/packing-lists", bytes.NewBufferString(tripBody)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	newRouterUnderTest(t, svc).Handler.ServeHTTP(recorder, req)

	require.Equal(t, statusClientClosedRequest, recorder.Code)
	require.Equal(t, "client_closed_request", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := NewRouter(cfg, NewHandler(&stubPackingService{}, newTestLogger()))

	require.Equal(t, http.StatusOK, performRequest(http.MethodPost, "/api/v1/chat", `{"prompt":"hi"}`, server).Code)

	recorder := performRequest(http.MethodPost, "/api/v1/chat", `{"prompt":"hi"}`, server)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "rate_limit_exceeded", errBody["error"]["code"])
	require.Equal(t, recorder.Header().Get("X-Request-ID"), errBody["error"]["requestId"])
	require.Equal(t, "60", recorder.Header().Get("Retry-After"))

	require.Equal(t, http.StatusOK, performRequest(http.MethodGet, "/healthz", "", server).Code)
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc packing.Service) *http.Server {
	t.Helper()
	return NewRouter(testConfig(), NewHandler(svc, newTestLogger()))
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubPackingService struct {
	localFn   func(ctx context.Context, req packing.Request) packing.Response
	remoteFn  func(ctx context.Context, req packing.Request) packing.Response
	chatFn    func(ctx context.Context, req packing.ChatRequest) packing.ChatResponse
	weatherFn func(ctx context.Context, q packing.WeatherQuery) weather.Summary
}

func (s *stubPackingService) GeneratePackingList(ctx context.Context, req packing.Request) packing.Response {
	if s.localFn != nil {
		return s.localFn(ctx, req)
	}
	return packing.Response{}
}

func (s *stubPackingService) GeneratePackingListRemote(ctx context.Context, req packing.Request) packing.Response {
	if s.remoteFn != nil {
		return s.remoteFn(ctx, req)
	}
	return packing.Response{}
}

func (s *stubPackingService) GenerateChatResponse(ctx context.Context, req packing.ChatRequest) packing.ChatResponse {
	if s.chatFn != nil {
		return s.chatFn(ctx, req)
	}
	return packing.ChatResponse{}
}

func (s *stubPackingService) FetchWeatherSummary(ctx context.Context, q packing.WeatherQuery) weather.Summary {
	if s.weatherFn != nil {
		return s.weatherFn(ctx, q)
	}
	return weather.Summary{}
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
