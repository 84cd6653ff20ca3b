package packing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/packwise/internal/domain/embedding"
	"github.com/yanqian/packwise/internal/domain/weather"
	apperrors "github.com/yanqian/packwise/pkg/errors"
)

func TestGeneratePackingListEmbedsAndUsesRules(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}
	hook := &recordingHook{}
	svc := NewService(nil, embedder, hook, &stubWeather{}, discardLogger())

	resp := svc.GeneratePackingList(context.Background(), Request{Trip: sampleTrip()})

	require.Equal(t, SourceRules, resp.Source)
	require.Equal(t, FailureNone, resp.FallbackReason)
	require.NotEmpty(t, resp.RequestID)
	require.Equal(t, CategorizeTrip(sampleTrip()), resp.Categories)
	require.Contains(t, embedder.text, "Vacation trip to Lisbon for 4 days")
	require.Equal(t, []float32{0.1, 0.2}, hook.vector)
	require.Equal(t, sampleTrip(), hook.trip)
}

func TestGeneratePackingListWithoutEncoderObservesZeroVector(t *testing.T) {
	hook := &recordingHook{}
	noModel := embedding.NewClient(embedding.Config{Dimensions: 768}, nil, nil, discardLogger())
	svc := NewService(nil, noModel, hook, &stubWeather{}, discardLogger())

	resp := svc.GeneratePackingList(context.Background(), Request{Trip: sampleTrip()})

	require.Equal(t, SourceRules, resp.Source)
	require.Equal(t, CategorizeTrip(sampleTrip()), resp.Categories)
	require.Equal(t, make([]float32, 768), hook.vector)
}

func TestGeneratePackingListRemoteSuccess(t *testing.T) {
	gen := &stubGenerator{reply: "Essentials:\n- Passport\n"}
	svc := NewService(newRemoteUnderTest(t, gen), nil, nil, &stubWeather{}, discardLogger())

	resp := svc.GeneratePackingListRemote(context.Background(), Request{Trip: sampleTrip()})

	require.Equal(t, SourceRemote, resp.Source)
	require.Equal(t, FailureNone, resp.FallbackReason)
	require.Equal(t, "Essentials", resp.Categories[0].Name)
	require.NotNil(t, resp.TokenUsage)
}

func TestGeneratePackingListRemoteFallsBackToRules(t *testing.T) {
	cases := []struct {
		name   string
		remote func(t *testing.T) *RemoteGenerator
		want   FailureKind
	}{
		{name: "no remote configured", remote: func(*testing.T) *RemoteGenerator { return nil }, want: FailureModelUnavailable},
		{name: "server error", remote: func(t *testing.T) *RemoteGenerator {
			return newRemoteUnderTest(t, &stubGenerator{err: apperrors.Wrap(apperrors.CodeLLMServerError, "500", nil)})
		}, want: FailureTransport},
		{name: "empty reply", remote: func(t *testing.T) *RemoteGenerator {
			return newRemoteUnderTest(t, &stubGenerator{reply: ""})
		}, want: FailureEmptyResult},
		{name: "headers without items", remote: func(t *testing.T) *RemoteGenerator {
			return newRemoteUnderTest(t, &stubGenerator{reply: "Essentials:\nClothing:\n"})
		}, want: FailureEmptyResult},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(tc.remote(t), nil, nil, &stubWeather{}, discardLogger())

			resp := svc.GeneratePackingListRemote(context.Background(), Request{Trip: sampleTrip()})

			require.Equal(t, SourceRules, resp.Source)
			require.Equal(t, tc.want, resp.FallbackReason)
			require.Equal(t, CategorizeTrip(sampleTrip()), resp.Categories)
		})
	}
}

func TestGeneratePackingListRemoteCancelled(t *testing.T) {
	svc := NewService(newRemoteUnderTest(t, ctxGenerator{}), nil, nil, &stubWeather{}, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := <-GeneratePackingListRemoteAsync(ctx, svc, Request{Trip: sampleTrip()})

	require.Equal(t, SourceRules, resp.Source)
	require.Equal(t, FailureCancelled, resp.FallbackReason)
	require.NotEmpty(t, resp.Categories)
}

func TestGenerateChatResponse(t *testing.T) {
	svc := NewService(nil, nil, nil, &stubWeather{}, discardLogger())
	require.Equal(t, DefaultChatFallback, svc.GenerateChatResponse(context.Background(), ChatRequest{Prompt: "hi"}).Reply)

	svc = NewService(newRemoteUnderTest(t, &stubGenerator{reply: "Bring layers."}), nil, nil, &stubWeather{}, discardLogger())
	resp := <-GenerateChatResponseAsync(context.Background(), svc, ChatRequest{Prompt: "hi"})
	require.Equal(t, "Bring layers.", resp.Reply)
	require.NotEmpty(t, resp.RequestID)
}

func TestFetchWeatherSummaryDefaultsEndToStart(t *testing.T) {
	provider := &stubWeather{summary: weather.Summary{Icon: "snow", Source: weather.SourceLive}}
	svc := NewService(nil, nil, nil, provider, discardLogger())
	start := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)

	summary := <-FetchWeatherSummaryAsync(context.Background(), svc, WeatherQuery{Destination: "Oslo", Start: start, Units: weather.UnitsImperial})

	require.Equal(t, "snow", summary.Icon)
	require.Equal(t, "Oslo", provider.destination)
	require.Equal(t, start, provider.end)
	require.Equal(t, weather.UnitsImperial, provider.units)
}

func TestAsyncEntryPointsDoNotBlock(t *testing.T) {
	svc := NewService(nil, nil, nil, &stubWeather{}, discardLogger())
	ch := GeneratePackingListAsync(context.Background(), svc, Request{Trip: sampleTrip()})

	select {
	case resp := <-ch:
		require.Equal(t, SourceRules, resp.Source)
	case <-time.After(time.Second):
		t.Fatal("async generation did not complete")
	}
}

type stubEmbedder struct {
	vector []float32
	text   string
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) []float32 {
	s.text = text
	return s.vector
}

type recordingHook struct {
	trip   Trip
	vector []float32
}

func (h *recordingHook) Observe(ctx context.Context, trip Trip, vector []float32) {
	h.trip = trip
	h.vector = vector
}

type stubWeather struct {
	summary     weather.Summary
	destination string
	end         time.Time
	units       weather.Units
}

func (s *stubWeather) FetchSummary(ctx context.Context, destination string, start, end time.Time, units weather.Units) weather.Summary {
	s.destination = destination
	s.end = end
	s.units = units
	return s.summary
}

// ctxGenerator blocks until the request context ends.
type ctxGenerator struct{}

func (ctxGenerator) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	<-ctx.Done()
	return "", apperrors.Wrap(apperrors.CodeTransport, "request aborted", ctx.Err())
}
