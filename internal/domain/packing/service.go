package packing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/packwise/internal/domain/weather"
)

// Service exposes the packing list engine. None of its methods fail: every
// tier degrades to the next one and finally to the rule engine.
type Service interface {
	GeneratePackingList(ctx context.Context, req Request) Response
	GeneratePackingListRemote(ctx context.Context, req Request) Response
	GenerateChatResponse(ctx context.Context, req ChatRequest) ChatResponse
	FetchWeatherSummary(ctx context.Context, query WeatherQuery) weather.Summary
}

// Embedder turns text into a fixed-size vector. Failures yield a zero vector.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// EmbeddingHook receives the trip embedding computed on the local path.
type EmbeddingHook interface {
	Observe(ctx context.Context, trip Trip, vector []float32)
}

// NoopHook discards embeddings.
type NoopHook struct{}

func (NoopHook) Observe(context.Context, Trip, []float32) {}

// WeatherQuery selects a weather summary.
type WeatherQuery struct {
	Destination string        `form:"destination" binding:"required"`
	Start       time.Time     `form:"start" binding:"required" time_format:"2006-01-02" time_utc:"1"`
	End         time.Time     `form:"end" time_format:"2006-01-02" time_utc:"1"`
	Units       weather.Units `form:"units"`
}

type service struct {
	remote   *RemoteGenerator
	embedder Embedder
	hook     EmbeddingHook
	weather  weather.Provider
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the orchestrator. remote, embedder and hook may be nil.
func NewService(remote *RemoteGenerator, embedder Embedder, hook EmbeddingHook, provider weather.Provider, logger *slog.Logger) Service {
	if hook == nil {
		hook = NoopHook{}
	}
	return &service{
		remote:   remote,
		embedder: embedder,
		hook:     hook,
		weather:  provider,
		logger:   logger.With("component", "packing.service"),
		now:      time.Now,
	}
}

func (s *service) GeneratePackingList(ctx context.Context, req Request) Response {
	started := s.now()
	if s.embedder != nil && ctx.Err() == nil {
		vector := s.embedder.Embed(ctx, describeTrip(req.Trip))
		s.hook.Observe(ctx, req.Trip, vector)
	}
	resp := s.rulesResponse(req.Trip, FailureNone, started)
	s.logger.Info("packing list generated", "requestId", resp.RequestID, "source", resp.Source, "categories", len(resp.Categories))
	return resp
}

func (s *service) GeneratePackingListRemote(ctx context.Context, req Request) Response {
	started := s.now()
	if s.remote == nil {
		return s.fallback(req.Trip, FailureModelUnavailable, nil, started)
	}

	outcome := s.remote.Generate(ctx, req.Trip, req.Weather)
	if !outcome.OK() {
		kind := outcome.Failure
		if kind == FailureNone {
			kind = FailureEmptyResult
		}
		return s.fallback(req.Trip, kind, outcome.Err, started)
	}

	resp := Response{
		RequestID:  uuid.NewString(),
		Categories: outcome.Categories,
		Source:     SourceRemote,
		DurationMs: s.now().Sub(started).Milliseconds(),
		TokenUsage: outcome.Usage,
	}
	s.logger.Info("remote packing list generated", "requestId", resp.RequestID, "categories", len(resp.Categories), "durationMs", resp.DurationMs)
	return resp
}

func (s *service) GenerateChatResponse(ctx context.Context, req ChatRequest) ChatResponse {
	resp := ChatResponse{RequestID: uuid.NewString()}
	if s.remote == nil {
		resp.Reply = DefaultChatFallback
		return resp
	}
	resp.Reply = s.remote.Chat(ctx, req.Prompt)
	return resp
}

func (s *service) FetchWeatherSummary(ctx context.Context, query WeatherQuery) weather.Summary {
	end := query.End
	if end.IsZero() {
		end = query.Start
	}
	return s.weather.FetchSummary(ctx, query.Destination, query.Start, end, query.Units)
}

func (s *service) fallback(trip Trip, kind FailureKind, err error, started time.Time) Response {
	resp := s.rulesResponse(trip, kind, started)
	s.logger.Warn("remote generation failed, using rule engine", "requestId", resp.RequestID, "kind", kind, "error", err)
	return resp
}

func (s *service) rulesResponse(trip Trip, reason FailureKind, started time.Time) Response {
	return Response{
		RequestID:      uuid.NewString(),
		Categories:     CategorizeTrip(trip),
		Source:         SourceRules,
		FallbackReason: reason,
		DurationMs:     s.now().Sub(started).Milliseconds(),
	}
}

// describeTrip is the text fed to the encoder on the local path.
func describeTrip(trip Trip) string {
	return fmt.Sprintf("%s trip to %s for %d days, %s weather, activities: %s",
		humanize(string(trip.Occasion)),
		strings.TrimSpace(trip.Destination),
		trip.DurationDays(),
		strings.ToLower(trip.ExpectedWeather.Label()),
		strings.ToLower(activityList(trip.Activities)),
	)
}
