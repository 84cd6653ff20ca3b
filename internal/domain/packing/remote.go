package packing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/packwise/internal/domain/weather"
	apperrors "github.com/yanqian/packwise/pkg/errors"
	"github.com/yanqian/packwise/pkg/metrics"
)

// DefaultChatFallback is returned whenever the model has nothing usable to say.
const DefaultChatFallback = "I'm here to help you plan and pack for your trip! Could you tell me a bit more about where you're going and what you'll be doing?"

// GenerationParams are the sampling knobs forwarded to the model.
type GenerationParams struct {
	MaxNewTokens int
	Temperature  float32
	TopP         float32
}

// TextGenerator sends a prompt to a hosted language model and returns the
// generated continuation.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// TokenCounter estimates the number of model tokens in a text.
type TokenCounter interface {
	Count(text string) int
}

// RemoteConfig controls the remote generation tier.
type RemoteConfig struct {
	MaxNewTokens     int
	ChatMaxNewTokens int
	Temperature      float32
	TopP             float32
	Timeout          time.Duration
	ChatFallback     string
}

// RemoteGenerator builds prompts, calls the model and parses its reply.
type RemoteGenerator struct {
	cfg       RemoteConfig
	generator TextGenerator
	prompts   *PromptBuilder
	counter   TokenCounter
	logger    *slog.Logger
}

// NewRemoteGenerator wires the remote tier. counter may be nil.
func NewRemoteGenerator(cfg RemoteConfig, generator TextGenerator, prompts *PromptBuilder, counter TokenCounter, logger *slog.Logger) *RemoteGenerator {
	if cfg.MaxNewTokens <= 0 {
		cfg.MaxNewTokens = 800
	}
	if cfg.ChatMaxNewTokens <= 0 {
		cfg.ChatMaxNewTokens = 250
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if strings.TrimSpace(cfg.ChatFallback) == "" {
		cfg.ChatFallback = DefaultChatFallback
	}
	return &RemoteGenerator{
		cfg:       cfg,
		generator: generator,
		prompts:   prompts,
		counter:   counter,
		logger:    logger.With("component", "packing.remote"),
	}
}

// Generate asks the model for a packing list. It never returns an error; the
// Outcome carries the failure kind for the caller to act on.
func (r *RemoteGenerator) Generate(ctx context.Context, trip Trip, summary *weather.Summary) Outcome {
	prompt, err := r.prompts.Build(trip, summary)
	if err != nil {
		return failed(apperrors.Wrap(apperrors.CodeDecode, "prompt rendering failed", err))
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	text, err := r.generator.Generate(ctx, prompt, GenerationParams{
		MaxNewTokens: r.cfg.MaxNewTokens,
		Temperature:  r.cfg.Temperature,
		TopP:         r.cfg.TopP,
	})
	if err != nil {
		return failed(err)
	}
	r.logger.Debug("remote generation received", "chars", len(text))

	outcome := succeeded(ParseCategories(text))
	outcome.Usage = r.usage(prompt, text)
	return outcome
}

// Chat answers a free-form prompt with a smaller token budget.
func (r *RemoteGenerator) Chat(ctx context.Context, prompt string) string {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	text, err := r.generator.Generate(ctx, prompt, GenerationParams{
		MaxNewTokens: r.cfg.ChatMaxNewTokens,
		Temperature:  r.cfg.Temperature,
		TopP:         r.cfg.TopP,
	})
	if err != nil {
		r.logger.Warn("chat generation failed, using fallback reply", "kind", kindOf(err), "code", apperrors.CodeOf(err), "error", err)
		return r.cfg.ChatFallback
	}
	reply := stripEcho(text, prompt)
	if reply == "" {
		return r.cfg.ChatFallback
	}
	return reply
}

func (r *RemoteGenerator) usage(prompt, completion string) *metrics.TokenUsage {
	if r.counter == nil {
		return nil
	}
	promptTokens := r.counter.Count(prompt)
	completionTokens := r.counter.Count(completion)
	return &metrics.TokenUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}

func stripEcho(text, prompt string) string {
	trimmedPrompt := strings.TrimSpace(prompt)
	reply := strings.TrimSpace(text)
	if trimmedPrompt != "" && strings.HasPrefix(reply, trimmedPrompt) {
		reply = strings.TrimSpace(strings.TrimPrefix(reply, trimmedPrompt))
	}
	return reply
}
