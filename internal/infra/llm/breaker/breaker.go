package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/yanqian/packwise/internal/domain/packing"
	apperrors "github.com/yanqian/packwise/pkg/errors"
)

// Settings tune when the breaker opens.
type Settings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	Interval            time.Duration
}

// Generator short-circuits remote generation after repeated failures.
// An open breaker surfaces as a transport error; nothing is retried.
type Generator struct {
	next    packing.TextGenerator
	breaker *gobreaker.CircuitBreaker[string]
}

// New wraps next with a circuit breaker.
func New(next packing.TextGenerator, settings Settings, logger *slog.Logger) *Generator {
	if settings.Name == "" {
		settings.Name = "remote-generation"
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}
	if settings.Interval <= 0 {
		settings.Interval = 60 * time.Second
	}
	log := logger.With("component", "llm.breaker")
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// cancellations say nothing about upstream health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Generator{next: next, breaker: cb}
}

// Generate implements packing.TextGenerator.
func (g *Generator) Generate(ctx context.Context, prompt string, params packing.GenerationParams) (string, error) {
	text, err := g.breaker.Execute(func() (string, error) {
		return g.next.Generate(ctx, prompt, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", apperrors.Wrap(apperrors.CodeTransport, "circuit breaker is open; remote generation unavailable", err)
	}
	return text, err
}

// State reports the breaker state for health output.
func (g *Generator) State() string {
	return g.breaker.State().String()
}
