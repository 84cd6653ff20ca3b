package breaker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/packwise/internal/domain/packing"
	apperrors "github.com/yanqian/packwise/pkg/errors"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	next := &countingGenerator{err: errors.New("503")}
	gen := New(next, Settings{ConsecutiveFailures: 2}, discardLogger())

	for i := 0; i < 2; i++ {
		_, err := gen.Generate(context.Background(), "p", packing.GenerationParams{})
		require.Error(t, err)
	}
	require.Equal(t, "open", gen.State())

	_, err := gen.Generate(context.Background(), "p", packing.GenerationParams{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeTransport))
	require.Equal(t, 2, next.calls, "open breaker must not reach upstream")
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	next := &countingGenerator{reply: "Essentials:\n- Passport"}
	gen := New(next, Settings{}, discardLogger())

	text, err := gen.Generate(context.Background(), "p", packing.GenerationParams{})
	require.NoError(t, err)
	require.Equal(t, "Essentials:\n- Passport", text)
	require.Equal(t, "closed", gen.State())
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	next := &countingGenerator{err: context.Canceled}
	gen := New(next, Settings{ConsecutiveFailures: 1}, discardLogger())

	for i := 0; i < 3; i++ {
		_, err := gen.Generate(context.Background(), "p", packing.GenerationParams{})
		require.ErrorIs(t, err, context.Canceled)
	}
	require.Equal(t, "closed", gen.State())
}

type countingGenerator struct {
	reply string
	err   error
	calls int
}

func (g *countingGenerator) Generate(ctx context.Context, prompt string, params packing.GenerationParams) (string, error) {
	g.calls++
	return g.reply, g.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
