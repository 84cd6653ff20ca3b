package embeddingrepo

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/packwise/internal/domain/packing"
)

func TestPostgresRecorderSkipsZeroVectors(t *testing.T) {
	// A nil pool panics on use, so reaching the end proves nothing was written.
	rec := NewPostgresRecorder(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	trip := packing.Trip{Destination: "Oslo", Occasion: packing.OccasionBusiness}

	require.NotPanics(t, func() {
		rec.Observe(context.Background(), trip, make([]float32, 768))
		rec.Observe(context.Background(), trip, nil)
	})
}

func TestIsZero(t *testing.T) {
	require.True(t, isZero(nil))
	require.True(t, isZero([]float32{0, 0, 0}))
	require.False(t, isZero([]float32{0, 0.01, 0}))
}

func TestSchemaDeclaresVectorColumn(t *testing.T) {
	require.Contains(t, Schema, "CREATE EXTENSION IF NOT EXISTS vector")
	require.Contains(t, Schema, "embedding     vector NOT NULL")
}
