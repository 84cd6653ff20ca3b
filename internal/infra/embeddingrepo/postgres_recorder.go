package embeddingrepo

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yanqian/packwise/internal/domain/packing"
)

// Schema creates the table the recorder writes to.
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS trip_embeddings (
	id            BIGSERIAL PRIMARY KEY,
	destination   TEXT NOT NULL,
	occasion      TEXT NOT NULL,
	weather       TEXT NOT NULL,
	duration_days INT NOT NULL,
	embedding     vector NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRecorder stores trip embeddings in pgvector.
type PostgresRecorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresRecorder constructs the recorder.
func NewPostgresRecorder(pool *pgxpool.Pool, logger *slog.Logger) *PostgresRecorder {
	return &PostgresRecorder{pool: pool, logger: logger.With("component", "embeddingrepo.postgres")}
}

// Migrate applies Schema.
func (r *PostgresRecorder) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

// Observe implements packing.EmbeddingHook. Failures are logged, never returned.
func (r *PostgresRecorder) Observe(ctx context.Context, trip packing.Trip, vector []float32) {
	if isZero(vector) {
		return
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trip_embeddings (destination, occasion, weather, duration_days, embedding)
		VALUES ($1, $2, $3, $4, $5)
	`, trip.Destination, string(trip.Occasion), string(trip.ExpectedWeather), trip.DurationDays(), pgvector.NewVector(vector))
	if err != nil {
		r.logger.Warn("record trip embedding failed", "error", err)
	}
}

// isZero reports a failed embedding; those carry no signal.
func isZero(vector []float32) bool {
	for _, v := range vector {
		if v != 0 {
			return false
		}
	}
	return true
}

var _ packing.EmbeddingHook = (*PostgresRecorder)(nil)
