package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/packwise/internal/domain/embedding"
	"github.com/yanqian/packwise/internal/domain/packing"
	"github.com/yanqian/packwise/internal/domain/weather"
	"github.com/yanqian/packwise/internal/infra/assets"
	"github.com/yanqian/packwise/internal/infra/config"
	"github.com/yanqian/packwise/internal/infra/embeddingrepo"
	"github.com/yanqian/packwise/internal/infra/googlemaps"
	"github.com/yanqian/packwise/internal/infra/llm/breaker"
	"github.com/yanqian/packwise/internal/infra/llm/gemini"
	"github.com/yanqian/packwise/internal/infra/llm/hfinference"
	"github.com/yanqian/packwise/internal/infra/llm/tokencount"
	"github.com/yanqian/packwise/internal/infra/onnx"
	"github.com/yanqian/packwise/internal/infra/openweather"
	"github.com/yanqian/packwise/internal/infra/weatherstore"
)

func noop() {}

func provideTextGenerator(cfg *config.Config, logger *slog.Logger) (packing.TextGenerator, func(), error) {
	llm := cfg.LLM
	if llm.Provider == "none" || strings.TrimSpace(llm.APIKey) == "" {
		logger.Info("remote generation disabled, rule engine only", "provider", llm.Provider)
		return nil, noop, nil
	}

	var (
		gen     packing.TextGenerator
		cleanup = noop
	)
	switch llm.Provider {
	case "gemini":
		client, err := gemini.NewClient(context.Background(), llm.APIKey, llm.Model)
		if err != nil {
			return nil, nil, err
		}
		gen = client
		cleanup = func() { _ = client.Close() }
	default:
		client, err := hfinference.NewClient(llm.APIKey, llm.BaseURL, llm.Model, llm.Timeout)
		if err != nil {
			return nil, nil, err
		}
		gen = client
	}

	if llm.Breaker.Enabled {
		gen = breaker.New(gen, breaker.Settings{
			Name:                "remote-generation-" + llm.Provider,
			ConsecutiveFailures: llm.Breaker.ConsecutiveFailures,
			OpenTimeout:         llm.Breaker.OpenTimeout,
		}, logger)
	}
	logger.Info("remote generation enabled", "provider", llm.Provider, "model", llm.Model, "breaker", llm.Breaker.Enabled)
	return gen, cleanup, nil
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) packing.TokenCounter {
	return tokencount.New(cfg.LLM.TokenEncoding, logger)
}

func providePromptBuilder(cfg *config.Config) (*packing.PromptBuilder, error) {
	return packing.NewPromptBuilder(cfg.LLM.PromptTemplate)
}

func provideRemoteGenerator(cfg *config.Config, gen packing.TextGenerator, prompts *packing.PromptBuilder, counter packing.TokenCounter, logger *slog.Logger) *packing.RemoteGenerator {
	if gen == nil {
		return nil
	}
	return packing.NewRemoteGenerator(packing.RemoteConfig{
		MaxNewTokens:     cfg.LLM.MaxNewTokens,
		ChatMaxNewTokens: cfg.LLM.ChatMaxNewTokens,
		Temperature:      cfg.LLM.Temperature,
		TopP:             cfg.LLM.TopP,
		Timeout:          cfg.LLM.Timeout,
	}, gen, prompts, counter, logger)
}

func provideOpenWeatherClient(cfg *config.Config) *openweather.Client {
	return openweather.NewClient(cfg.Weather.APIKey, cfg.Weather.GeocodeURL, cfg.Weather.ForecastURL, cfg.Weather.Timeout)
}

func provideGeocoder(cfg *config.Config, ow *openweather.Client) (weather.Geocoder, error) {
	if cfg.Weather.Geocoder == "googlemaps" {
		return googlemaps.NewGeocoder(cfg.Weather.GoogleMapsAPIKey)
	}
	return ow, nil
}

func provideWeatherStore(cfg *config.Config, logger *slog.Logger) (weather.Store, func()) {
	if cfg.Weather.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Weather.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return weatherstore.NewMemoryStore(), noop
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return weatherstore.NewMemoryStore(), noop
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("weather valkey store enabled", "addr", cfg.Weather.Valkey.Addr)
			return weatherstore.NewValkeyStore(client, cfg.Weather.Valkey.Prefix), client.Close
		}
	}
	return weatherstore.NewMemoryStore(), noop
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideWeatherProvider(cfg *config.Config, geocoder weather.Geocoder, forecaster *openweather.Client, store weather.Store, logger *slog.Logger) weather.Provider {
	return weather.NewService(weather.Config{
		CacheTTL:      cfg.Weather.CacheTTL,
		LookupTimeout: cfg.Weather.Timeout,
	}, geocoder, forecaster, store, logger)
}

// provideEmbedder always returns a client so the local strategy keeps
// computing embeddings. Without an encoder they are zero vectors.
func provideEmbedder(cfg *config.Config, logger *slog.Logger) (packing.Embedder, func()) {
	emb := cfg.Embedding
	clientCfg := embedding.Config{MaxLength: emb.MaxLength, Dimensions: emb.Dimensions}
	if !emb.Enabled {
		return embedding.NewClient(clientCfg, nil, nil, logger), noop
	}
	if emb.Assets.Enabled {
		fetchAssets(emb, logger)
	}

	tokenizer, err := embedding.LoadTokenizer(emb.VocabPath)
	if err != nil {
		logger.Warn("vocabulary unavailable, tokenizer degraded", "path", emb.VocabPath, "error", err)
	}
	client := embedding.NewClient(clientCfg, tokenizer, onnx.Loader{
		ModelPath:         emb.ModelPath,
		SharedLibraryPath: emb.SharedLibraryPath,
	}, logger)
	return client, func() { _ = client.Close() }
}

func fetchAssets(emb config.EmbeddingConfig, logger *slog.Logger) {
	a := emb.Assets
	fetcher, err := assets.NewFetcher(a.Endpoint, a.AccessKey, a.SecretKey, a.Bucket, a.Region, logger)
	if err != nil {
		logger.Error("asset storage unavailable", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	err = fetcher.Ensure(ctx,
		assets.Object{Key: a.ModelKey, Path: emb.ModelPath},
		assets.Object{Key: a.VocabKey, Path: emb.VocabPath},
	)
	if err != nil {
		logger.Error("encoder asset download failed", "error", err)
	}
}

func provideEmbeddingHook(cfg *config.Config, logger *slog.Logger) (packing.EmbeddingHook, func()) {
	pg := cfg.Recorder.Postgres
	dsn := strings.TrimSpace(pg.DSN)
	if dsn == "" {
		logger.Info("recorder postgres dsn not set, embeddings are not recorded")
		return packing.NoopHook{}, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, embeddings are not recorded", "error", err)
		return packing.NoopHook{}, noop
	}
	if pg.MaxConns > 0 {
		poolConfig.MaxConns = pg.MaxConns
	}
	if pg.MinConns > 0 {
		poolConfig.MinConns = pg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, embeddings are not recorded", "error", err)
		return packing.NoopHook{}, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, embeddings are not recorded", "error", err)
		pool.Close()
		return packing.NoopHook{}, noop
	}
	recorder := embeddingrepo.NewPostgresRecorder(pool, logger)
	if err := recorder.Migrate(ctx); err != nil {
		logger.Error("trip embedding migration failed, embeddings are not recorded", "error", err)
		pool.Close()
		return packing.NoopHook{}, noop
	}
	logger.Info("trip embedding recorder enabled")
	return recorder, pool.Close
}
