package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Weather   WeatherConfig   `yaml:"weather"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Recorder  RecorderConfig  `yaml:"recorder"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	AllowedOrigins  []string        `yaml:"allowedOrigins"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig selects and tunes the remote text generation provider.
type LLMConfig struct {
	Provider         string        `yaml:"provider"`
	APIKey           string        `yaml:"apiKey"`
	BaseURL          string        `yaml:"baseUrl"`
	Model            string        `yaml:"model"`
	MaxNewTokens     int           `yaml:"maxNewTokens"`
	ChatMaxNewTokens int           `yaml:"chatMaxNewTokens"`
	Temperature      float32       `yaml:"temperature"`
	TopP             float32       `yaml:"topP"`
	Timeout          time.Duration `yaml:"timeout"`
	PromptTemplate   string        `yaml:"promptTemplate"`
	TokenEncoding    string        `yaml:"tokenEncoding"`
	Breaker          BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the circuit breaker around remote generation.
type BreakerConfig struct {
	Enabled             bool          `yaml:"enabled"`
	ConsecutiveFailures uint32        `yaml:"consecutiveFailures"`
	OpenTimeout         time.Duration `yaml:"openTimeout"`
}

// WeatherConfig controls the geocode/forecast upstreams and the cache.
type WeatherConfig struct {
	APIKey           string        `yaml:"apiKey"`
	GeocodeURL       string        `yaml:"geocodeUrl"`
	ForecastURL      string        `yaml:"forecastUrl"`
	Geocoder         string        `yaml:"geocoder"`
	GoogleMapsAPIKey string        `yaml:"googleMapsApiKey"`
	Timeout          time.Duration `yaml:"timeout"`
	CacheTTL         time.Duration `yaml:"cacheTtl"`
	Valkey           ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared weather cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// EmbeddingConfig controls the on-device encoder.
type EmbeddingConfig struct {
	Enabled           bool         `yaml:"enabled"`
	ModelPath         string       `yaml:"modelPath"`
	VocabPath         string       `yaml:"vocabPath"`
	SharedLibraryPath string       `yaml:"sharedLibraryPath"`
	MaxLength         int          `yaml:"maxLength"`
	Dimensions        int          `yaml:"dimensions"`
	Assets            AssetsConfig `yaml:"assets"`
}

// AssetsConfig points at the bucket holding the encoder files.
type AssetsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	ModelKey  string `yaml:"modelKey"`
	VocabKey  string `yaml:"vocabKey"`
}

// RecorderConfig controls where trip embeddings are recorded.
type RecorderConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_MAX_NEW_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxNewTokens = parsed
		}
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_TOP_P"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.TopP = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := os.Getenv("LLM_PROMPT_TEMPLATE"); v != "" {
		cfg.LLM.PromptTemplate = v
	}
	if v := os.Getenv("LLM_BREAKER_ENABLED"); v != "" {
		cfg.LLM.Breaker.Enabled = parseBool(v)
	}
	if v := os.Getenv("WEATHER_API_KEY"); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv("WEATHER_GEOCODER"); v != "" {
		cfg.Weather.Geocoder = v
	}
	if v := os.Getenv("GOOGLE_MAPS_API_KEY"); v != "" {
		cfg.Weather.GoogleMapsAPIKey = v
	}
	if v := os.Getenv("WEATHER_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.CacheTTL = parsed
		}
	}
	if v := os.Getenv("WEATHER_VALKEY_ENABLED"); v != "" {
		cfg.Weather.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("WEATHER_VALKEY_ADDR"); v != "" {
		cfg.Weather.Valkey.Addr = v
	}
	if v := os.Getenv("EMBEDDING_ENABLED"); v != "" {
		cfg.Embedding.Enabled = parseBool(v)
	}
	if v := os.Getenv("EMBEDDING_MODEL_PATH"); v != "" {
		cfg.Embedding.ModelPath = v
	}
	if v := os.Getenv("EMBEDDING_VOCAB_PATH"); v != "" {
		cfg.Embedding.VocabPath = v
	}
	if v := os.Getenv("ONNXRUNTIME_LIB"); v != "" {
		cfg.Embedding.SharedLibraryPath = v
	}
	if v := os.Getenv("ASSETS_ENABLED"); v != "" {
		cfg.Embedding.Assets.Enabled = parseBool(v)
	}
	if v := os.Getenv("ASSETS_ENDPOINT"); v != "" {
		cfg.Embedding.Assets.Endpoint = v
	}
	if v := os.Getenv("ASSETS_ACCESS_KEY"); v != "" {
		cfg.Embedding.Assets.AccessKey = v
	}
	if v := os.Getenv("ASSETS_SECRET_KEY"); v != "" {
		cfg.Embedding.Assets.SecretKey = v
	}
	if v := os.Getenv("ASSETS_BUCKET"); v != "" {
		cfg.Embedding.Assets.Bucket = v
	}
	if v := os.Getenv("RECORDER_POSTGRES_DSN"); v != "" {
		cfg.Recorder.Postgres.DSN = v
	}
	if v := os.Getenv("RECORDER_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Recorder.Postgres.MaxConns = int32(parsed)
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    45 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			Provider:         "huggingface",
			Model:            "mistralai/Mistral-7B-Instruct-v0.2",
			MaxNewTokens:     800,
			ChatMaxNewTokens: 250,
			Temperature:      0.7,
			TopP:             0.9,
			Timeout:          30 * time.Second,
			TokenEncoding:    "cl100k_base",
			Breaker: BreakerConfig{
				Enabled:             true,
				ConsecutiveFailures: 5,
				OpenTimeout:         30 * time.Second,
			},
		},
		Weather: WeatherConfig{
			GeocodeURL:  "https://api.openweathermap.org/geo/1.0/direct",
			ForecastURL: "https://api.openweathermap.org/data/3.0/onecall",
			Geocoder:    "openweather",
			Timeout:     10 * time.Second,
			CacheTTL:    time.Hour,
			Valkey: ValkeyConfig{
				Prefix: "packwise:weather",
			},
		},
		Embedding: EmbeddingConfig{
			Enabled:    false,
			ModelPath:  "models/model.onnx",
			VocabPath:  "models/vocab.txt",
			MaxLength:  128,
			Dimensions: 768,
			Assets: AssetsConfig{
				Region:   "auto",
				ModelKey: "encoder/model.onnx",
				VocabKey: "encoder/vocab.txt",
			},
		},
		Recorder: RecorderConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	switch c.LLM.Provider {
	case "huggingface", "gemini", "none":
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.MaxNewTokens <= 0 || c.LLM.ChatMaxNewTokens <= 0 {
		return errors.New("llm token budgets must be positive")
	}
	if c.LLM.Temperature < 0 {
		return errors.New("llm.temperature cannot be negative")
	}
	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		return errors.New("llm.topP must be within [0, 1]")
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	switch c.Weather.Geocoder {
	case "openweather":
	case "googlemaps":
		if strings.TrimSpace(c.Weather.GoogleMapsAPIKey) == "" {
			return errors.New("weather.googleMapsApiKey cannot be empty when geocoder is googlemaps")
		}
	default:
		return fmt.Errorf("weather.geocoder %q is not supported", c.Weather.Geocoder)
	}
	if c.Weather.CacheTTL <= 0 {
		return errors.New("weather.cacheTtl must be positive")
	}
	if c.Weather.Timeout <= 0 {
		return errors.New("weather.timeout must be positive")
	}
	if c.Weather.Valkey.Enabled && strings.TrimSpace(c.Weather.Valkey.Addr) == "" {
		return errors.New("weather.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.Embedding.Enabled {
		if c.Embedding.MaxLength < 2 {
			return errors.New("embedding.maxLength must be at least 2")
		}
		if c.Embedding.Dimensions <= 0 {
			return errors.New("embedding.dimensions must be positive")
		}
	}
	if c.Embedding.Assets.Enabled && strings.TrimSpace(c.Embedding.Assets.Bucket) == "" {
		return errors.New("embedding.assets.bucket cannot be empty when asset download is enabled")
	}
	return nil
}
