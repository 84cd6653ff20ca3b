package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, "huggingface", cfg.LLM.Provider)
	require.Equal(t, 800, cfg.LLM.MaxNewTokens)
	require.Equal(t, 250, cfg.LLM.ChatMaxNewTokens)
	require.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	require.Equal(t, time.Hour, cfg.Weather.CacheTTL)
	require.Equal(t, 10*time.Second, cfg.Weather.Timeout)
	require.Equal(t, 768, cfg.Embedding.Dimensions)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: gemini
  model: gemini-2.0-flash
weather:
  cacheTtl: 30m
  valkey:
    enabled: true
    addr: localhost:6379
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LLM_MODEL", "gemini-1.5-pro")
	t.Setenv("WEATHER_VALKEY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "gemini", cfg.LLM.Provider)
	require.Equal(t, "gemini-1.5-pro", cfg.LLM.Model)
	require.Equal(t, 30*time.Minute, cfg.Weather.CacheTTL)
	require.False(t, cfg.Weather.Valkey.Enabled)
	require.Equal(t, "localhost:6379", cfg.Weather.Valkey.Addr)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "provider", mutate: func(c *Config) { c.LLM.Provider = "openai" }},
		{name: "topP", mutate: func(c *Config) { c.LLM.TopP = 1.5 }},
		{name: "geocoder", mutate: func(c *Config) { c.Weather.Geocoder = "nominatim" }},
		{name: "maps key", mutate: func(c *Config) { c.Weather.Geocoder = "googlemaps" }},
		{name: "valkey addr", mutate: func(c *Config) { c.Weather.Valkey.Enabled = true }},
		{name: "cache ttl", mutate: func(c *Config) { c.Weather.CacheTTL = 0 }},
		{name: "embedding length", mutate: func(c *Config) { c.Embedding.Enabled = true; c.Embedding.MaxLength = 1 }},
		{name: "assets bucket", mutate: func(c *Config) { c.Embedding.Assets.Enabled = true }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, defaultConfig().Validate())
}
