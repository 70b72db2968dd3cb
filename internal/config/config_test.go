package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// No config file is found in an empty HOME and working directory.
	t.Setenv("HOME", t.TempDir())

	t.Run("loads default values without file or env", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.API.Timeout)
		assert.Equal(t, "Quickcrate-Dashboard/1.0", cfg.API.UserAgent)
		assert.Equal(t, AuthNone, cfg.Auth.Type)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, "stderr", cfg.Log.Output)
		assert.Equal(t, 0, cfg.Loader.MaxConcurrency)
		assert.Equal(t, 9090, cfg.Metrics.Port)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.Equal(t, "dashboard", cfg.Metrics.Namespace)
		assert.Equal(t, time.Minute, cfg.Watch.Interval)
	})

	t.Run("loads values from environment variables with DASHBOARD prefix", func(t *testing.T) {
		t.Setenv("DASHBOARD_API_BASE_URL", "https://merchant.example.com/api")
		t.Setenv("DASHBOARD_API_TIMEOUT", "5s")
		t.Setenv("DASHBOARD_AUTH_TOKEN", "secret")
		t.Setenv("DASHBOARD_LOADER_MAX_CONCURRENCY", "4")
		t.Setenv("DASHBOARD_LOG_LEVEL", "debug")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "https://merchant.example.com/api", cfg.API.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.API.Timeout)
		assert.Equal(t, AuthBearer, cfg.Auth.Type)
		assert.Equal(t, "secret", cfg.Auth.Token)
		assert.Equal(t, 4, cfg.Loader.MaxConcurrency)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("reads an explicit file and lets env win", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dashboard.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://file.example.com/api
  rate_limit_qps: 10
loader:
  page_size: 50
`), 0o600))
		t.Setenv("DASHBOARD_LOADER_PAGE_SIZE", "25")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "https://file.example.com/api", cfg.API.BaseURL)
		assert.Equal(t, 10.0, cfg.API.RateLimitQPS)
		assert.Equal(t, 1, cfg.API.RateLimitBurst)
		assert.Equal(t, 25, cfg.Loader.PageSize)
	})

	t.Run("returns ErrConfigNotFound for a missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, ErrConfigNotFound)

		_, err = Load(filepath.Join(t.TempDir(), "no", "such", "dir", "dashboard.toml"))
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("malformed explicit file is not reported as missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dashboard.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0o600))

		_, err := Load(path)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrConfigNotFound)
	})
}

func TestLoadFromBytes(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("toml", func(t *testing.T) {
		cfg, err := LoadFromBytes([]byte(`
[api]
base_url = "http://127.0.0.1:5000/api"
timeout = "10s"

[auth]
type = "login"

[auth.login]
username = "merchant@example.com"
password = "pw"

[watch]
interval = "30s"
`), "toml")
		require.NoError(t, err)

		assert.Equal(t, "http://127.0.0.1:5000/api", cfg.API.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.API.Timeout)
		assert.Equal(t, AuthLogin, cfg.Auth.Type)
		assert.Equal(t, "/Auth/login", cfg.Auth.Login.Endpoint)
		assert.Equal(t, "merchant@example.com", cfg.Auth.Login.Username)
		assert.Equal(t, 30*time.Second, cfg.Watch.Interval)
	})

	t.Run("yaml headers", func(t *testing.T) {
		cfg, err := LoadFromBytes([]byte(`
api:
  headers:
    x-merchant: m-1
`), "yaml")
		require.NoError(t, err)
		assert.Equal(t, "m-1", cfg.API.Headers["x-merchant"])
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := LoadFromBytes([]byte("api: [unclosed"), "yaml")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid base url", func(c *Config) { c.API.BaseURL = "not a url" }},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }},
		{"unknown auth type", func(c *Config) { c.Auth.Type = "basic" }},
		{"bearer without token", func(c *Config) { c.Auth.Type = AuthBearer }},
		{"login without username", func(c *Config) { c.Auth.Type = AuthLogin }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"negative concurrency", func(c *Config) { c.Loader.MaxConcurrency = -1 }},
		{"metrics port out of range", func(c *Config) { c.Metrics.Port = 70000 }},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		API:  APIConfig{BaseURL: "https://x.example.com", RateLimitQPS: 2, RateLimitBurst: 5},
		Auth: AuthConfig{Token: "tok"},
		Log:  LogConfig{Level: "warn"},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "https://x.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.RateLimitBurst)
	assert.Equal(t, AuthBearer, cfg.Auth.Type)
	assert.Equal(t, "warn", cfg.Log.Level)
}
