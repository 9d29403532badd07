package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.False(t, c.SkipAuthCheck)
	assert.Equal(t, BackendSQLite, c.StorageBackend)
	assert.Equal(t, "session.db", c.DatabaseDSN)
	assert.Equal(t, "127.0.0.1:6379", c.RedisAddr)
	assert.Equal(t, "worldacross.local", c.Origin)
	assert.Equal(t, DemoTokenSecret, c.TokenSecret)
	assert.Equal(t, "24h", c.TokenTTL)
	assert.Equal(t, 5*time.Minute, c.ExpiryCheckInterval)
	assert.Equal(t, 800*time.Millisecond, c.APILatency)
	assert.True(t, c.RegisterIssuesCredential)
	assert.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"storage_backend":            "redis",
		"redis_addr":                 "cache:6380",
		"token_ttl":                  "7d",
		"expiry_check_interval":      "30s",
		"api_latency":                0,
		"register_issues_credential": false,
	})

	t.Run("partial file overrides only what it names", func(t *testing.T) {
		cfg := defaults()
		parseJson(&cfg, []string{"-config", path})

		want := defaults()
		want.StorageBackend = "redis"
		want.RedisAddr = "cache:6380"
		want.TokenTTL = "7d"
		want.ExpiryCheckInterval = 30 * time.Second
		want.APILatency = 0
		want.RegisterIssuesCredential = false
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("no config flag leaves cfg alone", func(t *testing.T) {
		cfg := defaults()
		parseJson(&cfg, []string{"-s"})
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := defaults()
		require.Panics(t, func() { parseJson(&cfg, []string{"-c", bad}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		cfg := defaults()
		require.Panics(t, func() { parseJson(&cfg, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}) })
	})
}

func TestParseEnv(t *testing.T) {
	t.Setenv("WORLD_ACROSS_STORAGE", "memory")
	t.Setenv("WORLD_ACROSS_TOKEN_TTL", "12h")
	t.Setenv("WORLD_ACROSS_EXPIRY_CHECK_INTERVAL", "1m")
	t.Setenv("WORLD_ACROSS_SKIP_AUTH_CHECK", "true")

	cfg := defaults()
	parseEnv(&cfg)

	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, "12h", cfg.TokenTTL)
	assert.Equal(t, time.Minute, cfg.ExpiryCheckInterval)
	assert.True(t, cfg.SkipAuthCheck)
	assert.Equal(t, "session.db", cfg.DatabaseDSN, "unset variables keep earlier values")
}

func TestParseEnv_Malformed(t *testing.T) {
	t.Setenv("WORLD_ACROSS_API_LATENCY", "soon")

	cfg := defaults()
	require.Panics(t, func() { parseEnv(&cfg) })
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectPanic bool
		mutate      func(*Config)
	}{
		{
			name: "all flags",
			args: []string{"-s", "-b", "redis", "-r", "10.0.0.1:6379", "-d", "x.db", "-i", "10", "-l", "debug"},
			mutate: func(c *Config) {
				c.SkipAuthCheck = true
				c.StorageBackend = "redis"
				c.RedisAddr = "10.0.0.1:6379"
				c.DatabaseDSN = "x.db"
				c.ExpiryCheckInterval = 10 * time.Second
				c.LogLevel = "debug"
			},
		},
		{
			name:   "unknown flags are ignored",
			args:   []string{"-c", "cfg.json", "-x", "1", "-b", "memory"},
			mutate: func(c *Config) { c.StorageBackend = "memory" },
		},
		{
			name:   "interval untouched without -i",
			args:   nil,
			mutate: func(*Config) {},
		},
		{name: "bad interval", args: []string{"-i", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.ExpiryCheckInterval = 1500 * time.Millisecond

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(&cfg, tt.args) })
				return
			}

			require.NotPanics(t, func() { parseFlags(&cfg, tt.args) })
			want := defaults()
			want.ExpiryCheckInterval = 1500 * time.Millisecond
			tt.mutate(&want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"storage_backend": "redis",
		"log_level":       "warn",
		"origin":          "json.example",
	})
	t.Setenv("WORLD_ACROSS_LOG_LEVEL", "error")
	t.Setenv("WORLD_ACROSS_STORAGE", "sqlite")

	cfg := load([]string{"-c", path, "-b", "memory"})

	assert.Equal(t, "json.example", cfg.Origin, "json over defaults")
	assert.Equal(t, "error", cfg.LogLevel, "env over json")
	assert.Equal(t, BackendMemory, cfg.StorageBackend, "flags over env")
}

func TestLoad_InvalidPanics(t *testing.T) {
	require.Panics(t, func() { load([]string{"-b", "floppy"}) })
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory", func(c *Config) { c.StorageBackend = BackendMemory; c.DatabaseDSN = "" }, false},
		{"sqlite without dsn", func(c *Config) { c.DatabaseDSN = "" }, true},
		{"redis without addr", func(c *Config) { c.StorageBackend = BackendRedis; c.RedisAddr = "" }, true},
		{"unknown backend", func(c *Config) { c.StorageBackend = "etcd" }, true},
		{"negative interval", func(c *Config) { c.ExpiryCheckInterval = -time.Second }, true},
		{"negative latency", func(c *Config) { c.APILatency = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(&c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}
