package config

import (
	"fmt"
	"os"
	"time"

	"github.com/worldacross/membership/internal/buildinfo"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DemoTokenSecret signs credentials when no secret is configured. The
// checksum it feeds is not a MAC, so this is not a security boundary.
const DemoTokenSecret = "world-across-demo-secret"

// Config holds runtime settings for the membership client.
type Config struct {
	SkipAuthCheck            bool          `env:"SKIP_AUTH_CHECK"`
	StorageBackend           string        `env:"STORAGE"`
	DatabaseDSN              string        `env:"DATABASE_DSN"`
	RedisAddr                string        `env:"REDIS_ADDR"`
	Origin                   string        `env:"ORIGIN"`
	TokenSecret              string        `env:"TOKEN_SECRET"`
	TokenTTL                 string        `env:"TOKEN_TTL"`
	ExpiryCheckInterval      time.Duration `env:"EXPIRY_CHECK_INTERVAL"`
	APILatency               time.Duration `env:"API_LATENCY"`
	RegisterIssuesCredential bool          `env:"REGISTER_ISSUES_CREDENTIAL"`
	LogLevel                 string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.SkipAuthCheck = buildinfo.DevMode()
	c.StorageBackend = BackendSQLite
	c.DatabaseDSN = "session.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.Origin = "worldacross.local"
	c.TokenSecret = DemoTokenSecret
	c.TokenTTL = "24h"
	c.ExpiryCheckInterval = 5 * time.Minute
	c.APILatency = 800 * time.Millisecond
	c.RegisterIssuesCredential = true
	c.LogLevel = "info"
}

// Validate rejects settings the client cannot start with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("database dsn is required for the %s backend", BackendSQLite)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the %s backend", BackendRedis)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.ExpiryCheckInterval < 0 {
		return fmt.Errorf("expiry check interval must not be negative")
	}
	if c.APILatency < 0 {
		return fmt.Errorf("api latency must not be negative")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON, the environment and command-line flags. Later sources take
// precedence over earlier ones. It panics on unreadable or invalid input.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
