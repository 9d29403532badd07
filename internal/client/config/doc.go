// Package config loads runtime configuration for the membership client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed with WORLD_ACROSS_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-s          skip the startup auth check
//	-b string   credential storage backend: sqlite, redis or memory
//	-d string   SQLite database file
//	-r string   Redis address
//	-i int      session expiry check interval (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "5m" or integer
// nanoseconds:
//
//	{
//	  "storage_backend": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "token_ttl": "7d",
//	  "expiry_check_interval": "5m",
//	  "api_latency": "800ms"
//	}
package config
