package config

import (
	"flag"
	"io"
	"time"

	"github.com/worldacross/membership/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Note: args are filtered with flagx.Filter first so flags owned by other
// components do not make parsing fail.
func parseFlags(cfg *Config, args []string) {
	args = flagx.Filter(args, []string{"-b", "-d", "-r", "-i", "-l"}, []string{"-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&cfg.SkipAuthCheck, "s", cfg.SkipAuthCheck, "skip the startup auth check")
	fs.StringVar(&cfg.StorageBackend, "b", cfg.StorageBackend, "credential storage backend (sqlite, redis, memory)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "SQLite database file")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	expiryCheckInterval := fs.Int("i", int(cfg.ExpiryCheckInterval.Seconds()), "session expiry check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.ExpiryCheckInterval = time.Duration(*expiryCheckInterval) * time.Second
		}
	})
}
