package config

import "github.com/caarlos0/env/v11"

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "WORLD_ACROSS_"

// parseEnv overlays cfg with WORLD_ACROSS_* variables. Unset variables leave
// fields untouched; malformed values panic.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
