package config

import (
	"encoding/json"
	"os"

	"github.com/worldacross/membership/internal/flagx"
	"github.com/worldacross/membership/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from a zero value so a partial file only
// overrides what it names.
type JsonConfig struct {
	SkipAuthCheck            *bool           `json:"skip_auth_check"`
	StorageBackend           *string         `json:"storage_backend"`
	DatabaseDSN              *string         `json:"database_dsn"`
	RedisAddr                *string         `json:"redis_addr"`
	Origin                   *string         `json:"origin"`
	TokenSecret              *string         `json:"token_secret"`
	TokenTTL                 *string         `json:"token_ttl"`
	ExpiryCheckInterval      *timex.Duration `json:"expiry_check_interval"`
	APILatency               *timex.Duration `json:"api_latency"`
	RegisterIssuesCredential *bool           `json:"register_issues_credential"`
	LogLevel                 *string         `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c/-config in args.
// Without such a flag nothing changes. Read or unmarshal errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setIf(&cfg.SkipAuthCheck, jc.SkipAuthCheck)
	setIf(&cfg.StorageBackend, jc.StorageBackend)
	setIf(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setIf(&cfg.RedisAddr, jc.RedisAddr)
	setIf(&cfg.Origin, jc.Origin)
	setIf(&cfg.TokenSecret, jc.TokenSecret)
	setIf(&cfg.TokenTTL, jc.TokenTTL)
	setIf(&cfg.RegisterIssuesCredential, jc.RegisterIssuesCredential)
	setIf(&cfg.LogLevel, jc.LogLevel)
	if jc.ExpiryCheckInterval != nil {
		cfg.ExpiryCheckInterval = jc.ExpiryCheckInterval.Duration
	}
	if jc.APILatency != nil {
		cfg.APILatency = jc.APILatency.Duration
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
