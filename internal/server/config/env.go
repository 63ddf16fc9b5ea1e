package config

import (
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables that may set
// them. The first name wins when several are present.
var envBindings = map[string][]string{
	"endpoint_addr_http":        {"PETNEST_ENDPOINT_ADDR_HTTP"},
	"endpoint_addr_grpc":        {"PETNEST_ENDPOINT_ADDR_GRPC"},
	"database_dsn":              {"PETNEST_DATABASE_DSN", "DATABASE_URL"},
	"secret_key":                {"PETNEST_SECRET_KEY", "JWT_SECRET_KEY"},
	"session_validity_duration": {"PETNEST_SESSION_VALIDITY_DURATION"},
	"bcrypt_cost":               {"PETNEST_BCRYPT_COST"},
	"cookie_secure":             {"PETNEST_COOKIE_SECURE"},
	"trust_proxy_headers":       {"PETNEST_TRUST_PROXY_HEADERS"},
	"redis_url":                 {"PETNEST_REDIS_URL"},
	"session_cache_ttl":         {"PETNEST_SESSION_CACHE_TTL"},
	"session_reap_interval":     {"PETNEST_SESSION_REAP_INTERVAL"},
	"log_level":                 {"PETNEST_LOG_LEVEL"},
}

// parseEnv overlays values from the environment onto config.
// Only variables that are actually set are applied.
func parseEnv(config *Config) {
	v := viper.New()
	for key, names := range envBindings {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	if v.IsSet("endpoint_addr_http") {
		config.EndpointAddrHTTP = v.GetString("endpoint_addr_http")
	}
	if v.IsSet("endpoint_addr_grpc") {
		config.EndpointAddrGRPC = v.GetString("endpoint_addr_grpc")
	}
	if v.IsSet("database_dsn") {
		config.DatabaseDSN = v.GetString("database_dsn")
	}
	if v.IsSet("secret_key") {
		config.SecretKey = v.GetString("secret_key")
	}
	if v.IsSet("session_validity_duration") {
		if d := v.GetDuration("session_validity_duration"); d > 0 {
			config.SessionValidityDuration = d
		}
	}
	if v.IsSet("bcrypt_cost") {
		if n := v.GetInt("bcrypt_cost"); n > 0 {
			config.BcryptCost = n
		}
	}
	if v.IsSet("cookie_secure") {
		config.CookieSecure = v.GetBool("cookie_secure")
	}
	if v.IsSet("trust_proxy_headers") {
		config.TrustProxyHeaders = v.GetBool("trust_proxy_headers")
	}
	if v.IsSet("redis_url") {
		config.RedisURL = v.GetString("redis_url")
	}
	if v.IsSet("session_cache_ttl") {
		if d := v.GetDuration("session_cache_ttl"); d > 0 {
			config.SessionCacheTTL = d
		}
	}
	if v.IsSet("session_reap_interval") {
		config.SessionReapInterval = v.GetDuration("session_reap_interval")
	}
	if v.IsSet("log_level") {
		config.LogLevel = v.GetString("log_level")
	}
}
