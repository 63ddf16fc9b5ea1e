package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/petnest/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for decoding config files. Durations accept
// either "168h" style strings or integer nanoseconds. Zero values mean
// "not set" and leave the current setting untouched.
type fileConfig struct {
	EndpointAddrHTTP        string          `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC        string          `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN             string          `json:"database_dsn" yaml:"database_dsn"`
	SecretKey               string          `json:"secret_key" yaml:"secret_key"`
	SessionValidityDuration timex.Duration  `json:"session_validity_duration" yaml:"session_validity_duration"`
	BcryptCost              int             `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	CookieSecure            *bool           `json:"cookie_secure" yaml:"cookie_secure"`
	TrustProxyHeaders       *bool           `json:"trust_proxy_headers" yaml:"trust_proxy_headers"`
	RedisURL                string          `json:"redis_url" yaml:"redis_url"`
	SessionCacheTTL         timex.Duration  `json:"session_cache_ttl" yaml:"session_cache_ttl"`
	SessionReapInterval     *timex.Duration `json:"session_reap_interval" yaml:"session_reap_interval"`
	LogLevel                string          `json:"log_level" yaml:"log_level"`
}

// parseFile overlays values from a JSON or YAML file onto config. The format
// is chosen by extension: .yaml and .yml are YAML, anything else is JSON.
// An empty path is a no-op.
func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &fileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return err
	}

	c.apply(config)
	return nil
}

func (c *fileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.SessionCacheTTL.Duration > 0 {
		config.SessionCacheTTL = c.SessionCacheTTL.Duration
	}
	// zero is meaningful here: it turns the reaper off
	if c.SessionReapInterval != nil {
		config.SessionReapInterval = c.SessionReapInterval.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.TrustProxyHeaders != nil {
		config.TrustProxyHeaders = *c.TrustProxyHeaders
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
