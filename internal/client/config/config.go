// Package config handles configuration for the PixKeep CLI client.
package config

import "time"

// Config holds runtime settings for the PixKeep CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend HTTP API.
//   - IdleTimeout: how long the session survives without user activity.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerBaseURL  string
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.IdleTimeout = 10 * time.Minute
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
