package config

import "time"

// Config holds runtime settings for the GophMart client.
//
// Fields:
//   - ServerBaseURL: base URL of the storefront HTTP API.
//   - DatabaseDSN: path/DSN of the local sqlite database holding session state.
//   - ChatPollInterval: how often chat metadata is re-polled.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerBaseURL    string
	DatabaseDSN      string
	ChatPollInterval time.Duration
	RequestTimeout   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "gophmart.db"
	c.ChatPollInterval = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
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
