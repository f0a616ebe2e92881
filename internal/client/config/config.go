package config

import "time"

// Config holds runtime settings for the Amber desktop client core.
//
// Fields:
//   - APIBaseURL: http(s) base of the backend REST API, including any
//     reverse-proxy path prefix (e.g. "http://localhost:8000/api").
//   - DatabaseDSN: sqlite DSN for durable client-side storage.
//   - HeartbeatInterval: keepalive period on the liveness channel.
//   - HeartbeatRetryDelay: fixed delay before the liveness channel redials.
//   - PresencePingInterval: keepalive period on the presence channel.
//   - PresenceInitialBackoff / PresenceMaxBackoff: reconnect backoff bounds
//     for the presence channel (doubles per attempt, capped).
//   - WSHandshakeTimeout: websocket dial/handshake deadline.
type Config struct {
	APIBaseURL  string
	DatabaseDSN string

	HeartbeatInterval   time.Duration
	HeartbeatRetryDelay time.Duration

	PresencePingInterval   time.Duration
	PresenceInitialBackoff time.Duration
	PresenceMaxBackoff     time.Duration

	WSHandshakeTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.DatabaseDSN = "amber.db"
	c.HeartbeatInterval = 30 * time.Second
	c.HeartbeatRetryDelay = 5 * time.Second
	c.PresencePingInterval = 25 * time.Second
	c.PresenceInitialBackoff = 500 * time.Millisecond
	c.PresenceMaxBackoff = 10 * time.Second
	c.WSHandshakeTimeout = 10 * time.Second
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
