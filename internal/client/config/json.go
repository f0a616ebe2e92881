package config

import (
	"encoding/json"
	"os"

	"github.com/amber-im/amber-client/internal/flagx"
	"github.com/amber-im/amber-client/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "25s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	APIBaseURL  string `json:"api_base_url"`
	DatabaseDSN string `json:"database_dsn"`

	HeartbeatInterval   timex.Duration `json:"heartbeat_interval"`
	HeartbeatRetryDelay timex.Duration `json:"heartbeat_retry_delay"`

	PresencePingInterval   timex.Duration `json:"presence_ping_interval"`
	PresenceInitialBackoff timex.Duration `json:"presence_initial_backoff"`
	PresenceMaxBackoff     timex.Duration `json:"presence_max_backoff"`

	WSHandshakeTimeout timex.Duration `json:"ws_handshake_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Only fields present in the JSON override the current Config values;
// zero values are treated as "not set". Panics on read or unmarshal errors
// (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.HeartbeatInterval.Duration != 0 {
		cfg.HeartbeatInterval = jc.HeartbeatInterval.Duration
	}
	if jc.HeartbeatRetryDelay.Duration != 0 {
		cfg.HeartbeatRetryDelay = jc.HeartbeatRetryDelay.Duration
	}
	if jc.PresencePingInterval.Duration != 0 {
		cfg.PresencePingInterval = jc.PresencePingInterval.Duration
	}
	if jc.PresenceInitialBackoff.Duration != 0 {
		cfg.PresenceInitialBackoff = jc.PresenceInitialBackoff.Duration
	}
	if jc.PresenceMaxBackoff.Duration != 0 {
		cfg.PresenceMaxBackoff = jc.PresenceMaxBackoff.Duration
	}
	if jc.WSHandshakeTimeout.Duration != 0 {
		cfg.WSHandshakeTimeout = jc.WSHandshakeTimeout.Duration
	}
}
