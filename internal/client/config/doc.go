// Package config loads runtime configuration for the Amber client core.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-d string   sqlite DSN for client-side storage
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "25s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://amber.example/api",
//	  "database_dsn": "amber.db",
//	  "heartbeat_interval": "30s",
//	  "presence_ping_interval": "25s",
//	  "presence_initial_backoff": "500ms",
//	  "presence_max_backoff": "10s"
//	}
//
// Primary API
//
//   - type Config                     — runtime settings for session and presence
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
