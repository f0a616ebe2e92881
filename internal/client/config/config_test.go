package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8000/api", c.APIBaseURL)
	assert.Equal(t, "amber.db", c.DatabaseDSN)
	assert.Equal(t, 30*time.Second, c.HeartbeatInterval)
	assert.Equal(t, 5*time.Second, c.HeartbeatRetryDelay)
	assert.Equal(t, 25*time.Second, c.PresencePingInterval)
	assert.Equal(t, 500*time.Millisecond, c.PresenceInitialBackoff)
	assert.Equal(t, 10*time.Second, c.PresenceMaxBackoff)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
	assert.Equal(t, 25*time.Second, cfg.PresencePingInterval)
}
