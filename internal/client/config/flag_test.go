package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("overrides api base url and dsn", func(t *testing.T) {
		os.Args = []string{"testbin", "-a", "https://amber.example/api", "-d", "/tmp/amber.db"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, "https://amber.example/api", cfg.APIBaseURL)
		assert.Equal(t, "/tmp/amber.db", cfg.DatabaseDSN)
	})

	t.Run("keeps defaults when flags absent", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
		assert.Equal(t, "amber.db", cfg.DatabaseDSN)
	})

	t.Run("unrelated flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-a", "http://other:9000/api"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, "http://other:9000/api", cfg.APIBaseURL)
	})
}
