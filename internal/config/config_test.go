package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Outreach.MaxSelection)
	assert.Equal(t, 2*time.Second, cfg.Outreach.Delay)
	assert.False(t, cfg.Outreach.Randomized())
	assert.Equal(t, StrategyDeepLink, cfg.Outreach.Strategy)
	assert.Equal(t, "", cfg.Outreach.CountryCode)
	assert.Equal(t, "outreach_events", cfg.RabbitMQ.Queue)
	assert.Equal(t, "hello_world", cfg.WhatsApp.TemplateName)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OUTREACH_MAX_SELECTION", "5")
	t.Setenv("OUTREACH_MIN_DELAY", "8s")
	t.Setenv("OUTREACH_MAX_DELAY", "15s")
	t.Setenv("OUTREACH_STRATEGY", "API")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Outreach.MaxSelection)
	assert.True(t, cfg.Outreach.Randomized())
	assert.Equal(t, 8*time.Second, cfg.Outreach.MinDelay)
	assert.Equal(t, 15*time.Second, cfg.Outreach.MaxDelay)
	assert.Equal(t, StrategyAPI, cfg.Outreach.Strategy)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "DB_DRIVER"},
		{"zero cap", func(c *Config) { c.Outreach.MaxSelection = 0 }, "OUTREACH_MAX_SELECTION"},
		{"sub-second delay", func(c *Config) { c.Outreach.Delay = 500 * time.Millisecond }, "OUTREACH_DELAY"},
		{"inverted bounds", func(c *Config) {
			c.Outreach.MinDelay = 15 * time.Second
			c.Outreach.MaxDelay = 8 * time.Second
		}, "OUTREACH_MIN_DELAY"},
		{"unknown strategy", func(c *Config) { c.Outreach.Strategy = "sms" }, "OUTREACH_STRATEGY"},
		{"country code with plus", func(c *Config) { c.Outreach.CountryCode = "+91" }, "PHONE_COUNTRY_CODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestDSNPrefersURL(t *testing.T) {
	d := Database{URL: "postgres://u:p@db:5432/x", User: "ignored"}
	assert.Equal(t, "postgres://u:p@db:5432/x", d.DSN())

	d = Database{User: "u", Password: "p", Host: "h", Port: "1", Name: "n"}
	assert.Equal(t, "postgres://u:p@h:1/n?sslmode=disable", d.DSN())
}
