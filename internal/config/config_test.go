package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 0.15, cfg.Portfolio.TaxRate)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad base url", func(c *Config) { c.Market.BaseURL = "::nope" }, "market.base_url"},
		{"app id", func(c *Config) { c.Market.AppID = -1 }, "market.app_id"},
		{"comma decimal currency", func(c *Config) {
			c.Market.Currency = 3
			c.Market.CurrencyCode = "EUR"
		}, "market.currency 3"},
		{"currency code mismatch", func(c *Config) { c.Market.CurrencyCode = "EUR" }, "market.currency_code"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "sqlite" }, "storage.backend"},
		{"empty key", func(c *Config) { c.Storage.Key = "" }, "storage.key"},
		{"tax rate", func(c *Config) { c.Portfolio.TaxRate = 1 }, "portfolio.tax_rate"},
		{"negative tax rate", func(c *Config) { c.Portfolio.TaxRate = -0.1 }, "portfolio.tax_rate"},
		{"lock without redis", func(c *Config) { c.Refresh.DistributedLock = true }, "refresh.distributed_lock"},
		{"cache without redis", func(c *Config) { c.Market.CacheEnabled = true }, "market.cache_enabled"},
		{"events without brokers", func(c *Config) { c.Events.Enabled = true }, "events.brokers"},
		{"postgres driver", func(c *Config) {
			c.Storage.Backend = "postgres"
			c.Postgres.Driver = "mysql"
		}, "postgres.driver"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidate_ZeroTaxRateAllowed(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Portfolio.TaxRate = 0
	assert.NoError(t, cfg.Validate())
}

//Personal.AI order the ending
