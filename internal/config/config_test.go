package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 60*time.Second, cfg.DecisionInterval())
	assert.Equal(t, 300*time.Second, cfg.ReportInterval())
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay())
	assert.Equal(t, 1000.0, cfg.Portfolio.InitialBalance)
	assert.Equal(t, "trades.csv", cfg.Export.LedgerCSV)

	sc := cfg.StrategyConfig()
	assert.Equal(t, 5*time.Minute, sc.MaxTokenAge)
	assert.Equal(t, 10000.0, sc.MaxBuyMarketCap)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Feed.Endpoint, cfg.Feed.Endpoint)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
feed:
  endpoint: ws://localhost:3000/socket.io/
strategy:
  max_buy_market_cap: 20000
engine:
  decision_interval_seconds: 10
export:
  ledger_csv: /tmp/out.csv
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:3000/socket.io/", cfg.Feed.Endpoint)
	assert.Equal(t, 20000.0, cfg.Strategy.MaxBuyMarketCap)
	assert.Equal(t, 10*time.Second, cfg.DecisionInterval())
	assert.Equal(t, "/tmp/out.csv", cfg.Export.LedgerCSV)

	// Untouched sections keep their defaults.
	assert.Equal(t, 300*time.Second, cfg.ReportInterval())
	assert.Equal(t, 1000.0, cfg.Portfolio.InitialBalance)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FEED_ENDPOINT", "ws://env-endpoint/socket.io/")
	t.Setenv("DASHBOARD_URL", "http://dash:5000")
	t.Setenv("POSTGRES_DSN", "postgres://env/db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ws://env-endpoint/socket.io/", cfg.Feed.Endpoint)
	assert.Equal(t, "http://dash:5000", cfg.Notify.DashboardURL)
	assert.Equal(t, "postgres://env/db", cfg.Storage.PostgresDSN)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty endpoint", func(c *Config) { c.Feed.Endpoint = "" }},
		{"zero reconnect delay", func(c *Config) { c.Feed.ReconnectDelaySeconds = 0 }},
		{"negative balance", func(c *Config) { c.Portfolio.InitialBalance = -1 }},
		{"zero decision interval", func(c *Config) { c.Engine.DecisionIntervalSeconds = 0 }},
		{"empty export path", func(c *Config) { c.Export.MarketCSV = "" }},
		{"bad strategy", func(c *Config) { c.Strategy.SellFraction = 2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
