// Package config loads bot configuration from an optional YAML file
// with environment overrides from a .env file or the process env.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pumpfun-paper-bot/internal/strategy"
)

// Config is the complete bot configuration.
type Config struct {
	Feed      FeedConfig      `yaml:"feed"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Portfolio PortfolioConfig `yaml:"portfolio"`
	Engine    EngineConfig    `yaml:"engine"`
	Export    ExportConfig    `yaml:"export"`
	Notify    NotifyConfig    `yaml:"notify"`
	Storage   StorageConfig   `yaml:"storage"`
}

// FeedConfig controls the event stream client.
type FeedConfig struct {
	Endpoint              string `yaml:"endpoint"`
	ReconnectDelaySeconds int    `yaml:"reconnect_delay_seconds"`
}

// StrategyConfig holds the signal policy thresholds.
type StrategyConfig struct {
	MaxTokenAgeSeconds int     `yaml:"max_token_age_seconds"`
	MaxBuyMarketCap    float64 `yaml:"max_buy_market_cap"`
	MaxBuyAmount       float64 `yaml:"max_buy_amount"`
	BuyCapFraction     float64 `yaml:"buy_cap_fraction"`
	SellMarketCapFloor float64 `yaml:"sell_market_cap_floor"`
	SellGrowthMultiple float64 `yaml:"sell_growth_multiple"`
	SellFraction       float64 `yaml:"sell_fraction"`
}

// PortfolioConfig controls the paper ledger.
type PortfolioConfig struct {
	InitialBalance float64 `yaml:"initial_balance"`
}

// EngineConfig controls the periodic cycles.
type EngineConfig struct {
	DecisionIntervalSeconds int `yaml:"decision_interval_seconds"`
	ReportIntervalSeconds   int `yaml:"report_interval_seconds"`
}

// ExportConfig controls the CSV export sinks.
type ExportConfig struct {
	LedgerCSV string `yaml:"ledger_csv"`
	MarketCSV string `yaml:"market_csv"`
}

// NotifyConfig controls the dashboard notification sink.
type NotifyConfig struct {
	DashboardURL string `yaml:"dashboard_url"`
}

// StorageConfig controls the optional durable archives.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			Endpoint:              "wss://frontend-api.pump.fun/socket.io/?EIO=4&transport=websocket",
			ReconnectDelaySeconds: 5,
		},
		Strategy: StrategyConfig{
			MaxTokenAgeSeconds: 300,
			MaxBuyMarketCap:    10000,
			MaxBuyAmount:       100,
			BuyCapFraction:     0.01,
			SellMarketCapFloor: 50000,
			SellGrowthMultiple: 5,
			SellFraction:       0.5,
		},
		Portfolio: PortfolioConfig{InitialBalance: 1000},
		Engine: EngineConfig{
			DecisionIntervalSeconds: 60,
			ReportIntervalSeconds:   300,
		},
		Export: ExportConfig{
			LedgerCSV: "trades.csv",
			MarketCSV: "market_data.csv",
		},
	}
}

// Load reads configuration: defaults, then the YAML file if path is
// non-empty, then environment overrides. A .env file is loaded first
// when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides maps well-known env vars over the loaded config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FEED_ENDPOINT"); v != "" {
		cfg.Feed.Endpoint = v
	}
	if v := os.Getenv("DASHBOARD_URL"); v != "" {
		cfg.Notify.DashboardURL = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Feed.Endpoint == "" {
		return fmt.Errorf("config: feed endpoint must not be empty")
	}
	if c.Feed.ReconnectDelaySeconds <= 0 {
		return fmt.Errorf("config: reconnect delay must be positive")
	}
	if c.Portfolio.InitialBalance <= 0 {
		return fmt.Errorf("config: initial balance must be positive")
	}
	if c.Engine.DecisionIntervalSeconds <= 0 || c.Engine.ReportIntervalSeconds <= 0 {
		return fmt.Errorf("config: cycle intervals must be positive")
	}
	if c.Export.LedgerCSV == "" || c.Export.MarketCSV == "" {
		return fmt.Errorf("config: export paths must not be empty")
	}
	if err := c.StrategyConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// StrategyConfig converts the YAML thresholds to the policy config.
func (c *Config) StrategyConfig() strategy.Config {
	return strategy.Config{
		MaxTokenAge:        time.Duration(c.Strategy.MaxTokenAgeSeconds) * time.Second,
		MaxBuyMarketCap:    c.Strategy.MaxBuyMarketCap,
		MaxBuyAmount:       c.Strategy.MaxBuyAmount,
		BuyCapFraction:     c.Strategy.BuyCapFraction,
		SellMarketCapFloor: c.Strategy.SellMarketCapFloor,
		SellGrowthMultiple: c.Strategy.SellGrowthMultiple,
		SellFraction:       c.Strategy.SellFraction,
	}
}

// DecisionInterval returns the decision cycle period.
func (c *Config) DecisionInterval() time.Duration {
	return time.Duration(c.Engine.DecisionIntervalSeconds) * time.Second
}

// ReportInterval returns the report cycle period.
func (c *Config) ReportInterval() time.Duration {
	return time.Duration(c.Engine.ReportIntervalSeconds) * time.Second
}

// ReconnectDelay returns the feed reconnect backoff.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Feed.ReconnectDelaySeconds) * time.Second
}
