package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/advisor/trader"
)

// Config represents the complete advisor configuration
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Trading TradingConfig `json:"trading" yaml:"trading"`
	Data    DataConfig    `json:"data" yaml:"data"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// AccountConfig contains the paper account initialization parameters
type AccountConfig struct {
	ID      string  `json:"id" yaml:"id"`
	Balance float64 `json:"balance" yaml:"balance"`
}

// TradingConfig contains decision-loop parameters
type TradingConfig struct {
	Symbol     string  `json:"symbol" yaml:"symbol"`
	Period     string  `json:"period" yaml:"period"`
	Cycles     int     `json:"cycles" yaml:"cycles"`
	Interval   string  `json:"interval" yaml:"interval"` // e.g., "1h", "30m", "1s"
	RiskFactor float64 `json:"risk_factor" yaml:"risk_factor"`
}

// ParseInterval converts the interval string to time.Duration
func (t TradingConfig) ParseInterval() (time.Duration, error) {
	if t.Interval == "" {
		return 0, nil
	}
	return time.ParseDuration(t.Interval)
}

// DataConfig selects and parameterizes the candle source. Bars below the
// long signal window (50) are valid: the technical signal stays HOLD
// until the walk has produced enough history, and the oracle still
// decides each cycle.
type DataConfig struct {
	Source string  `json:"source" yaml:"source"` // "csv" or "walk"
	Dir    string  `json:"dir,omitempty" yaml:"dir,omitempty"`
	Seed   int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Start  float64 `json:"start,omitempty" yaml:"start,omitempty"`
	Bars   int     `json:"bars,omitempty" yaml:"bars,omitempty"`
}

// JournalConfig contains outcome journaling parameters
type JournalConfig struct {
	Type         string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	OutcomesFile string `json:"outcomes_file,omitempty" yaml:"outcomes_file,omitempty"`
	DBPath       string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if c.Trading.Cycles <= 0 {
		return fmt.Errorf("trading.cycles must be positive")
	}
	if _, err := c.Trading.ParseInterval(); err != nil {
		return fmt.Errorf("bad trading.interval: %w", err)
	}
	if c.Trading.RiskFactor != 0 &&
		(c.Trading.RiskFactor < trader.MinRiskFactor || c.Trading.RiskFactor > trader.MaxRiskFactor) {
		return fmt.Errorf("trading.risk_factor must be between %v and %v",
			trader.MinRiskFactor, trader.MaxRiskFactor)
	}
	switch c.Data.Source {
	case "csv":
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir required for csv source")
		}
	case "walk":
		if c.Data.Start <= 0 {
			return fmt.Errorf("data.start must be positive for walk source")
		}
		if c.Data.Bars <= 0 {
			return fmt.Errorf("data.bars must be positive for walk source")
		}
	default:
		return fmt.Errorf("data.source must be 'csv' or 'walk'")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.OutcomesFile == "" {
			return fmt.Errorf("journal outcomes_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:      "PAPER-001",
			Balance: 10000,
		},
		Trading: TradingConfig{
			Symbol:     "BTC-USD",
			Period:     "1mo",
			Cycles:     10,
			Interval:   "1h",
			RiskFactor: trader.DefaultRiskFactor,
		},
		Data: DataConfig{
			Source: "walk",
			Seed:   1,
			Start:  100,
			Bars:   60,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./advisor.db",
		},
	}
}
