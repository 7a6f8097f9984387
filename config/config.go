// Package config loads lotbook's settings from an optional TOML file, a .env
// file and LOTBOOK_* environment variables, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/perf"
	"github.com/tsiemens/lotbook/portfolio"
)

const DefaultConfigFile = "lotbook.toml"

type Config struct {
	Tax         TaxConfig         `toml:"tax"`
	Lots        LotsConfig        `toml:"lots"`
	Performance PerformanceConfig `toml:"performance"`
}

// Rates are fractions in [0, 1].
type TaxConfig struct {
	ShortTermRate float64 `toml:"short_term_rate"`
	LongTermRate  float64 `toml:"long_term_rate"`
}

type LotsConfig struct {
	Strategy         string `toml:"strategy"` // fifo, lifo or hifo
	AgingHorizonDays int    `toml:"aging_horizon_days"`
}

type PerformanceConfig struct {
	RiskFreeRate float64 `toml:"risk_free_rate"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Tax: TaxConfig{
			ShortTermRate: 0.37,
			LongTermRate:  0.20,
		},
		Lots: LotsConfig{
			Strategy:         "fifo",
			AgingHorizonDays: 30,
		},
		Performance: PerformanceConfig{
			RiskFreeRate: perf.DefaultRiskFreeRate,
		},
	}
}

// LoadConfig loads the config files in order, later files overriding earlier
// ones, then applies environment overrides. Missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func envFloat(key string, dst *float64) error {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
	}
	return nil
}

func applyEnvOverrides(config *Config) error {
	if err := envFloat("LOTBOOK_SHORT_TERM_RATE", &config.Tax.ShortTermRate); err != nil {
		return err
	}
	if err := envFloat("LOTBOOK_LONG_TERM_RATE", &config.Tax.LongTermRate); err != nil {
		return err
	}
	if err := envFloat("LOTBOOK_RISK_FREE_RATE", &config.Performance.RiskFreeRate); err != nil {
		return err
	}
	if v := os.Getenv("LOTBOOK_LOT_STRATEGY"); v != "" {
		config.Lots.Strategy = v
	}
	if v := os.Getenv("LOTBOOK_AGING_HORIZON_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOTBOOK_AGING_HORIZON_DAYS: %w", err)
		}
		config.Lots.AgingHorizonDays = days
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := c.TaxSettings(); err != nil {
		return err
	}
	if _, err := c.Strategy(); err != nil {
		return err
	}
	if c.Lots.AgingHorizonDays < 0 {
		return fmt.Errorf("%w: aging horizon (%d days) is negative",
			portfolio.ErrInvalidSettings, c.Lots.AgingHorizonDays)
	}
	return nil
}

func (c *Config) TaxSettings() (portfolio.TaxSettings, error) {
	return portfolio.NewTaxSettings(
		decimal.NewFromFloat(c.Tax.ShortTermRate), decimal.NewFromFloat(c.Tax.LongTermRate))
}

// Strategy is the ordering used when replaying sales. SpecificId is not
// allowed here, as it needs lot ids per sale.
func (c *Config) Strategy() (portfolio.LotSelectionStrategy, error) {
	s, err := portfolio.ParseLotSelectionStrategy(c.Lots.Strategy)
	if err != nil {
		return portfolio.FIFO, fmt.Errorf("%w: %v", portfolio.ErrInvalidSettings, err)
	}
	if s == portfolio.SpecificId {
		return portfolio.FIFO, fmt.Errorf("%w: %s cannot be the default lot strategy",
			portfolio.ErrInvalidSettings, s)
	}
	return s, nil
}
