// Package config loads and validates the alphabench YAML configuration,
// with environment variable overrides for credentials and paths.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for alphabench.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Server   Server   `yaml:"server"`
	Alpaca   Alpaca   `yaml:"alpaca"`
	Logging  Logging  `yaml:"logging"`
	Backtest Backtest `yaml:"backtest"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration for alphabench-server.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey          string `yaml:"api_key"`
	APISecret       string `yaml:"api_secret"`
	DataURL         string `yaml:"data_url"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Backtest defines the universe, range, and simulation parameters.
type Backtest struct {
	Tickers        []string `yaml:"tickers"`
	StartDate      string   `yaml:"start_date"`
	EndDate        string   `yaml:"end_date"`
	InitialCapital float64  `yaml:"initial_capital"`
	TopK           int      `yaml:"top_k"`
	RiskFreeDaily  float64  `yaml:"risk_free_daily"`
	SignalSource   string   `yaml:"signal_source"` // "random" or "sentiment"
	SignalSeed     int64    `yaml:"signal_seed"`
}

// DateRange parses the configured start and end dates.
func (b Backtest) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", b.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing start date %q: %w", b.StartDate, err)
	}
	end, err = time.Parse("2006-01-02", b.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing end date %q: %w", b.EndDate, err)
	}
	return start, end, nil
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("SIGNAL_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Backtest.SignalSeed = n
		}
	}

	// The canonical Alpaca SDK variable names win over everything else.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate rejects configurations that cannot produce a meaningful run. It
// runs before any data fetch or simulation so bad parameters fail fast.
func (c *Config) Validate() error {
	b := c.Backtest
	if len(b.Tickers) == 0 {
		return fmt.Errorf("config: ticker universe is empty")
	}
	if b.InitialCapital <= 0 {
		return fmt.Errorf("config: initial_capital must be positive, got %v", b.InitialCapital)
	}
	if b.TopK < 1 {
		return fmt.Errorf("config: top_k must be at least 1, got %d", b.TopK)
	}
	start, end, err := b.DateRange()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !start.Before(end) {
		return fmt.Errorf("config: start_date %s must be before end_date %s", b.StartDate, b.EndDate)
	}
	switch b.SignalSource {
	case "", "random", "sentiment":
	default:
		return fmt.Errorf("config: unknown signal_source %q", b.SignalSource)
	}
	return nil
}
