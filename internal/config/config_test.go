package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
storage:
  data_dir: /tmp/ab-data
  sqlite_path: /tmp/ab-data/runs.db

server:
  host: 127.0.0.1
  port: 8090

alpaca:
  api_key: file-key
  api_secret: file-secret
  rate_limit_per_min: 200

logging:
  level: info
  format: text

backtest:
  tickers: [AAPL, MSFT, GOOGL]
  start_date: "2024-01-02"
  end_date: "2024-06-28"
  initial_capital: 100000
  top_k: 2
  risk_free_daily: 0.0001
  signal_source: random
  signal_seed: 7
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alphabench.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadParsesFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Storage.DataDir != "/tmp/ab-data" {
		t.Errorf("DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/ab-data")
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Port = %d, want 8090", cfg.Server.Port)
	}
	if len(cfg.Backtest.Tickers) != 3 || cfg.Backtest.Tickers[0] != "AAPL" {
		t.Errorf("Tickers = %v, want [AAPL MSFT GOOGL]", cfg.Backtest.Tickers)
	}
	if cfg.Backtest.TopK != 2 {
		t.Errorf("TopK = %d, want 2", cfg.Backtest.TopK)
	}
	if cfg.Backtest.SignalSeed != 7 {
		t.Errorf("SignalSeed = %d, want 7", cfg.Backtest.SignalSeed)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate on sample config: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("SIGNAL_SEED", "99")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env override %q", cfg.Alpaca.APIKey, "env-key")
	}
	if cfg.Backtest.SignalSeed != 99 {
		t.Errorf("SignalSeed = %d, want 99", cfg.Backtest.SignalSeed)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadCanonicalAlpacaVarsWin(t *testing.T) {
	t.Setenv("ALPACA_API_KEY", "legacy-key")
	t.Setenv("APCA_API_KEY_ID", "canonical-key")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Alpaca.APIKey != "canonical-key" {
		t.Errorf("APIKey = %q, want %q", cfg.Alpaca.APIKey, "canonical-key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load should fail for a missing file")
	}
}

func TestValidateRejections(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(writeConfig(t, sampleYAML))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		return cfg
	}

	cfg := base()
	cfg.Backtest.Tickers = nil
	if err := cfg.Validate(); err == nil {
		t.Error("empty ticker universe should be rejected")
	}

	cfg = base()
	cfg.Backtest.InitialCapital = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero initial_capital should be rejected")
	}

	cfg = base()
	cfg.Backtest.TopK = 0
	if err := cfg.Validate(); err == nil {
		t.Error("top_k below 1 should be rejected")
	}

	cfg = base()
	cfg.Backtest.StartDate, cfg.Backtest.EndDate = cfg.Backtest.EndDate, cfg.Backtest.StartDate
	if err := cfg.Validate(); err == nil {
		t.Error("inverted date range should be rejected")
	}

	cfg = base()
	cfg.Backtest.StartDate = "02/01/2024"
	if err := cfg.Validate(); err == nil {
		t.Error("malformed start_date should be rejected")
	}

	cfg = base()
	cfg.Backtest.SignalSource = "astrology"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown signal_source should be rejected")
	}
}

func TestDateRange(t *testing.T) {
	b := Backtest{StartDate: "2024-01-02", EndDate: "2024-01-31"}
	start, end, err := b.DateRange()
	if err != nil {
		t.Fatalf("DateRange returned error: %v", err)
	}
	if !start.Before(end) {
		t.Errorf("start %v not before end %v", start, end)
	}
	if start.Year() != 2024 || start.Day() != 2 {
		t.Errorf("start = %v, want 2024-01-02", start)
	}
}
