package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"alphabench/internal/config"
	"alphabench/internal/pricesource"
	"alphabench/internal/store"
	"alphabench/internal/util"
)

// alphabench-fetch warms the Parquet bar cache for the configured universe
// and date range so later backtests run without touching the network.
func main() {
	_ = godotenv.Load()

	cfgPath := "config/alphabench.yaml"
	if p := os.Getenv("ALPHABENCH_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start, end, err := cfg.Backtest.DateRange()
	if err != nil {
		log.Fatalf("invalid dates: %v", err)
	}

	alpaca := pricesource.NewAlpacaSource(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		cfg.Alpaca.RateLimitPerMin,
	)
	cached := pricesource.NewCachedSource(store.NewParquetStore(cfg.Storage.DataDir), alpaca)

	prices, err := cached.FetchPrices(ctx, cfg.Backtest.Tickers, start, end)
	if err != nil {
		log.Fatalf("fetching prices: %v", err)
	}
	fmt.Printf("cached %d dates for %d tickers under %s\n",
		prices.Len(), len(cfg.Backtest.Tickers), cfg.Storage.DataDir)
}
