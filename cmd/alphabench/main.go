package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"alphabench/internal/backtest"
	"alphabench/internal/config"
	"alphabench/internal/engine"
	"alphabench/internal/pricesource"
	"alphabench/internal/report"
	"alphabench/internal/signalsource"
	"alphabench/internal/store"
	"alphabench/internal/util"
)

func main() {
	chartPath := flag.String("chart", "", "write a comparison chart PNG to this path")
	noPersist := flag.Bool("no-persist", false, "skip saving the run to the SQLite run store")
	flag.Parse()

	// .env is optional; real env vars still win inside config.Load.
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

	// Price source: Alpaca behind the Parquet cache.
	alpaca := pricesource.NewAlpacaSource(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		cfg.Alpaca.RateLimitPerMin,
	)
	prices := pricesource.NewCachedSource(store.NewParquetStore(cfg.Storage.DataDir), alpaca)

	// Signal source.
	var signals signalsource.Source
	switch cfg.Backtest.SignalSource {
	case "sentiment":
		signals = signalsource.NewSentimentSource(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.RateLimitPerMin)
	default:
		signals = signalsource.NewRandomSource(cfg.Backtest.SignalSeed)
	}

	// Run store.
	var runs store.RunStore
	if !*noPersist && cfg.Storage.SQLitePath != "" {
		sqlStore, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening run store: %v", err)
		}
		defer sqlStore.Close()
		runs = sqlStore
	}

	eng := engine.New(prices, signals, runs)
	out, err := eng.Run(ctx, engine.Params{
		Tickers:        cfg.Backtest.Tickers,
		Start:          start,
		End:            end,
		InitialCapital: cfg.Backtest.InitialCapital,
		TopK:           cfg.Backtest.TopK,
		RiskFreeDaily:  cfg.Backtest.RiskFreeDaily,
	})
	if err != nil {
		if errors.Is(err, pricesource.ErrDataUnavailable) {
			log.Fatalf("no usable price data for the requested range: %v", err)
		}
		log.Fatalf("backtest failed: %v", err)
	}

	sink := report.NewConsoleSink(os.Stdout)
	report.Report(sink, out.Ranked.Result, out.Ranked.Metrics)
	report.Report(sink, out.Static.Result, out.Static.Metrics)

	if *chartPath != "" {
		lines := [][]float64{
			valuesOf(out.Ranked.Result),
			valuesOf(out.Static.Result),
		}
		labels := []string{backtest.StrategyRanked, backtest.StrategyStaticHold}
		if err := report.WriteComparisonPNG(*chartPath, "alphabench strategy comparison", out.Dates, labels, lines); err != nil {
			log.Fatalf("writing chart: %v", err)
		}
		fmt.Printf("\nchart written to %s\n", *chartPath)
	}
}

func valuesOf(res *backtest.Result) []float64 {
	vals := make([]float64, len(res.Values))
	for i, v := range res.Values {
		vals[i] = v.Value
	}
	return vals
}
