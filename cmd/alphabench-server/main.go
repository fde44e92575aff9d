package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"alphabench/internal/config"
	"alphabench/internal/httpapi"
	"alphabench/internal/pricesource"
	"alphabench/internal/signalsource"
	"alphabench/internal/store"
	"alphabench/internal/util"
)

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

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	alpaca := pricesource.NewAlpacaSource(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		cfg.Alpaca.RateLimitPerMin,
	)
	prices := pricesource.NewCachedSource(store.NewParquetStore(cfg.Storage.DataDir), alpaca)

	var runs *store.SQLiteStore
	if cfg.Storage.SQLitePath != "" {
		runs, err = store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening run store: %v", err)
		}
		defer runs.Close()
	}

	signals := signalsource.Source(signalsource.NewRandomSource(cfg.Backtest.SignalSeed))
	if cfg.Backtest.SignalSource == "sentiment" {
		signals = signalsource.NewSentimentSource(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.RateLimitPerMin)
	}

	api := httpapi.NewServer(prices, signals, runs, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // backtests over long ranges can take a while
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
