// Package engine orchestrates a complete backtest: fetch prices, compute
// signals, run both simulators, derive metrics, and persist the runs.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"alphabench/internal/backtest"
	"alphabench/internal/metrics"
	"alphabench/internal/pricesource"
	"alphabench/internal/signalsource"
	"alphabench/internal/store"
)

// Params defines one backtest request.
type Params struct {
	Tickers        []string
	Start, End     time.Time
	InitialCapital float64
	TopK           int
	RiskFreeDaily  float64
}

// validate applies the same fail-fast rules as config validation, so runs
// arriving through the HTTP API are rejected before any data fetch too.
func (p Params) validate() error {
	if len(p.Tickers) == 0 {
		return fmt.Errorf("backtest params: ticker universe is empty")
	}
	if p.InitialCapital <= 0 {
		return fmt.Errorf("backtest params: initial capital must be positive, got %v", p.InitialCapital)
	}
	if p.TopK < 1 {
		return fmt.Errorf("backtest params: selection size must be at least 1, got %d", p.TopK)
	}
	if !p.Start.Before(p.End) {
		return fmt.Errorf("backtest params: start %s must be before end %s",
			p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	}
	return nil
}

// StrategyOutcome pairs one simulator's result with its metrics.
type StrategyOutcome struct {
	Result  *backtest.Result
	Metrics metrics.Record
}

// Outcome is the complete output of one engine run.
type Outcome struct {
	Dates  []time.Time
	Ranked StrategyOutcome
	Static StrategyOutcome
}

// Engine wires a price source, a signal source, and an optional run store.
type Engine struct {
	prices  pricesource.Source
	signals signalsource.Source
	runs    store.RunStore // nil disables persistence
	log     *slog.Logger
}

// New creates an Engine. runs may be nil.
func New(prices pricesource.Source, signals signalsource.Source, runs store.RunStore) *Engine {
	return &Engine{
		prices:  prices,
		signals: signals,
		runs:    runs,
		log:     slog.Default().With("component", "engine"),
	}
}

// Run executes both strategies over the requested universe and range.
// Boundary failures (no price data) abort before any simulation; once the
// simulators start, the run always completes with fully-populated metrics.
func (e *Engine) Run(ctx context.Context, p Params) (*Outcome, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	prices, err := e.prices.FetchPrices(ctx, p.Tickers, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	dates := prices.Dates()
	e.log.Info("prices ready", "dates", len(dates), "tickers", len(p.Tickers))

	signals, err := e.signals.ComputeSignals(ctx, prices.Symbols(), dates)
	if err != nil {
		return nil, fmt.Errorf("computing signals: %w", err)
	}

	ranked, err := backtest.RankedRebalance(prices, signals, p.InitialCapital, p.TopK)
	if err != nil {
		return nil, err
	}
	static, err := backtest.StaticHold(prices, p.InitialCapital)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Dates:  dates,
		Ranked: StrategyOutcome{Result: ranked, Metrics: metrics.Compute(ranked.Values, p.RiskFreeDaily)},
		Static: StrategyOutcome{Result: static, Metrics: metrics.Compute(static.Values, p.RiskFreeDaily)},
	}

	if e.runs != nil {
		for _, so := range []StrategyOutcome{out.Ranked, out.Static} {
			run := runFromOutcome(p, so)
			if err := e.runs.SaveRun(ctx, run); err != nil {
				e.log.Warn("persisting run", "strategy", so.Result.Strategy, "error", err)
			}
		}
	}
	return out, nil
}

// runFromOutcome flattens an outcome into a persistable Run row.
func runFromOutcome(p Params, so StrategyOutcome) *store.Run {
	return &store.Run{
		Strategy:         so.Result.Strategy,
		Tickers:          p.Tickers,
		StartDate:        p.Start.Format("2006-01-02"),
		EndDate:          p.End.Format("2006-01-02"),
		InitialCapital:   p.InitialCapital,
		TopK:             p.TopK,
		FinalValue:       so.Result.FinalValue(),
		TotalReturn:      so.Metrics.TotalReturn,
		AnnualizedReturn: so.Metrics.AnnualizedReturn,
		SharpeRatio:      so.Metrics.SharpeRatio,
		MaxDrawdown:      so.Metrics.MaxDrawdown,
		Volatility:       so.Metrics.Volatility,
	}
}
