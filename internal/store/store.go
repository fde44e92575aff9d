// Package store persists daily closing prices (Parquet bar cache) and
// completed backtest runs with their metrics (SQLite).
package store

import (
	"context"
	"time"
)

// CloseBar is one daily closing price observation for a symbol.
type CloseBar struct {
	Symbol string
	Date   time.Time
	Close  float64
}

// BarStore persists and retrieves daily close bars.
type BarStore interface {
	// WriteBars persists a batch of bars to storage, merging with any
	// previously written bars for the same (symbol, date).
	WriteBars(ctx context.Context, bars []CloseBar) error

	// ReadBars returns bars for the given symbol within [start, end],
	// sorted by date ascending.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]CloseBar, error)

	// ListSymbols returns all distinct symbols available in the cache.
	ListSymbols(ctx context.Context) ([]string, error)
}

// Run is a persisted backtest run: its parameters, outcome, and metrics.
// Metric columns are flattened so the row is self-contained.
type Run struct {
	ID               int64
	Strategy         string
	Tickers          []string
	StartDate        string
	EndDate          string
	InitialCapital   float64
	TopK             int
	FinalValue       float64
	TotalReturn      float64
	AnnualizedReturn float64
	SharpeRatio      float64
	MaxDrawdown      float64
	Volatility       float64
	CreatedAt        time.Time
}

// RunStore persists and retrieves backtest runs.
type RunStore interface {
	// SaveRun inserts a run and fills in its ID and CreatedAt.
	SaveRun(ctx context.Context, run *Run) error

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
