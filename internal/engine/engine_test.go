package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"alphabench/internal/backtest"
	"alphabench/internal/pricesource"
	"alphabench/internal/series"
	"alphabench/internal/store"
)

// fixedPrices serves a canned price table.
type fixedPrices struct {
	cols map[string][]float64
	err  error
}

func (f *fixedPrices) FetchPrices(_ context.Context, tickers []string, _, _ time.Time) (*series.PriceSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	b := series.NewPriceBuilder(tickers)
	for _, sym := range tickers {
		for i, v := range f.cols[sym] {
			b.Set(time.Date(2024, 1, i+2, 0, 0, 0, 0, time.UTC), sym, v)
		}
	}
	return b.Build()
}

// fixedSignals serves a canned score table aligned to the given dates.
type fixedSignals struct {
	cols map[string][]float64
}

func (f *fixedSignals) ComputeSignals(_ context.Context, tickers []string, dates []time.Time) (*series.SignalSeries, error) {
	b, err := series.NewSignalBuilder(dates, tickers)
	if err != nil {
		return nil, err
	}
	for _, sym := range tickers {
		for i, v := range f.cols[sym] {
			b.SetAt(i, sym, v)
		}
	}
	return b.Build(), nil
}

// memRunStore records saved runs in memory.
type memRunStore struct {
	saved []store.Run
}

func (m *memRunStore) SaveRun(_ context.Context, run *store.Run) error {
	run.ID = int64(len(m.saved) + 1)
	run.CreatedAt = time.Now().UTC()
	m.saved = append(m.saved, *run)
	return nil
}

func (m *memRunStore) ListRuns(_ context.Context, limit int) ([]store.Run, error) {
	if limit > len(m.saved) {
		limit = len(m.saved)
	}
	out := make([]store.Run, 0, limit)
	for i := len(m.saved) - 1; i >= len(m.saved)-limit; i-- {
		out = append(out, m.saved[i])
	}
	return out, nil
}

func testParams() Params {
	return Params{
		Tickers:        []string{"A", "B", "C"},
		Start:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		InitialCapital: 10000,
		TopK:           2,
	}
}

func TestEngineRunProducesBothStrategies(t *testing.T) {
	prices := &fixedPrices{cols: map[string][]float64{
		"A": {10, 11, 9},
		"B": {20, 19, 22},
		"C": {5, 5, 5},
	}}
	signals := &fixedSignals{cols: map[string][]float64{
		"A": {0.9, 0.1, 0.1},
		"B": {0.8, 0.9, 0.9},
		"C": {0.1, 0.5, 0.5},
	}}

	eng := New(prices, signals, nil)
	out, err := eng.Run(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if out.Ranked.Result.Strategy != backtest.StrategyRanked {
		t.Errorf("ranked strategy = %q", out.Ranked.Result.Strategy)
	}
	if out.Static.Result.Strategy != backtest.StrategyStaticHold {
		t.Errorf("static strategy = %q", out.Static.Result.Strategy)
	}
	if len(out.Dates) != 3 {
		t.Errorf("dates = %d, want 3", len(out.Dates))
	}
	if got := len(out.Ranked.Result.Values); got != 3 {
		t.Errorf("ranked values = %d, want 3", got)
	}
	if got := len(out.Static.Result.Values); got != 3 {
		t.Errorf("static values = %d, want 3", got)
	}
	wantTotal := (out.Ranked.Result.FinalValue() - 10000) / 10000
	if out.Ranked.Metrics.TotalReturn != wantTotal {
		t.Errorf("ranked total return = %v, want %v", out.Ranked.Metrics.TotalReturn, wantTotal)
	}
}

func TestEngineRunPersistsRuns(t *testing.T) {
	prices := &fixedPrices{cols: map[string][]float64{
		"A": {10, 11, 9},
		"B": {20, 19, 22},
		"C": {5, 5, 5},
	}}
	signals := &fixedSignals{cols: map[string][]float64{
		"A": {0.9, 0.1, 0.1},
		"B": {0.8, 0.9, 0.9},
		"C": {0.1, 0.5, 0.5},
	}}
	runs := &memRunStore{}

	eng := New(prices, signals, runs)
	out, err := eng.Run(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(runs.saved) != 2 {
		t.Fatalf("saved %d runs, want one per strategy", len(runs.saved))
	}
	if runs.saved[0].Strategy != backtest.StrategyRanked || runs.saved[1].Strategy != backtest.StrategyStaticHold {
		t.Errorf("saved strategies = %q, %q", runs.saved[0].Strategy, runs.saved[1].Strategy)
	}
	if runs.saved[0].FinalValue != out.Ranked.Result.FinalValue() {
		t.Errorf("persisted final value = %v, want %v",
			runs.saved[0].FinalValue, out.Ranked.Result.FinalValue())
	}
	if runs.saved[0].StartDate != "2024-01-02" {
		t.Errorf("persisted start date = %q, want 2024-01-02", runs.saved[0].StartDate)
	}
}

func TestEngineRunValidatesParams(t *testing.T) {
	eng := New(&fixedPrices{}, &fixedSignals{}, nil)
	ctx := context.Background()

	p := testParams()
	p.Tickers = nil
	if _, err := eng.Run(ctx, p); err == nil {
		t.Error("empty universe should be rejected")
	}

	p = testParams()
	p.InitialCapital = 0
	if _, err := eng.Run(ctx, p); err == nil {
		t.Error("zero capital should be rejected")
	}

	p = testParams()
	p.TopK = 0
	if _, err := eng.Run(ctx, p); err == nil {
		t.Error("zero selection size should be rejected")
	}

	p = testParams()
	p.Start, p.End = p.End, p.Start
	if _, err := eng.Run(ctx, p); err == nil {
		t.Error("inverted range should be rejected")
	}
}

func TestEngineRunPropagatesDataUnavailable(t *testing.T) {
	eng := New(&fixedPrices{err: pricesource.ErrDataUnavailable}, &fixedSignals{}, nil)
	_, err := eng.Run(context.Background(), testParams())
	if !errors.Is(err, pricesource.ErrDataUnavailable) {
		t.Errorf("error = %v, want wrapped ErrDataUnavailable", err)
	}
}
