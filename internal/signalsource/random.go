package signalsource

import (
	"context"
	"math/rand"
	"time"

	"alphabench/internal/series"
)

// Compile-time interface check.
var _ Source = (*RandomSource)(nil)

// RandomSource produces simulated scores in [-1, 1] from a seeded generator.
// The same seed always yields the same SignalSeries, so test runs never
// depend on process-wide random state.
type RandomSource struct {
	seed int64
}

// NewRandomSource creates a RandomSource with the given seed.
func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{seed: seed}
}

// ComputeSignals generates one score per (date, ticker), iterating dates in
// order and tickers in the given order so output is reproducible.
func (s *RandomSource) ComputeSignals(_ context.Context, tickers []string, dates []time.Time) (*series.SignalSeries, error) {
	b, err := series.NewSignalBuilder(dates, tickers)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(s.seed))
	for i := range dates {
		for _, sym := range tickers {
			b.SetAt(i, sym, 2*rng.Float64()-1)
		}
	}
	return b.Build(), nil
}
