// Package signalsource provides pluggable producers of per-asset daily
// signal scores. The simulators treat a source as an opaque numeric oracle:
// any real-valued score works, and missing scores are excluded from ranking.
package signalsource

import (
	"context"
	"time"

	"alphabench/internal/series"
)

// Source computes signal scores for a set of tickers, aligned one-to-one
// with the given date index.
type Source interface {
	ComputeSignals(ctx context.Context, tickers []string, dates []time.Time) (*series.SignalSeries, error)
}
