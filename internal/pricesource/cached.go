package pricesource

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"alphabench/internal/series"
	"alphabench/internal/store"
)

// Compile-time interface check.
var _ Source = (*CachedSource)(nil)

// CachedSource reads daily closes through a BarStore. Tickers with no cached
// rows in the requested range are fetched from the fallback source and
// written back to the cache. A nil fallback makes the cache authoritative.
type CachedSource struct {
	bars     store.BarStore
	fallback Source
	log      *slog.Logger
}

// NewCachedSource creates a CachedSource over the given cache and fallback.
func NewCachedSource(bars store.BarStore, fallback Source) *CachedSource {
	return &CachedSource{
		bars:     bars,
		fallback: fallback,
		log:      slog.Default().With("source", "cached"),
	}
}

// FetchPrices assembles a PriceSeries from the cache, filling per-ticker
// cache misses from the fallback source.
func (s *CachedSource) FetchPrices(ctx context.Context, tickers []string, start, end time.Time) (*series.PriceSeries, error) {
	upper := make([]string, len(tickers))
	for i, t := range tickers {
		upper[i] = strings.ToUpper(t)
	}

	b := series.NewPriceBuilder(upper)
	rows := 0
	var misses []string
	for _, sym := range upper {
		bars, err := s.bars.ReadBars(ctx, sym, start, end)
		if err != nil {
			return nil, fmt.Errorf("reading cached bars for %s: %w", sym, err)
		}
		if len(bars) == 0 {
			misses = append(misses, sym)
			continue
		}
		for _, bar := range bars {
			b.Set(bar.Date, sym, bar.Close)
			rows++
		}
	}

	if len(misses) > 0 && s.fallback != nil {
		s.log.Info("cache misses, fetching", "tickers", misses)
		fetched, err := s.fallback.FetchPrices(ctx, misses, start, end)
		if err != nil {
			// A fallback with no data for the missing tickers is not fatal
			// as long as the cache produced rows for the others.
			if rows == 0 {
				return nil, err
			}
			s.log.Warn("fallback fetch failed, using cache only", "error", err)
		} else {
			var writeback []store.CloseBar
			dates := fetched.Dates()
			for _, sym := range misses {
				for i, d := range dates {
					if p, ok := fetched.Price(i, sym); ok {
						b.Set(d, sym, p)
						writeback = append(writeback, store.CloseBar{Symbol: sym, Date: d, Close: p})
						rows++
					}
				}
			}
			if err := s.bars.WriteBars(ctx, writeback); err != nil {
				s.log.Warn("writing bars back to cache", "error", err)
			}
		}
	}

	if rows == 0 {
		return nil, fmt.Errorf("%w for %s..%s (%d tickers)",
			ErrDataUnavailable, start.Format("2006-01-02"), end.Format("2006-01-02"), len(tickers))
	}
	return b.Build()
}
