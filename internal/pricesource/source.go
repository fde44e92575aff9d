// Package pricesource provides pluggable providers of historical daily
// closing prices. A provider returns a date-aligned PriceSeries in which
// missing (date, symbol) cells stay missing rather than being dropped.
package pricesource

import (
	"context"
	"errors"
	"time"

	"alphabench/internal/series"
)

// ErrDataUnavailable reports that a source returned no usable rows for the
// requested tickers and range. It is fatal to a run and surfaces before any
// simulation starts.
var ErrDataUnavailable = errors.New("no price data available")

// Source fetches daily closing prices for a set of tickers over a date range.
type Source interface {
	FetchPrices(ctx context.Context, tickers []string, start, end time.Time) (*series.PriceSeries, error)
}
