package pricesource

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"alphabench/internal/series"
	"alphabench/internal/util"
)

// Compile-time interface check.
var _ Source = (*AlpacaSource)(nil)

// AlpacaSource fetches daily closing prices from the Alpaca market-data API.
// Requests are rate limited and retried with backoff.
type AlpacaSource struct {
	client  *marketdata.Client
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewAlpacaSource creates an AlpacaSource with the given credentials.
// perMinute bounds the request rate; dataURL overrides the default endpoint
// when non-empty.
func NewAlpacaSource(apiKey, apiSecret, dataURL string, perMinute int) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if perMinute <= 0 {
		perMinute = 200
	}
	return &AlpacaSource{
		client:  marketdata.NewClient(opts),
		limiter: util.NewRateLimiter(perMinute),
		log:     slog.Default().With("source", "alpaca"),
	}
}

// FetchPrices fetches daily bars for all tickers in a single multi-symbol
// request and returns them as a PriceSeries. Symbols the API knows nothing
// about simply have no cells; the call fails with ErrDataUnavailable only
// when no ticker yields any row.
func (s *AlpacaSource) FetchPrices(ctx context.Context, tickers []string, start, end time.Time) (*series.PriceSeries, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	upper := make([]string, len(tickers))
	for i, t := range tickers {
		upper[i] = strings.ToUpper(t)
	}

	var multiBars map[string][]marketdata.Bar
	err := util.Retry(ctx, 3, time.Second, func() error {
		var ferr error
		multiBars, ferr = s.client.GetMultiBars(upper, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
		})
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	b := series.NewPriceBuilder(upper)
	rows := 0
	for symbol, bars := range multiBars {
		for _, bar := range bars {
			b.Set(bar.Timestamp, strings.ToUpper(symbol), bar.Close)
			rows++
		}
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w for %s..%s (%d tickers)",
			ErrDataUnavailable, start.Format("2006-01-02"), end.Format("2006-01-02"), len(tickers))
	}

	s.log.Debug("fetched daily closes", "tickers", len(tickers), "rows", rows)
	return b.Build()
}
