package signalsource

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"alphabench/internal/news"
	"alphabench/internal/series"
	"alphabench/internal/util"
)

// Compile-time interface check.
var _ Source = (*SentimentSource)(nil)

// SentimentSource scores each (ticker, date) by the average lexicon
// sentiment of that day's headlines, in [-1, 1]. Days without articles have
// missing scores, which the simulator excludes from ranking.
type SentimentSource struct {
	client  *marketdata.Client // nil disables the Alpaca news source
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewSentimentSource creates a SentimentSource. Empty credentials disable
// the Alpaca news API, leaving Google News RSS as the only source.
func NewSentimentSource(apiKey, apiSecret string, perMinute int) *SentimentSource {
	var client *marketdata.Client
	if apiKey != "" && apiSecret != "" {
		client = marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		})
	}
	if perMinute <= 0 {
		perMinute = 60
	}
	return &SentimentSource{
		client:  client,
		limiter: util.NewRateLimiter(perMinute),
		log:     slog.Default().With("source", "sentiment"),
	}
}

// ComputeSignals fetches headlines per ticker over the date range and
// aggregates them into daily sentiment scores. Tickers whose fetch fails are
// left without scores rather than failing the whole run.
func (s *SentimentSource) ComputeSignals(ctx context.Context, tickers []string, dates []time.Time) (*series.SignalSeries, error) {
	b, err := series.NewSignalBuilder(dates, tickers)
	if err != nil {
		return nil, err
	}

	start := dates[0]
	end := dates[len(dates)-1].AddDate(0, 0, 1)

	for _, sym := range tickers {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		articles, err := news.FetchAll(s.client, sym, start, end)
		if err != nil {
			s.log.Warn("fetching news", "symbol", sym, "error", err)
			continue
		}

		// Bucket headline scores by day, then average.
		sums := make(map[int64]float64)
		counts := make(map[int64]int)
		for _, a := range articles {
			day := a.Time.UTC().Truncate(24 * time.Hour)
			key := day.UnixMilli()
			sums[key] += ScoreHeadline(a.Headline)
			counts[key]++
		}
		for key, n := range counts {
			b.Set(time.UnixMilli(key).UTC(), sym, sums[key]/float64(n))
		}
		s.log.Debug("scored articles", "symbol", sym, "articles", len(articles), "days", len(counts))
	}
	return b.Build(), nil
}

// positive and negative are small finance-flavored word lists. Scoring is a
// word-count polarity ratio; crude, but it only has to order assets.
var positive = map[string]bool{
	"beat": true, "beats": true, "bullish": true, "buy": true, "gain": true,
	"gains": true, "growth": true, "jump": true, "jumps": true, "outperform": true,
	"profit": true, "rally": true, "record": true, "rise": true, "rises": true,
	"soar": true, "soars": true, "strong": true, "surge": true, "surges": true,
	"up": true, "upgrade": true, "upgraded": true, "win": true, "wins": true,
}

var negative = map[string]bool{
	"bearish": true, "crash": true, "cut": true, "cuts": true, "decline": true,
	"declines": true, "down": true, "downgrade": true, "downgraded": true,
	"drop": true, "drops": true, "fall": true, "falls": true, "fears": true,
	"lawsuit": true, "loss": true, "losses": true, "miss": true, "misses": true,
	"plunge": true, "plunges": true, "recall": true, "sell": true, "slump": true,
	"tumble": true, "tumbles": true, "underperform": true, "weak": true,
}

// ScoreHeadline scores a single headline in [-1, 1]: (pos - neg) over total
// matched words, 0 when no lexicon word appears.
func ScoreHeadline(headline string) float64 {
	pos, neg := 0, 0
	for _, w := range strings.Fields(strings.ToLower(headline)) {
		w = strings.Trim(w, ".,;:!?'\"()[]")
		if positive[w] {
			pos++
		} else if negative[w] {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}
