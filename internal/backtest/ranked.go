package backtest

import (
	"fmt"
	"sort"

	"alphabench/internal/series"
)

// rankedState is the portfolio state threaded through the daily fold. It is
// owned by the simulator and never escapes.
type rankedState struct {
	value float64
}

// candidate is one asset eligible for selection on a given day.
type candidate struct {
	symbol string
	score  float64
}

// RankedRebalance simulates a strategy that, on every transition from day t
// to day t+1, ranks the universe by day-t signal score and splits the whole
// portfolio equally across the top-K assets that have a valid day-t price.
//
// For prices over dates d0..dn it returns a value series of length n+1
// (value at every date, starting at initialCapital on d0) and one holdings
// record per non-degenerate transition. The signal series is assumed to be
// aligned to the same date index.
//
// Rules, in order, for each transition:
//
//   - Ranking is a stable descending sort on score; assets with equal scores
//     keep the universe's original order, so selection is deterministic.
//   - Assets with a missing day-t score are excluded from ranking; assets
//     with a missing day-t price cannot be allocated capital and are dropped
//     from the selection. Fewer than K survivors still get the full value
//     split equally among them.
//   - If no candidate survives, the day is degenerate: value carries forward
//     unchanged, return is 0, and no holdings record is emitted.
//   - A held asset with a missing day-t+1 price contributes zero return for
//     the step, neither gain nor loss.
//   - Reported weights are allocation / post-step value. They sum to 1 only
//     when every held asset had a valid next-day price.
func RankedRebalance(prices *series.PriceSeries, signals *series.SignalSeries, initialCapital float64, topK int) (*Result, error) {
	if initialCapital <= 0 {
		return nil, fmt.Errorf("ranked rebalance: initial capital must be positive, got %v", initialCapital)
	}
	if topK < 1 {
		return nil, fmt.Errorf("ranked rebalance: selection size must be at least 1, got %d", topK)
	}

	n := prices.Len()
	symbols := prices.Symbols()

	res := &Result{
		Strategy: StrategyRanked,
		Values:   make([]ValuePoint, 0, n),
	}
	res.Values = append(res.Values, ValuePoint{Date: prices.Date(0), Value: initialCapital})

	st := rankedState{value: initialCapital}
	for t := 0; t < n-1; t++ {
		newValue, ret, rec := rankedStep(&st, prices, signals, symbols, t, topK)
		st.value = newValue
		res.Values = append(res.Values, ValuePoint{
			Date:   prices.Date(t + 1),
			Value:  newValue,
			Return: ret,
		})
		if rec != nil {
			res.Holdings = append(res.Holdings, *rec)
		}
	}
	return res, nil
}

// rankedStep advances the portfolio from day t to day t+1. It returns the
// new value, the step return, and the holdings record for the step, or a nil
// record on a degenerate day.
func rankedStep(st *rankedState, prices *series.PriceSeries, signals *series.SignalSeries, symbols []string, t, topK int) (float64, float64, *HoldingsRecord) {
	held := selectTopK(prices, signals, symbols, t, topK)
	if len(held) == 0 {
		return st.value, 0, nil
	}

	alloc := st.value / float64(len(held))

	var portRet float64
	for _, c := range held {
		pt, _ := prices.Price(t, c.symbol)
		pt1, ok := prices.Price(t+1, c.symbol)
		if !ok {
			continue // missing next-day price: zero contribution
		}
		portRet += (pt1 - pt) / pt
	}
	portRet /= float64(len(held))

	newValue := st.value * (1 + portRet)

	rec := &HoldingsRecord{
		Date:     prices.Date(t),
		Holdings: make([]Holding, 0, len(held)),
	}
	for _, c := range held {
		w := 0.0
		if newValue > 0 {
			w = alloc / newValue
		}
		rec.Holdings = append(rec.Holdings, Holding{Symbol: c.symbol, Weight: w})
	}
	return newValue, portRet, rec
}

// selectTopK ranks the universe by day-t score and returns the top K
// candidates that also have a valid day-t price.
func selectTopK(prices *series.PriceSeries, signals *series.SignalSeries, symbols []string, t, topK int) []candidate {
	ranked := make([]candidate, 0, len(symbols))
	for _, sym := range symbols {
		score, ok := signals.Score(t, sym)
		if !ok {
			continue
		}
		ranked = append(ranked, candidate{symbol: sym, score: score})
	}
	// Stable sort: equal scores keep original universe order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	// A missing or zero day-t price means capital cannot be allocated to the
	// asset; a zero price would also make the period return undefined.
	held := ranked[:0]
	for _, c := range ranked {
		if p, ok := prices.Price(t, c.symbol); ok && p > 0 {
			held = append(held, c)
		}
	}
	return held
}
