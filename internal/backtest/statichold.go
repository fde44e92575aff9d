package backtest

import (
	"fmt"

	"alphabench/internal/series"
)

// StaticHold simulates a buy-and-hold baseline: initialCapital is split
// equally across every asset in the universe on the first date, converted
// into share counts at first-date prices, and the fixed holdings are
// revalued at every subsequent date.
//
// Policies:
//
//   - An asset with a missing (or zero) first-date price gets zero shares;
//     its slice of capital is simply not invested.
//   - On each date, assets with a missing price are skipped entirely: their
//     contribution is dropped for that day, not carried at the last known
//     price.
//   - If a non-initial day values to zero (for example because every price
//     is missing), the previous day's value carries forward so that missing
//     data alone never zeroes the portfolio.
//   - Reported weights are share value over total value; zero-weight assets
//     are omitted from the holdings record but keep their share counts.
func StaticHold(prices *series.PriceSeries, initialCapital float64) (*Result, error) {
	if initialCapital <= 0 {
		return nil, fmt.Errorf("static hold: initial capital must be positive, got %v", initialCapital)
	}

	n := prices.Len()
	symbols := prices.Symbols()

	// Convert the equal split into share counts at d0 prices.
	perAsset := initialCapital / float64(len(symbols))
	shares := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		p0, ok := prices.Price(0, sym)
		if !ok || p0 <= 0 {
			shares[sym] = 0
			continue
		}
		shares[sym] = perAsset / p0
	}

	res := &Result{
		Strategy: StrategyStaticHold,
		Values:   make([]ValuePoint, 0, n),
		Holdings: make([]HoldingsRecord, 0, n),
	}

	prev := 0.0
	for t := 0; t < n; t++ {
		value := 0.0
		for _, sym := range symbols {
			p, ok := prices.Price(t, sym)
			if !ok {
				continue
			}
			value += shares[sym] * p
		}
		if value == 0 && t > 0 {
			value = prev
		}

		ret := 0.0
		if t > 0 && prev > 0 {
			ret = (value - prev) / prev
		}

		rec := HoldingsRecord{Date: prices.Date(t)}
		if value > 0 {
			for _, sym := range symbols {
				p, ok := prices.Price(t, sym)
				if !ok {
					continue
				}
				if w := shares[sym] * p / value; w > 0 {
					rec.Holdings = append(rec.Holdings, Holding{Symbol: sym, Weight: w})
				}
			}
		}

		res.Values = append(res.Values, ValuePoint{Date: prices.Date(t), Value: value, Return: ret})
		res.Holdings = append(res.Holdings, rec)
		prev = value
	}
	return res, nil
}
