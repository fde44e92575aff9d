// Package backtest implements the portfolio simulators: a daily top-K
// signal-ranked rebalancing strategy and a static buy-and-hold baseline.
// Both are pure transformations of immutable input series; each run produces
// a fresh value series and holdings trace and mutates nothing it was given.
package backtest

import "time"

// Strategy identifiers used in results, reports, and persisted runs.
const (
	StrategyRanked     = "ranked"
	StrategyStaticHold = "static-hold"
)

// ValuePoint is one day of a portfolio value series. Return is the daily
// simple return; it is 0 by convention on the first day.
type ValuePoint struct {
	Date   time.Time
	Value  float64
	Return float64
}

// Holding is one asset's realized weight within a holdings record.
type Holding struct {
	Symbol string
	Weight float64
}

// HoldingsRecord captures the assets held on a date together with each
// asset's fraction of portfolio value. Read-only once produced.
type HoldingsRecord struct {
	Date     time.Time
	Holdings []Holding
}

// Result is the output of a simulator run.
type Result struct {
	Strategy string
	Values   []ValuePoint
	Holdings []HoldingsRecord
}

// FinalValue returns the portfolio value on the last date, or 0 for an
// empty result.
func (r *Result) FinalValue() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	return r.Values[len(r.Values)-1].Value
}
