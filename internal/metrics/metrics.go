// Package metrics derives annualized risk/return statistics from a
// portfolio value series. Compute is a pure function: no I/O, no state.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"alphabench/internal/backtest"
)

// TradingDays is the annualization factor: trading days per year.
const TradingDays = 252

// Record is the fixed set of performance statistics for one strategy run.
type Record struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	Volatility       float64 `json:"volatility"`
}

// Compute derives a Record from a value series and a daily risk-free rate.
//
// Conventions, matching the simulators that produce the input:
//
//   - The return series includes the defined-zero first entry, and its full
//     length is the observation count used for annualization.
//   - All standard deviations are sample deviations (n-1 divisor).
//   - Sharpe ratio and volatility are 0 when the deviation is 0 or there are
//     fewer than two observations; they never propagate NaN.
//   - Max drawdown is measured against the running peak and is always <= 0.
//
// A series that is empty or starts at a non-positive value is degenerate and
// yields the zero Record.
func Compute(values []backtest.ValuePoint, riskFreeDaily float64) Record {
	if len(values) == 0 || values[0].Value <= 0 {
		return Record{}
	}

	initial := values[0].Value
	final := values[len(values)-1].Value

	returns := make([]float64, len(values))
	excess := make([]float64, len(values))
	for i, v := range values {
		returns[i] = v.Return
		excess[i] = v.Return - riskFreeDaily
	}

	rec := Record{}
	rec.TotalReturn = (final - initial) / initial
	rec.AnnualizedReturn = math.Pow(1+rec.TotalReturn, TradingDays/float64(len(returns))) - 1
	rec.SharpeRatio = sharpe(excess)
	rec.MaxDrawdown = maxDrawdown(values)
	rec.Volatility = annualizedStdDev(returns)
	return rec
}

// sharpe computes the annualized Sharpe ratio of a series of daily excess
// returns, defined as 0 when the deviation is 0.
func sharpe(excess []float64) float64 {
	if len(excess) < 2 {
		return 0
	}
	sd := stat.StdDev(excess, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return stat.Mean(excess, nil) / sd * math.Sqrt(TradingDays)
}

// annualizedStdDev computes sample standard deviation scaled by sqrt(252),
// or 0 when undefined.
func annualizedStdDev(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd := stat.StdDev(returns, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd * math.Sqrt(TradingDays)
}

// maxDrawdown returns the largest decline from a running peak, as a
// non-positive fraction. It is 0 only for a non-decreasing series.
func maxDrawdown(values []backtest.ValuePoint) float64 {
	peak := values[0].Value
	dd := 0.0
	for _, v := range values {
		if v.Value > peak {
			peak = v.Value
		}
		if peak > 0 {
			if d := (v.Value - peak) / peak; d < dd {
				dd = d
			}
		}
	}
	return dd
}
