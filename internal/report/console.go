// Package report renders backtest results for humans: a per-step console
// report and a PNG chart comparing strategy value curves. Sinks are pure
// observers; the simulators never depend on them.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"alphabench/internal/backtest"
	"alphabench/internal/metrics"
)

// Sink receives per-step portfolio lines and final metrics for a strategy.
type Sink interface {
	Step(date time.Time, value float64, holdings []backtest.Holding)
	Metrics(strategy string, rec metrics.Record)
}

// Compile-time interface check.
var _ Sink = (*ConsoleSink)(nil)

// ConsoleSink writes a plain-text report to an io.Writer.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a ConsoleSink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Step prints one dated portfolio line with its holdings.
func (s *ConsoleSink) Step(date time.Time, value float64, holdings []backtest.Holding) {
	fmt.Fprintf(s.w, "%s  value=%12.2f  %s\n", date.Format("2006-01-02"), value, FormatHoldings(holdings))
}

// Metrics prints the final metrics table for a strategy.
func (s *ConsoleSink) Metrics(strategy string, rec metrics.Record) {
	fmt.Fprintf(s.w, "\n=== %s ===\n", strategy)
	fmt.Fprintf(s.w, "  total return:      %s\n", FormatPct(rec.TotalReturn))
	fmt.Fprintf(s.w, "  annualized return: %s\n", FormatPct(rec.AnnualizedReturn))
	fmt.Fprintf(s.w, "  sharpe ratio:      %.2f\n", rec.SharpeRatio)
	fmt.Fprintf(s.w, "  max drawdown:      %s\n", FormatPct(rec.MaxDrawdown))
	fmt.Fprintf(s.w, "  volatility:        %s\n", FormatPct(rec.Volatility))
}

// Report replays a full result through the sink: one Step line per holdings
// record, then the metrics table.
func Report(sink Sink, res *backtest.Result, rec metrics.Record) {
	byDate := make(map[int64][]backtest.Holding, len(res.Holdings))
	for _, h := range res.Holdings {
		byDate[h.Date.UnixMilli()] = h.Holdings
	}
	for _, v := range res.Values {
		sink.Step(v.Date, v.Value, byDate[v.Date.UnixMilli()])
	}
	sink.Metrics(res.Strategy, rec)
}

// FormatHoldings renders holdings as "SYM:12.3% SYM:87.7%", omitting
// zero-weight entries. An empty set renders as "-".
func FormatHoldings(holdings []backtest.Holding) string {
	var b strings.Builder
	for _, h := range holdings {
		if h.Weight == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%.1f%%", h.Symbol, h.Weight*100)
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// FormatPct formats a fraction as a signed percentage.
func FormatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}
