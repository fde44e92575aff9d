// Package series provides immutable date-indexed tables of per-asset values
// with explicit missing-value semantics. A cell is either a valid float64 or
// missing; accessors report the distinction, so callers never see NaN.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ---------------------------------------------------------------------------
// PriceSeries
// ---------------------------------------------------------------------------

// PriceSeries is an immutable table of per-asset closing prices keyed by
// (date, symbol). Dates are ascending and unique; the symbol set and its
// order are fixed at construction and preserved everywhere a symbol slice is
// handed out, because downstream ranking uses that order to break ties.
type PriceSeries struct {
	dates   []time.Time
	symbols []string
	cells   map[string][]float64 // symbol → per-date value, NaN = missing
}

// Len returns the number of dates in the series.
func (p *PriceSeries) Len() int { return len(p.dates) }

// Date returns the date at index i.
func (p *PriceSeries) Date(i int) time.Time { return p.dates[i] }

// Dates returns a copy of the date index.
func (p *PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(p.dates))
	copy(out, p.dates)
	return out
}

// Symbols returns a copy of the symbol universe in its original order.
func (p *PriceSeries) Symbols() []string {
	out := make([]string, len(p.symbols))
	copy(out, p.symbols)
	return out
}

// Price returns the price for symbol at date index i. The second return
// value is false when the cell is missing or the symbol is unknown.
func (p *PriceSeries) Price(i int, symbol string) (float64, bool) {
	col, ok := p.cells[symbol]
	if !ok || i < 0 || i >= len(col) {
		return 0, false
	}
	v := col[i]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// PriceBuilder accumulates (date, symbol, price) cells and produces an
// immutable PriceSeries. Dates are normalised to UTC midnight so that bars
// carrying intraday timestamps land in the same daily row.
type PriceBuilder struct {
	symbols []string
	known   map[string]bool
	rows    map[int64]map[string]float64 // unix-ms midnight → symbol → value
}

// NewPriceBuilder creates a builder over the given symbol universe. Cells
// set for symbols outside the universe are ignored.
func NewPriceBuilder(symbols []string) *PriceBuilder {
	known := make(map[string]bool, len(symbols))
	ordered := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if known[s] {
			continue
		}
		known[s] = true
		ordered = append(ordered, s)
	}
	return &PriceBuilder{
		symbols: ordered,
		known:   known,
		rows:    make(map[int64]map[string]float64),
	}
}

// Set records a price cell. Later calls for the same (date, symbol) win.
func (b *PriceBuilder) Set(date time.Time, symbol string, price float64) {
	if !b.known[symbol] {
		return
	}
	key := dayKey(date)
	row, ok := b.rows[key]
	if !ok {
		row = make(map[string]float64, len(b.symbols))
		b.rows[key] = row
	}
	row[symbol] = price
}

// Build produces the immutable series. It fails when no dates were recorded,
// since an empty date index has no meaning downstream.
func (b *PriceBuilder) Build() (*PriceSeries, error) {
	dates, cells, err := assemble(b.symbols, b.rows)
	if err != nil {
		return nil, err
	}
	return &PriceSeries{dates: dates, symbols: b.symbols, cells: cells}, nil
}

// ---------------------------------------------------------------------------
// SignalSeries
// ---------------------------------------------------------------------------

// SignalSeries is an immutable table of per-asset scalar scores aligned to a
// caller-supplied date index. Missing scores are first-class and excluded
// from ranking by consumers.
type SignalSeries struct {
	dates   []time.Time
	symbols []string
	cells   map[string][]float64
}

// Len returns the number of dates in the series.
func (s *SignalSeries) Len() int { return len(s.dates) }

// Date returns the date at index i.
func (s *SignalSeries) Date(i int) time.Time { return s.dates[i] }

// Score returns the score for symbol at date index i. The second return
// value is false when the cell is missing or the symbol is unknown.
func (s *SignalSeries) Score(i int, symbol string) (float64, bool) {
	col, ok := s.cells[symbol]
	if !ok || i < 0 || i >= len(col) {
		return 0, false
	}
	v := col[i]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// SignalBuilder accumulates scores against a fixed date index. Unlike
// PriceBuilder it never invents dates: the produced series is aligned
// one-to-one with the index given at construction.
type SignalBuilder struct {
	dates   []time.Time
	index   map[int64]int
	symbols []string
	known   map[string]bool
	cells   map[string][]float64
}

// NewSignalBuilder creates a builder aligned to the given date index and
// symbol universe.
func NewSignalBuilder(dates []time.Time, symbols []string) (*SignalBuilder, error) {
	if len(dates) == 0 {
		return nil, fmt.Errorf("signal builder: empty date index")
	}
	idx := make(map[int64]int, len(dates))
	norm := make([]time.Time, len(dates))
	for i, d := range dates {
		key := dayKey(d)
		norm[i] = time.UnixMilli(key).UTC()
		idx[key] = i
	}
	known := make(map[string]bool, len(symbols))
	ordered := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if known[s] {
			continue
		}
		known[s] = true
		ordered = append(ordered, s)
	}
	cells := make(map[string][]float64, len(ordered))
	for _, s := range ordered {
		col := make([]float64, len(norm))
		for i := range col {
			col[i] = math.NaN()
		}
		cells[s] = col
	}
	return &SignalBuilder{dates: norm, index: idx, symbols: ordered, known: known, cells: cells}, nil
}

// Set records a score for (date, symbol). Dates outside the index and
// symbols outside the universe are ignored.
func (b *SignalBuilder) Set(date time.Time, symbol string, score float64) {
	if !b.known[symbol] {
		return
	}
	i, ok := b.index[dayKey(date)]
	if !ok {
		return
	}
	b.cells[symbol][i] = score
}

// SetAt records a score at a date index position.
func (b *SignalBuilder) SetAt(i int, symbol string, score float64) {
	if !b.known[symbol] || i < 0 || i >= len(b.dates) {
		return
	}
	b.cells[symbol][i] = score
}

// Build produces the immutable series.
func (b *SignalBuilder) Build() *SignalSeries {
	return &SignalSeries{dates: b.dates, symbols: b.symbols, cells: b.cells}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// dayKey truncates a timestamp to UTC midnight expressed as unix ms.
func dayKey(t time.Time) int64 {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).UnixMilli()
}

// assemble turns sparse rows into a sorted dense column layout with NaN for
// absent cells.
func assemble(symbols []string, rows map[int64]map[string]float64) ([]time.Time, map[string][]float64, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("series: no dates recorded")
	}
	keys := make([]int64, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	dates := make([]time.Time, len(keys))
	for i, k := range keys {
		dates[i] = time.UnixMilli(k).UTC()
	}

	cells := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		col := make([]float64, len(keys))
		for i, k := range keys {
			if v, ok := rows[k][sym]; ok {
				col[i] = v
			} else {
				col[i] = math.NaN()
			}
		}
		cells[sym] = col
	}
	return dates, cells, nil
}
