package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// Compile-time interface check.
var _ BarStore = (*ParquetStore)(nil)

// ParquetStore implements BarStore using Parquet files on disk, one file per
// symbol and year.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// barRecord is the Parquet schema for daily close data.
type barRecord struct {
	Symbol string  `parquet:"symbol"`
	Date   int64   `parquet:"date,timestamp(millisecond)"` // Unix ms, UTC midnight
	Close  float64 `parquet:"close"`
}

// WriteBars writes close bars to Parquet files organized by symbol and year.
// Each symbol+year combination produces a separate file at:
//
//	<DataDir>/daily/<SYMBOL>/<YYYY>.parquet
//
// Existing records for the same dates are replaced by the incoming ones.
func (s *ParquetStore) WriteBars(_ context.Context, bars []CloseBar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		symbol string
		year   int
	}
	groups := make(map[key][]barRecord)
	for _, b := range bars {
		d := b.Date.UTC()
		k := key{symbol: strings.ToUpper(b.Symbol), year: d.Year()}
		groups[k] = append(groups[k], barRecord{
			Symbol: strings.ToUpper(b.Symbol),
			Date:   time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).UnixMilli(),
			Close:  b.Close,
		})
	}

	for k, records := range groups {
		path := s.barPath(k.symbol, k.year)

		// Read existing records to merge.
		existing, _ := readParquetFile[barRecord](path)
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing bars for %s/%d: %w", k.symbol, k.year, err)
		}
	}
	return nil
}

// ReadBars reads close bars from Parquet files for the given symbol and
// date range.
func (s *ParquetStore) ReadBars(_ context.Context, symbol string, start, end time.Time) ([]CloseBar, error) {
	var bars []CloseBar
	for year := start.Year(); year <= end.Year(); year++ {
		path := s.barPath(strings.ToUpper(symbol), year)

		records, err := readParquetFile[barRecord](path)
		if err != nil {
			// File doesn't exist for this year, skip.
			continue
		}

		for _, r := range records {
			d := time.UnixMilli(r.Date).UTC()
			if (d.Equal(start) || d.After(start)) && (d.Equal(end) || d.Before(end)) {
				bars = append(bars, CloseBar{Symbol: r.Symbol, Date: d, Close: r.Close})
			}
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// ListSymbols lists all symbols that have cached bar data.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, "daily")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// barPath returns the filesystem path for a bar Parquet file.
// Layout: <dataDir>/daily/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) barPath(symbol string, year int) string {
	return filepath.Join(s.DataDir, "daily", strings.ToUpper(symbol), fmt.Sprintf("%d.parquet", year))
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeBarRecords deduplicates bar records by (symbol, date), preferring
// new records over existing ones. Results are sorted by date.
func mergeBarRecords(existing, incoming []barRecord) []barRecord {
	type key struct {
		symbol string
		date   int64
	}
	seen := make(map[key]barRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Date}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Date}] = r
	}

	merged := make([]barRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})
	return merged
}
