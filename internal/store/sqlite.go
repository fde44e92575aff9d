package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const runsSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	strategy          TEXT NOT NULL,
	tickers           TEXT NOT NULL,
	start_date        TEXT NOT NULL,
	end_date          TEXT NOT NULL,
	initial_capital   REAL NOT NULL,
	top_k             INTEGER NOT NULL,
	final_value       REAL NOT NULL,
	total_return      REAL NOT NULL,
	annualized_return REAL NOT NULL,
	sharpe_ratio      REAL NOT NULL,
	max_drawdown      REAL NOT NULL,
	volatility        REAL NOT NULL,
	created_at        TEXT NOT NULL
);`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, ensures the
// schema exists, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(runsSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run and fills in its ID and CreatedAt.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	run.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			strategy, tickers, start_date, end_date, initial_capital, top_k,
			final_value, total_return, annualized_return, sharpe_ratio,
			max_drawdown, volatility, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Strategy,
		strings.Join(run.Tickers, ","),
		run.StartDate,
		run.EndDate,
		run.InitialCapital,
		run.TopK,
		run.FinalValue,
		run.TotalReturn,
		run.AnnualizedReturn,
		run.SharpeRatio,
		run.MaxDrawdown,
		run.Volatility,
		run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	run.ID, err = res.LastInsertId()
	return err
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy, tickers, start_date, end_date, initial_capital,
		       top_k, final_value, total_return, annualized_return,
		       sharpe_ratio, max_drawdown, volatility, created_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var tickers, createdAt string
		if err := rows.Scan(
			&r.ID, &r.Strategy, &tickers, &r.StartDate, &r.EndDate,
			&r.InitialCapital, &r.TopK, &r.FinalValue, &r.TotalReturn,
			&r.AnnualizedReturn, &r.SharpeRatio, &r.MaxDrawdown,
			&r.Volatility, &createdAt,
		); err != nil {
			return nil, err
		}
		if tickers != "" {
			r.Tickers = strings.Split(tickers, ",")
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
