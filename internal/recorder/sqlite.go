package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"Farjax/internal/markethours"
	"Farjax/internal/model"

	"github.com/guregu/null/v6"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists raw bars and refresh runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bars (
			symbol     TEXT    NOT NULL,
			timestamp  INTEGER NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			volume     REAL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, timestamp)
		)`,

		`CREATE TABLE IF NOT EXISTS refresh_runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT,
			trigger_kind TEXT,
			duration_ms  INTEGER,
			candles      INTEGER,
			synthetic    INTEGER,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_ts ON refresh_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordBars upserts every real candle; placeholders are skipped.
func (r *SQLiteRecorder) RecordBars(symbol string, candles []model.Candle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO bars
		(symbol, timestamp, open, high, low, close, volume, updated_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, timestamp) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume, updated_at = excluded.updated_at`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i := range candles {
		c := &candles[i]
		if c.Synthetic {
			continue
		}
		if _, err := stmt.Exec(symbol, c.Timestamp.Unix(), c.Open, c.High, c.Low, c.Close, c.Volume, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert bar %s: %w", c.Timestamp.Format(time.RFC3339), err)
		}
	}
	return tx.Commit()
}

// LoadBars returns archived bars at or after since, oldest first, in the upstream row shape.
func (r *SQLiteRecorder) LoadBars(symbol string, since time.Time) ([]model.RawBar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, open, high, low, close, volume
		FROM bars WHERE symbol = ? AND timestamp >= ? ORDER BY timestamp`, symbol, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.RawBar
	for rows.Next() {
		var (
			ts             int64
			o, h, l, cl, v null.Float
		)
		if err := rows.Scan(&ts, &o, &h, &l, &cl, &v); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, model.RawBar{
			Name:   symbol,
			Date:   time.Unix(ts, 0).In(markethours.ET).Format(time.RFC3339),
			Open:   value(o),
			High:   value(h),
			Low:    value(l),
			Close:  value(cl),
			Volume: value(v),
		})
	}
	return bars, rows.Err()
}

func value(f null.Float) interface{} {
	if !f.Valid {
		return nil
	}
	return f.Float64
}

func (r *SQLiteRecorder) RecordRefresh(run *RefreshRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO refresh_runs
		(timestamp, symbol, trigger_kind, duration_ms, candles, synthetic, error)
		VALUES (?,?,?,?,?,?,?)`,
		run.StartedAt.Unix(), run.Symbol, run.Trigger, run.Duration.Milliseconds(),
		run.Candles, run.Synthetic, run.Err,
	)
	return err
}

// RecentRefreshes returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRefreshes(limit int) ([]RefreshRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, symbol, trigger_kind, duration_ms, candles, synthetic, error
		FROM refresh_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query refresh runs: %w", err)
	}
	defer rows.Close()

	var runs []RefreshRun
	for rows.Next() {
		var (
			ts, durMs int64
			run       RefreshRun
		)
		if err := rows.Scan(&ts, &run.Symbol, &run.Trigger, &durMs, &run.Candles, &run.Synthetic, &run.Err); err != nil {
			return nil, fmt.Errorf("scan refresh run: %w", err)
		}
		run.StartedAt = time.Unix(ts, 0)
		run.Duration = time.Duration(durMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
