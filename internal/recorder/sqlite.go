package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"BankrollSentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the play ledger to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// The CLI and the bot may write while a report reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
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
		`CREATE TABLE IF NOT EXISTS sessions (
			id               TEXT PRIMARY KEY,
			ended_at         INTEGER NOT NULL,
			start_balance    REAL,
			end_balance      REAL,
			profit           REAL,
			duration_seconds INTEGER,
			rounds           INTEGER,
			status           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended ON sessions(ended_at)`,

		`CREATE TABLE IF NOT EXISTS rounds (
			id          TEXT PRIMARY KEY,
			session_id  TEXT NOT NULL REFERENCES sessions(id),
			timestamp   INTEGER NOT NULL,
			bet_amount  REAL,
			multiplier  REAL,
			win         INTEGER,
			profit      REAL,
			strategy    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_session ON rounds(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_ts ON rounds(timestamp)`,

		`CREATE TABLE IF NOT EXISTS adjustments (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			kind          TEXT,
			amount        REAL,
			balance_after REAL,
			note          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_adjustments_ts ON adjustments(timestamp)`,

		`CREATE TABLE IF NOT EXISTS daily_summaries (
			day           TEXT PRIMARY KEY,
			recorded_at   INTEGER NOT NULL,
			sessions      INTEGER,
			rounds        INTEGER,
			profit        REAL,
			start_capital REAL,
			end_capital   REAL,
			lock_status   TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS lock_events (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			day          TEXT,
			status       TEXT,
			daily_profit REAL,
			threshold    REAL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_lock_day ON lock_events(day, status)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSession stores a session with its rounds. Recording the same session
// twice is a no-op.
func (r *SQLiteRecorder) RecordSession(s *model.DailySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT OR IGNORE INTO sessions
		(id, ended_at, start_balance, end_balance, profit, duration_seconds, rounds, status)
		VALUES (?,?,?,?,?,?,?,?)`,
		s.ID, s.Date.UnixMilli(), s.StartBalance, s.EndBalance, s.Profit,
		s.DurationSeconds, s.Rounds, string(s.Status),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO rounds
		(id, session_id, timestamp, bet_amount, multiplier, win, profit, strategy)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, rd := range s.RoundsDetail {
		if _, err := stmt.Exec(rd.ID, s.ID, rd.Timestamp, rd.BetAmount, rd.Multiplier,
			rd.Win, rd.Profit, string(rd.Strategy)); err != nil {
			return fmt.Errorf("insert round %s: %w", rd.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordAdjustment(adj *model.CapitalAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR IGNORE INTO adjustments
		(id, timestamp, kind, amount, balance_after, note)
		VALUES (?,?,?,?,?,?)`,
		adj.ID, adj.Timestamp, string(adj.Kind), adj.Amount, adj.BalanceAfter, adj.Note,
	)
	return err
}

// RecordDailySummary stores the snapshot of a day, replacing an earlier one
// for the same day.
func (r *SQLiteRecorder) RecordDailySummary(sum *DailySummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO daily_summaries
		(day, recorded_at, sessions, rounds, profit, start_capital, end_capital, lock_status)
		VALUES (?,?,?,?,?,?,?,?)`,
		sum.Day, time.Now().Unix(), sum.Sessions, sum.Rounds, sum.Profit,
		sum.StartCapital, sum.EndCapital, string(sum.LockStatus),
	)
	return err
}

// RecordLockEvent stores the first lock of a day. Later reports of the same
// lock are ignored.
func (r *SQLiteRecorder) RecordLockEvent(evt *LockEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR IGNORE INTO lock_events
		(timestamp, day, status, daily_profit, threshold)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Day, string(evt.Status), evt.DailyProfit, evt.Threshold,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
