package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"ReplayLab/internal/model"
)

// SQLiteRecorder persists runs, decisions and trades to a SQLite database. Writers from
// concurrent symbol workers are serialised.
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

	// WAL lets reports read while a run is still writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			symbols    TEXT,
			config     TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS decision_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL,
			symbol    TEXT NOT NULL,
			bar       INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			price     REAL,
			reasons   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decision_run ON decision_events(run_id, symbol, bar)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			symbol       TEXT NOT NULL,
			entry_time   INTEGER NOT NULL,
			exit_time    INTEGER NOT NULL,
			entry_price  REAL,
			exit_price   REAL,
			qty          REAL,
			commission   REAL,
			pnl          REAL,
			return_pct   REAL,
			entry_reason TEXT,
			exit_reason  TEXT,
			exit_kind    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs (id, started_at, symbols, config) VALUES (?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), strings.Join(run.Symbols, ","), run.Config,
	)
	return err
}

func (r *SQLiteRecorder) RecordDecision(runID string, ev model.DecisionEvent) error {
	reasons, err := json.Marshal(ev.Reasons)
	if err != nil {
		return fmt.Errorf("encode reasons: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO decision_events
		(run_id, symbol, bar, timestamp, kind, price, reasons)
		VALUES (?,?,?,?,?,?,?)`,
		runID, ev.Symbol, ev.Bar, ev.Time.Unix(), string(ev.Kind), ev.Price, string(reasons),
	)
	return err
}

func (r *SQLiteRecorder) RecordTrade(runID string, t model.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(run_id, symbol, entry_time, exit_time, entry_price, exit_price, qty, commission,
		 pnl, return_pct, entry_reason, exit_reason, exit_kind)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, t.Symbol, t.EntryTime.Unix(), t.ExitTime.Unix(), t.EntryPrice, t.ExitPrice, t.Qty,
		t.Commission, t.PnL, t.ReturnPct, t.EntryReason, t.ExitReason, string(t.ExitKind),
	)
	return err
}

// Decisions reads back the decision log of one symbol in a run, in bar order.
func (r *SQLiteRecorder) Decisions(runID, symbol string) ([]model.DecisionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT bar, timestamp, kind, price, reasons FROM decision_events
		WHERE run_id = ? AND symbol = ? ORDER BY bar, id`, runID, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DecisionEvent
	for rows.Next() {
		var (
			ev      model.DecisionEvent
			ts      int64
			kind    string
			reasons string
		)
		if err := rows.Scan(&ev.Bar, &ts, &kind, &ev.Price, &reasons); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(reasons), &ev.Reasons); err != nil {
			return nil, fmt.Errorf("decode reasons: %w", err)
		}
		ev.Symbol = symbol
		ev.Kind = model.DecisionKind(kind)
		ev.Time = time.Unix(ts, 0).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
