package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/contre95/dispatch/src/features/dispatching"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteHistory is a SQLite implementation of the dispatching.Recorder interface.
type SqliteHistory struct {
	db *sql.DB
}

// NewSqliteHistory opens (or creates) the history journal at path.
func NewSqliteHistory(path string) (*SqliteHistory, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// A single connection serializes writes from concurrent workers.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteHistory{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			format TEXT NOT NULL,
			mode TEXT NOT NULL,
			dry_run BOOLEAN DEFAULT FALSE,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			seen INTEGER DEFAULT 0,
			transferred INTEGER DEFAULT 0,
			planned INTEGER DEFAULT 0,
			skipped INTEGER DEFAULT 0,
			failed INTEGER DEFAULT 0,
			warnings INTEGER DEFAULT 0,
			bytes INTEGER DEFAULT 0,
			interrupted BOOLEAN DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			source TEXT NOT NULL,
			destination TEXT,
			outcome TEXT NOT NULL,
			stage TEXT NOT NULL,
			reason TEXT,
			error TEXT,
			bytes INTEGER DEFAULT 0,
			duration_ms INTEGER DEFAULT 0,
			recorded_at TEXT NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id);
		CREATE INDEX IF NOT EXISTS idx_results_source ON results(source);
	`)
	return err
}

// Close closes the underlying database.
func (h *SqliteHistory) Close() error {
	return h.db.Close()
}

// StartRun inserts a new run row.
func (h *SqliteHistory) StartRun(ctx context.Context, run dispatching.Run) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, destination, format, mode, dry_run, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Destination, run.Format, run.Mode, run.DryRun, run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

// Record appends one dispatch result to the journal.
func (h *SqliteHistory) Record(ctx context.Context, runID string, r dispatching.Result) error {
	var errText sql.NullString
	if r.Err != nil {
		errText = sql.NullString{String: r.Err.Error(), Valid: true}
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO results (run_id, source, destination, outcome, stage, reason, error, bytes, duration_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, r.Source, r.Destination, r.Outcome.String(), string(r.Stage), r.Reason, errText,
		r.Bytes, r.Duration.Milliseconds(), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record result for %s: %w", r.Source, err)
	}
	return nil
}

// FinishRun stores the final totals of a run.
func (h *SqliteHistory) FinishRun(ctx context.Context, runID string, s dispatching.Summary) error {
	res, err := h.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, seen = ?, transferred = ?, planned = ?, skipped = ?, failed = ?, warnings = ?, bytes = ?, interrupted = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), s.Seen, s.Transferred, s.Planned, s.Skipped, s.Failed, s.Warnings, s.Bytes, s.Interrupted, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// HistoryEntry is one journalled result.
type HistoryEntry struct {
	Source      string
	Destination string
	Outcome     string
	Reason      string
	Error       string
}

// Results lists the journalled results of a run in insertion order.
func (h *SqliteHistory) Results(ctx context.Context, runID string) ([]HistoryEntry, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT source, COALESCE(destination, ''), outcome, COALESCE(reason, ''), COALESCE(error, '')
		 FROM results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Source, &e.Destination, &e.Outcome, &e.Reason, &e.Error); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RunEntry is one journalled run with its totals.
type RunEntry struct {
	ID          string
	Source      string
	Destination string
	Mode        string
	DryRun      bool
	StartedAt   string
	Transferred int
	Skipped     int
	Failed      int
}

// Runs lists the most recent runs, newest first.
func (h *SqliteHistory) Runs(ctx context.Context, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, source, destination, mode, dry_run, started_at, transferred, skipped, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunEntry
	for rows.Next() {
		var r RunEntry
		if err := rows.Scan(&r.ID, &r.Source, &r.Destination, &r.Mode, &r.DryRun, &r.StartedAt, &r.Transferred, &r.Skipped, &r.Failed); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
