package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a TraceStore backed by a single-file SQLite database.
// Zero-setup persistence for development, single-process deployments and
// prototypes; migrate to MySQLStore when several processes need the
// traces.
//
// The store auto-migrates its schema on open and enables WAL mode so
// trace readers do not block the writing run.
//
//	st, err := store.NewSQLiteStore("./traces.db")
//	if err != nil { ... }
//	defer st.Close()
//
// Use ":memory:" as the path for an in-memory database in tests.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at path and
// prepares the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// under concurrent runs.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func migrateSQLite(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS run_steps (
		run_id     TEXT    NOT NULL,
		step       INTEGER NOT NULL,
		node_id    TEXT    NOT NULL,
		state      TEXT    NOT NULL,
		created_at TEXT    NOT NULL,
		PRIMARY KEY (run_id, step)
	);
	CREATE INDEX IF NOT EXISTS idx_run_steps_run ON run_steps(run_id);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return nil
}

// AppendStep implements TraceStore.
func (s *SQLiteStore) AppendStep(ctx context.Context, runID string, step int, nodeID string, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state for run %s step %d: %w", runID, step, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_steps (run_id, step, node_id, state, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, step, nodeID, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

// LoadTrace implements TraceStore.
func (s *SQLiteStore) LoadTrace(ctx context.Context, runID string) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, node_id, state, created_at FROM run_steps WHERE run_id = ? ORDER BY step`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}
	defer rows.Close()

	var records []StepRecord
	for rows.Next() {
		record, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// LatestStep implements TraceStore.
func (s *SQLiteStore) LatestStep(ctx context.Context, runID string) (StepRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT step, node_id, state, created_at FROM run_steps WHERE run_id = ? ORDER BY step DESC LIMIT 1`,
		runID)

	record, err := scanStep(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StepRecord{}, ErrNotFound
	}
	return record, err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStep(row rowScanner) (StepRecord, error) {
	var (
		record    StepRecord
		state     string
		createdAt string
	)
	if err := row.Scan(&record.Step, &record.NodeID, &state, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StepRecord{}, sql.ErrNoRows
		}
		return StepRecord{}, fmt.Errorf("scan step: %w", err)
	}
	record.State = json.RawMessage(state)

	at, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return StepRecord{}, fmt.Errorf("parse step timestamp: %w", err)
	}
	record.At = at
	return record, nil
}
