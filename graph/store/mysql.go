package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a TraceStore backed by MySQL, for deployments where
// multiple processes write traces into a shared database.
//
// The DSN must include parseTime=true so timestamps scan into
// time.Time:
//
//	st, err := store.NewMySQLStore("user:pass@tcp(localhost:3306)/stategraph?parseTime=true")
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore connects to MySQL using the given DSN, verifies the
// connection and prepares the schema.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	if err := migrateMySQL(db); err != nil {
		db.Close()
		return nil, err
	}
	return &MySQLStore{db: db}, nil
}

func migrateMySQL(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS run_steps (
		run_id     VARCHAR(255) NOT NULL,
		step       INT          NOT NULL,
		node_id    VARCHAR(255) NOT NULL,
		state      JSON         NOT NULL,
		created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (run_id, step),
		INDEX idx_run_steps_run (run_id)
	)`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate mysql schema: %w", err)
	}
	return nil
}

// AppendStep implements TraceStore.
func (s *MySQLStore) AppendStep(ctx context.Context, runID string, step int, nodeID string, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state for run %s step %d: %w", runID, step, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_steps (run_id, step, node_id, state) VALUES (?, ?, ?, ?)`,
		runID, step, nodeID, string(data))
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

// LoadTrace implements TraceStore.
func (s *MySQLStore) LoadTrace(ctx context.Context, runID string) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, node_id, state, created_at FROM run_steps WHERE run_id = ? ORDER BY step`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}
	defer rows.Close()

	var records []StepRecord
	for rows.Next() {
		record, err := scanMySQLStep(rows)
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
func (s *MySQLStore) LatestStep(ctx context.Context, runID string) (StepRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT step, node_id, state, created_at FROM run_steps WHERE run_id = ? ORDER BY step DESC LIMIT 1`,
		runID)

	record, err := scanMySQLStep(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StepRecord{}, ErrNotFound
	}
	return record, err
}

// Close closes the underlying connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

func scanMySQLStep(row rowScanner) (StepRecord, error) {
	var (
		record StepRecord
		state  []byte
	)
	if err := row.Scan(&record.Step, &record.NodeID, &state, &record.At); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StepRecord{}, sql.ErrNoRows
		}
		return StepRecord{}, fmt.Errorf("scan step: %w", err)
	}
	record.State = json.RawMessage(state)
	return record, nil
}
