// Package trace provides durable storage for conversion runs.
//
// A run records the pattern's content hash, the backend used, the
// structural fingerprint of the finished representation, and the observed
// command stream. Stored fingerprints make the determinism invariant
// checkable after the fact: re-converting the same pattern must reproduce
// the recorded fingerprint bit for bit.
//
// Uses SQLite with WAL mode; one writer, concurrent readers.
package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema.
const currentSchemaVersion = 1

// Store provides durable storage for conversion traces.
type Store struct {
	db *sql.DB
}

// Run is a recorded conversion.
type Run struct {
	ID          string
	PatternHash string
	Backend     string
	Fingerprint string
	Outputs     int
	Outcomes    int
	FinalSeq    int64
}

// Event is one observed command in a recorded run.
type Event struct {
	RunID   string
	Seq     int64
	Pos     int
	Command string
}

// Open creates or opens a SQLite trace database at the given path.
// Applies required pragmas and the schema automatically; idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent use.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WriteRun inserts a run record with its events in one transaction.
func (s *Store) WriteRun(ctx context.Context, run Run, events []Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, pattern_hash, backend, fingerprint, outputs, outcomes, final_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.PatternHash, run.Backend, run.Fingerprint, run.Outputs, run.Outcomes, run.FinalSeq)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for _, ev := range events {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (run_id, seq, pos, command)
			VALUES (?, ?, ?, ?)
		`, run.ID, ev.Seq, ev.Pos, ev.Command)
		if err != nil {
			return fmt.Errorf("write run event seq=%d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// ReadRun returns a run by ID.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, pattern_hash, backend, fingerprint, outputs, outcomes, final_seq
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.PatternHash, &run.Backend, &run.Fingerprint,
		&run.Outputs, &run.Outcomes, &run.FinalSeq)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	return &run, nil
}

// ReadEvents returns a run's events ordered by logical clock.
func (s *Store) ReadEvents(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, pos, command
		FROM events WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.RunID, &ev.Seq, &ev.Pos, &ev.Command); err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ListRuns returns all runs for a pattern hash, ordered by run ID.
// UUIDv7 run IDs sort by creation time.
func (s *Store) ListRuns(ctx context.Context, patternHash string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pattern_hash, backend, fingerprint, outputs, outcomes, final_seq
		FROM runs WHERE pattern_hash = ?
		ORDER BY id
	`, patternHash)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.PatternHash, &run.Backend, &run.Fingerprint,
			&run.Outputs, &run.Outcomes, &run.FinalSeq); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
