// Package baselinestore persists schedule baselines in a local SQLite
// database, so snapshots survive independently of the project file.
// Baselines are keyed by project name and baseline name.
package baselinestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/planiflow/internal/schedule"
)

// dateLayout is the storage format of snapshot dates.
const dateLayout = "2006-01-02"

// schema contains the DDL executed on every open. Using IF NOT EXISTS makes
// it safe to run repeatedly.
const schema = `
CREATE TABLE IF NOT EXISTS baselines (
    project    TEXT NOT NULL,
    name       TEXT NOT NULL,
    id         TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL,
    PRIMARY KEY (project, name)
);

CREATE TABLE IF NOT EXISTS snapshots (
    baseline_id      TEXT NOT NULL,
    task_id          INTEGER NOT NULL,
    name             TEXT NOT NULL,
    start_date       TEXT NOT NULL,
    end_date         TEXT NOT NULL,
    duration         INTEGER NOT NULL,
    percent_complete INTEGER NOT NULL,
    wbs              TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (baseline_id, task_id)
);
`

// Entry describes a stored baseline without its snapshots.
type Entry struct {
	ID        string
	Name      string
	Created   time.Time
	TaskCount int
}

// Store is a SQLite-backed baseline store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, enables WAL mode and a busy
// timeout, and creates the schema if it does not exist.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("baselinestore: open database: %w", err)
	}

	// SQLite has a single writer; one connection keeps the pragmas below in
	// effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("baselinestore: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("baselinestore: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("baselinestore: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores b under project, replacing any baseline of the same name.
func (s *Store) Save(ctx context.Context, project string, b schedule.Baseline) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("baselinestore: begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := deleteTx(ctx, tx, project, b.Name); err != nil {
		return err
	}

	const insertBaseline = `
		INSERT INTO baselines (project, name, id, created_at)
		VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertBaseline, project, b.Name, b.ID, b.Created.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("baselinestore: insert baseline %q: %w", b.Name, err)
	}

	const insertSnapshot = `
		INSERT INTO snapshots (baseline_id, task_id, name, start_date, end_date, duration, percent_complete, wbs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, insertSnapshot)
	if err != nil {
		return fmt.Errorf("baselinestore: prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, snap := range b.Tasks {
		if _, err := stmt.ExecContext(ctx, b.ID, snap.TaskID, snap.Name,
			snap.Start.Format(dateLayout), snap.End.Format(dateLayout),
			snap.Duration, snap.PercentComplete, snap.WBS); err != nil {
			return fmt.Errorf("baselinestore: insert snapshot %d: %w", snap.TaskID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("baselinestore: commit save: %w", err)
	}
	return nil
}

// List returns the baselines stored for project, oldest first.
func (s *Store) List(ctx context.Context, project string) ([]Entry, error) {
	const q = `
		SELECT b.id, b.name, b.created_at, COUNT(sn.task_id)
		FROM baselines b
		LEFT JOIN snapshots sn ON sn.baseline_id = b.id
		WHERE b.project = ?
		GROUP BY b.id, b.name, b.created_at
		ORDER BY b.created_at, b.name`
	rows, err := s.db.QueryContext(ctx, q, project)
	if err != nil {
		return nil, fmt.Errorf("baselinestore: list %q: %w", project, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Name, &created, &e.TaskCount); err != nil {
			return nil, fmt.Errorf("baselinestore: scan baseline: %w", err)
		}
		if e.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("baselinestore: baseline %q created_at: %w", e.Name, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("baselinestore: list %q: %w", project, err)
	}
	return entries, nil
}

// Load returns the named baseline of project with its snapshots. A missing
// baseline yields an error wrapping schedule.ErrBaselineNotFound.
func (s *Store) Load(ctx context.Context, project, name string) (schedule.Baseline, error) {
	b := schedule.Baseline{Name: name}
	var created string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM baselines WHERE project = ? AND name = ?",
		project, name).Scan(&b.ID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Baseline{}, fmt.Errorf("baselinestore: %w: %q", schedule.ErrBaselineNotFound, name)
	}
	if err != nil {
		return schedule.Baseline{}, fmt.Errorf("baselinestore: load %q: %w", name, err)
	}
	if b.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return schedule.Baseline{}, fmt.Errorf("baselinestore: baseline %q created_at: %w", name, err)
	}

	const q = `
		SELECT task_id, name, start_date, end_date, duration, percent_complete, wbs
		FROM snapshots WHERE baseline_id = ? ORDER BY task_id`
	rows, err := s.db.QueryContext(ctx, q, b.ID)
	if err != nil {
		return schedule.Baseline{}, fmt.Errorf("baselinestore: load snapshots %q: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var snap schedule.TaskSnapshot
		var start, end string
		if err := rows.Scan(&snap.TaskID, &snap.Name, &start, &end, &snap.Duration, &snap.PercentComplete, &snap.WBS); err != nil {
			return schedule.Baseline{}, fmt.Errorf("baselinestore: scan snapshot: %w", err)
		}
		if snap.Start, err = time.Parse(dateLayout, start); err != nil {
			return schedule.Baseline{}, fmt.Errorf("baselinestore: snapshot %d start: %w", snap.TaskID, err)
		}
		if snap.End, err = time.Parse(dateLayout, end); err != nil {
			return schedule.Baseline{}, fmt.Errorf("baselinestore: snapshot %d end: %w", snap.TaskID, err)
		}
		b.Tasks = append(b.Tasks, snap)
	}
	if err := rows.Err(); err != nil {
		return schedule.Baseline{}, fmt.Errorf("baselinestore: load snapshots %q: %w", name, err)
	}
	return b, nil
}

// Delete removes the named baseline of project. A missing baseline yields an
// error wrapping schedule.ErrBaselineNotFound.
func (s *Store) Delete(ctx context.Context, project, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("baselinestore: begin delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var id string
	err = tx.QueryRowContext(ctx, "SELECT id FROM baselines WHERE project = ? AND name = ?", project, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("baselinestore: %w: %q", schedule.ErrBaselineNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("baselinestore: delete %q: %w", name, err)
	}
	if err := deleteTx(ctx, tx, project, name); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("baselinestore: commit delete: %w", err)
	}
	return nil
}

// deleteTx removes a baseline and its snapshots if it exists.
func deleteTx(ctx context.Context, tx *sql.Tx, project, name string) error {
	const delSnapshots = `
		DELETE FROM snapshots WHERE baseline_id IN
		(SELECT id FROM baselines WHERE project = ? AND name = ?)`
	if _, err := tx.ExecContext(ctx, delSnapshots, project, name); err != nil {
		return fmt.Errorf("baselinestore: delete snapshots %q: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM baselines WHERE project = ? AND name = ?", project, name); err != nil {
		return fmt.Errorf("baselinestore: delete baseline %q: %w", name, err)
	}
	return nil
}
