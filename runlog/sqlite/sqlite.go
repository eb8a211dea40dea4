// Package sqlite provides a file-backed runlog journal using SQLite. It
// suits single-host deployments where run history should survive restarts
// without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/graphexio/graphex/runlog"
)

// SqliteJournal implements runlog.Journal using SQLite.
type SqliteJournal struct {
	db        *sql.DB
	tableName string
}

var _ runlog.Journal = (*SqliteJournal)(nil)

// SqliteOptions configuration for the SQLite database
type SqliteOptions struct {
	Path      string
	TableName string // Default "extraction_runs"
}

// NewSqliteJournal opens the database and creates the schema if needed.
func NewSqliteJournal(opts SqliteOptions) (*SqliteJournal, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "extraction_runs"
	}

	journal := &SqliteJournal{
		db:        db,
		tableName: tableName,
	}

	if err := journal.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return journal, nil
}

// InitSchema creates the records table if it doesn't exist
func (j *SqliteJournal) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			chunk_id TEXT NOT NULL,
			document_id TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			error TEXT NOT NULL,
			entity_count INTEGER NOT NULL,
			relation_count INTEGER NOT NULL,
			processing_ms INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_run_id ON %s (run_id);
	`, j.tableName, j.tableName, j.tableName)

	if _, err := j.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Append stores one record.
func (j *SqliteJournal) Append(ctx context.Context, rec runlog.Record) error {
	if rec.RunID == "" {
		return fmt.Errorf("run id is required")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, chunk_id, document_id, success, error, entity_count, relation_count, processing_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.tableName)

	_, err := j.db.ExecContext(ctx, query,
		rec.RunID,
		rec.ChunkID,
		rec.DocumentID,
		rec.Success,
		rec.Error,
		rec.EntityCount,
		rec.RelationCount,
		rec.ProcessingMS,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// Run returns all records for a run in append order.
func (j *SqliteJournal) Run(ctx context.Context, runID string) ([]runlog.Record, error) {
	query := fmt.Sprintf(`
		SELECT run_id, chunk_id, document_id, success, error, entity_count, relation_count, processing_ms, created_at
		FROM %s
		WHERE run_id = ?
		ORDER BY id ASC
	`, j.tableName)

	rows, err := j.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	defer rows.Close()

	var records []runlog.Record
	for rows.Next() {
		var rec runlog.Record
		err := rows.Scan(
			&rec.RunID,
			&rec.ChunkID,
			&rec.DocumentID,
			&rec.Success,
			&rec.Error,
			&rec.EntityCount,
			&rec.RelationCount,
			&rec.ProcessingMS,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, runlog.ErrNotFound)
	}

	return records, nil
}

// Runs lists all recorded run IDs in lexical order.
func (j *SqliteJournal) Runs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT run_id FROM %s ORDER BY run_id ASC", j.tableName)

	rows, err := j.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run ids: %w", err)
	}

	return ids, nil
}

// DeleteRun removes all records for a run.
func (j *SqliteJournal) DeleteRun(ctx context.Context, runID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE run_id = ?", j.tableName)
	if _, err := j.db.ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Clear removes every record from the journal.
func (j *SqliteJournal) Clear(ctx context.Context) error {
	query := fmt.Sprintf("DELETE FROM %s", j.tableName)
	if _, err := j.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (j *SqliteJournal) Close() error {
	return j.db.Close()
}
