// Package postgres provides a PostgreSQL-backed runlog journal using pgx.
// Records are appended to a single table with a serial primary key, so the
// append order of a run is the insertion order.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/graphexio/graphex/runlog"
)

// DB is the subset of pgxpool.Pool the journal needs. It lets tests
// substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresJournal implements runlog.Journal using PostgreSQL.
type PostgresJournal struct {
	pool      DB
	tableName string
}

var _ runlog.Journal = (*PostgresJournal)(nil)

// PostgresOptions configuration for the PostgreSQL connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "extraction_runs"
}

// NewPostgresJournal creates a new journal with its own connection pool.
func NewPostgresJournal(ctx context.Context, opts PostgresOptions) (*PostgresJournal, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewPostgresJournalWithPool(pool, opts.TableName), nil
}

// NewPostgresJournalWithPool creates a journal on an existing pool.
func NewPostgresJournalWithPool(pool DB, tableName string) *PostgresJournal {
	if tableName == "" {
		tableName = "extraction_runs"
	}
	return &PostgresJournal{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the records table if it doesn't exist
func (j *PostgresJournal) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			chunk_id TEXT NOT NULL,
			document_id TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			error TEXT NOT NULL,
			entity_count INTEGER NOT NULL,
			relation_count INTEGER NOT NULL,
			processing_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_run_id ON %s (run_id);
	`, j.tableName, j.tableName, j.tableName)

	if _, err := j.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Append stores one record.
func (j *PostgresJournal) Append(ctx context.Context, rec runlog.Record) error {
	if rec.RunID == "" {
		return fmt.Errorf("run id is required")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, chunk_id, document_id, success, error, entity_count, relation_count, processing_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, j.tableName)

	_, err := j.pool.Exec(ctx, query,
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
func (j *PostgresJournal) Run(ctx context.Context, runID string) ([]runlog.Record, error) {
	query := fmt.Sprintf(`
		SELECT run_id, chunk_id, document_id, success, error, entity_count, relation_count, processing_ms, created_at
		FROM %s
		WHERE run_id = $1
		ORDER BY id ASC
	`, j.tableName)

	rows, err := j.pool.Query(ctx, query, runID)
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
func (j *PostgresJournal) Runs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT run_id FROM %s ORDER BY run_id ASC", j.tableName)

	rows, err := j.pool.Query(ctx, query)
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
func (j *PostgresJournal) DeleteRun(ctx context.Context, runID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE run_id = $1", j.tableName)
	if _, err := j.pool.Exec(ctx, query, runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Clear removes every record from the journal.
func (j *PostgresJournal) Clear(ctx context.Context) error {
	query := fmt.Sprintf("DELETE FROM %s", j.tableName)
	if _, err := j.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (j *PostgresJournal) Close() error {
	j.pool.Close()
	return nil
}
