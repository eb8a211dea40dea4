// Package runlog records per-chunk extraction outcomes so that ingestion
// runs can be audited and replayed after the fact. Each extraction run is
// identified by a run ID, and every chunk processed during that run appends
// one Record. Backends live in the subpackages memory, redis, postgres and
// sqlite; they all implement Journal.
package runlog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run ID has no records.
var ErrNotFound = errors.New("run not found")

// Record is one chunk outcome inside an extraction run.
type Record struct {
	RunID         string    `json:"run_id"`
	ChunkID       string    `json:"chunk_id"`
	DocumentID    string    `json:"document_id,omitempty"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	EntityCount   int       `json:"entity_count"`
	RelationCount int       `json:"relation_count"`
	ProcessingMS  int64     `json:"processing_time_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// Journal persists extraction run records.
type Journal interface {
	// Append stores one record. The record's RunID must be non-empty.
	Append(ctx context.Context, rec Record) error

	// Run returns all records for a run in the order they were appended.
	// Returns ErrNotFound when the run has no records.
	Run(ctx context.Context, runID string) ([]Record, error)

	// Runs lists the IDs of all recorded runs.
	Runs(ctx context.Context) ([]string, error)

	// DeleteRun removes all records for a run.
	DeleteRun(ctx context.Context, runID string) error

	// Clear removes every record from the journal.
	Clear(ctx context.Context) error

	// Close releases any resources held by the journal.
	Close() error
}
