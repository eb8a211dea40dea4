// Package memory provides an in-process runlog backend. It is the default
// journal for tests and short-lived pipelines.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/graphexio/graphex/runlog"
)

// MemoryJournal implements runlog.Journal using an in-memory map.
// It is safe for concurrent use.
type MemoryJournal struct {
	mu   sync.RWMutex
	runs map[string][]runlog.Record
}

var _ runlog.Journal = (*MemoryJournal)(nil)

// NewMemoryJournal creates a new empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{
		runs: make(map[string][]runlog.Record),
	}
}

// Append stores one record.
func (j *MemoryJournal) Append(ctx context.Context, rec runlog.Record) error {
	if rec.RunID == "" {
		return errors.New("run id is required")
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs[rec.RunID] = append(j.runs[rec.RunID], rec)
	return nil
}

// Run returns all records for a run in append order.
func (j *MemoryJournal) Run(ctx context.Context, runID string) ([]runlog.Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	recs, ok := j.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, runlog.ErrNotFound)
	}

	out := make([]runlog.Record, len(recs))
	copy(out, recs)
	return out, nil
}

// Runs lists all recorded run IDs in lexical order.
func (j *MemoryJournal) Runs(ctx context.Context) ([]string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	ids := make([]string, 0, len(j.runs))
	for id := range j.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteRun removes all records for a run.
func (j *MemoryJournal) DeleteRun(ctx context.Context, runID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.runs, runID)
	return nil
}

// Clear removes every record from the journal.
func (j *MemoryJournal) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs = make(map[string][]runlog.Record)
	return nil
}

// Close is a no-op for the in-memory journal.
func (j *MemoryJournal) Close() error {
	return nil
}
