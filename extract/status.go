package extract

import "sync"

// WorkerState is the lifecycle state a worker reports.
type WorkerState string

const (
	// WorkerIdle means the worker is waiting for work or has terminated.
	WorkerIdle WorkerState = "idle"
	// WorkerProcessing means the worker is running extraction attempts.
	WorkerProcessing WorkerState = "processing"
	// WorkerError means the worker's last attempt failed and it is backing
	// off or finalizing a failed chunk.
	WorkerError WorkerState = "error"
)

// WorkerStatus is live telemetry for one worker slot. Slots are created at
// pool construction with stable ids 0..NumWorkers-1 and survive across
// batches.
type WorkerStatus struct {
	WorkerID       int         `json:"worker_id"`
	State          WorkerState `json:"state"`
	CurrentChunkID string      `json:"current_chunk_id,omitempty"`

	// ProgressPercent is the batch completion percentage observed when
	// this worker last finished a chunk, in [0,100].
	ProgressPercent float64 `json:"progress_percent"`

	// ChunksProcessed grows monotonically over the pool lifetime.
	ChunksProcessed int `json:"chunks_processed"`
}

// statusBoard holds the worker slots. Each slot is mutated only on behalf of
// its owning worker; the mutex makes snapshots safe for outside pollers.
type statusBoard struct {
	mu    sync.Mutex
	slots []WorkerStatus
}

func newStatusBoard(n int) *statusBoard {
	b := &statusBoard{slots: make([]WorkerStatus, n)}
	for i := range b.slots {
		b.slots[i].WorkerID = i
		b.slots[i].State = WorkerIdle
	}
	return b
}

func (b *statusBoard) startChunk(id int, chunkID string) {
	b.mu.Lock()
	b.slots[id].State = WorkerProcessing
	b.slots[id].CurrentChunkID = chunkID
	b.mu.Unlock()
}

func (b *statusBoard) markError(id int) {
	b.mu.Lock()
	b.slots[id].State = WorkerError
	b.mu.Unlock()
}

func (b *statusBoard) finishChunk(id int, batchPercent float64) {
	b.mu.Lock()
	b.slots[id].State = WorkerIdle
	b.slots[id].CurrentChunkID = ""
	b.slots[id].ProgressPercent = batchPercent
	b.slots[id].ChunksProcessed++
	b.mu.Unlock()
}

// snapshot returns a point-in-time copy, never live references.
func (b *statusBoard) snapshot() []WorkerStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]WorkerStatus, len(b.slots))
	copy(out, b.slots)
	return out
}
