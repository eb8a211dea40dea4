package extract

import (
	"sync"

	"github.com/graphexio/graphex/log"
)

// Progress reports aggregate completion of one ProcessChunks batch.
type Progress struct {
	// Completed counts chunks with a Result, failures included.
	Completed int
	// Total is the batch size.
	Total int
	// Percent is Completed/Total scaled to [0,100].
	Percent float64
}

// ProgressFunc receives exactly one call per completed chunk, with Completed
// strictly increasing up to Total. Calls are serialized, so the callback
// must return quickly. A panic inside the callback is recovered and logged,
// never propagated into a worker.
type ProgressFunc func(Progress)

// progressTracker counts completions for one batch and drives the callback.
type progressTracker struct {
	mu        sync.Mutex
	completed int
	total     int
	fn        ProgressFunc
	logger    log.Logger
}

func newProgressTracker(total int, fn ProgressFunc, logger log.Logger) *progressTracker {
	return &progressTracker{total: total, fn: fn, logger: logger}
}

// chunkDone records one finished chunk and returns the batch completion
// percentage after it. The callback runs under the tracker lock so callers
// observe Completed strictly increasing.
func (t *progressTracker) chunkDone() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	percent := float64(t.completed) / float64(t.total) * 100
	if t.fn != nil {
		t.notify(Progress{Completed: t.completed, Total: t.total, Percent: percent})
	}
	return percent
}

func (t *progressTracker) notify(p Progress) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("progress callback panicked: %v", r)
		}
	}()
	t.fn(p)
}
