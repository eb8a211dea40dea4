package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/graphexio/graphex/kg"
	"github.com/graphexio/graphex/log"
)

// Pool runs chunk extraction with bounded workers and a global cap on
// in-flight extractor calls. A Pool is safe for concurrent use; concurrent
// ProcessChunks batches get independent queues and admission semaphores but
// share the worker status slots.
type Pool struct {
	cfg       Config
	extractor Extractor
	logger    log.Logger
	board     *statusBoard

	// backoffBase scales the retry backoff schedule. Production value is
	// one second; tests shrink it.
	backoffBase time.Duration
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger routes pool logging to logger instead of the package default.
func WithLogger(logger log.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New builds a Pool from cfg. The extractor is required; an invalid config
// or nil extractor is refused here rather than hanging at runtime.
func New(cfg Config, extractor Extractor, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pool config: %w", err)
	}
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}

	p := &Pool{
		cfg:         cfg,
		extractor:   extractor,
		logger:      log.Default(),
		board:       newStatusBoard(cfg.NumWorkers),
		backoffBase: time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.logger.Debug("extraction pool: %d workers, %d concurrent llm calls, timeout %v, %d retries",
		cfg.NumWorkers, cfg.MaxConcurrentLLMCalls, cfg.ChunkTimeout, cfg.MaxRetries)
	if cfg.VRAMLimitMB > 0 {
		p.logger.Info("extraction pool: advisory vram limit %d MB (not enforced)", cfg.VRAMLimitMB)
	}
	return p, nil
}

// Config returns the validated configuration the pool was built with.
func (p *Pool) Config() Config {
	return p.cfg
}

// WorkerStatuses returns a point-in-time copy of every worker slot.
func (p *Pool) WorkerStatuses() []WorkerStatus {
	return p.board.snapshot()
}

// ProcessChunks processes the batch and returns a channel yielding exactly
// one Result per input chunk, in completion order. The channel is buffered
// to the batch size, so workers always run to completion and exit even if
// the caller stops reading. onProgress may be nil.
//
// Canceling ctx stops new extraction work: chunks still queued fail fast
// with a cancellation message, preserving the one-result-per-chunk
// guarantee. Empty input returns an already-closed channel.
func (p *Pool) ProcessChunks(ctx context.Context, chunks []kg.Chunk, onProgress ProgressFunc) <-chan Result {
	results := make(chan Result, len(chunks))
	if len(chunks) == 0 {
		close(results)
		return results
	}

	// Pre-filled and closed, so each worker drains real work and then
	// observes end-of-queue exactly once.
	queue := make(chan kg.Chunk, len(chunks))
	for _, chunk := range chunks {
		queue <- chunk
	}
	close(queue)

	sem := semaphore.NewWeighted(int64(p.cfg.MaxConcurrentLLMCalls))
	tracker := newProgressTracker(len(chunks), onProgress, p.logger)
	known := newKnownEntities()

	var wg sync.WaitGroup
	for i := range p.cfg.NumWorkers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id, queue, sem, known, tracker, results)
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	p.logger.Debug("processing %d chunks with %d workers", len(chunks), p.cfg.NumWorkers)
	return results
}

func (p *Pool) worker(ctx context.Context, id int, queue <-chan kg.Chunk, sem *semaphore.Weighted, known *knownEntities, tracker *progressTracker, results chan<- Result) {
	for chunk := range queue {
		var res Result
		if ctx.Err() != nil {
			res = Result{
				ChunkID: chunk.ID,
				Error:   fmt.Sprintf("canceled before processing: %v", ctx.Err()),
			}
		} else {
			res = p.processChunk(ctx, id, chunk, sem, known)
		}
		results <- res
		percent := tracker.chunkDone()
		p.board.finishChunk(id, percent)
	}
}

// processChunk wraps the retry loop with a last-resort recover so nothing a
// chunk does can kill its worker.
func (p *Pool) processChunk(ctx context.Context, id int, chunk kg.Chunk, sem *semaphore.Weighted, known *knownEntities) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.board.markError(id)
			p.logger.Error("worker %d: unexpected panic on chunk %s: %v", id, chunk.ID, r)
			res = Result{
				ChunkID:      chunk.ID,
				Error:        fmt.Sprintf("panic: %v", r),
				ProcessingMS: time.Since(start).Milliseconds(),
			}
		}
	}()

	res = p.processWithRetries(ctx, id, chunk, sem, known, start)
	if res.Success {
		known.add(res.Entities)
	}
	return res
}
