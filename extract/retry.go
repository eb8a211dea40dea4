package extract

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/graphexio/graphex/kg"
)

// processWithRetries runs up to MaxRetries+1 attempts for one chunk and
// always returns a Result, never an error: exhausted retries become a failed
// Result carrying the last attempt's message.
func (p *Pool) processWithRetries(ctx context.Context, workerID int, chunk kg.Chunk, sem *semaphore.Weighted, known *knownEntities, start time.Time) Result {
	attempts := p.cfg.MaxRetries + 1
	var lastErr error
	ran := 0

	for attempt := range attempts {
		ran = attempt + 1
		p.board.startChunk(workerID, chunk.ID)

		entities, relations, err := p.attempt(ctx, chunk, sem, known)
		if err == nil {
			elapsed := time.Since(start).Milliseconds()
			p.logger.Debug("worker %d: chunk %s done on attempt %d/%d, %d entities, %d relations, %d ms",
				workerID, chunk.ID, ran, attempts, len(entities), len(relations), elapsed)
			return Result{
				ChunkID:      chunk.ID,
				Entities:     entities,
				Relations:    relations,
				Success:      true,
				ProcessingMS: elapsed,
			}
		}

		lastErr = err
		p.board.markError(workerID)
		p.logger.Warn("worker %d: chunk %s attempt %d/%d failed: %v", workerID, chunk.ID, ran, attempts, err)

		if attempt == attempts-1 {
			break
		}
		// The semaphore is already released here, so backing off never
		// holds an admission slot.
		select {
		case <-time.After(p.backoffDelay(attempt)):
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}

	elapsed := time.Since(start).Milliseconds()
	msg := "extraction failed"
	if lastErr != nil {
		msg = lastErr.Error()
	}
	p.logger.Error("worker %d: chunk %s failed after %d attempts: %s", workerID, chunk.ID, ran, msg)
	return Result{
		ChunkID:      chunk.ID,
		Success:      false,
		Error:        msg,
		ProcessingMS: elapsed,
	}
}

// attempt runs one extraction call: acquire an admission slot, invoke the
// extractor under the chunk deadline, release the slot on the way out. The
// deadline is enforced with a select so an extractor that ignores its
// context cannot stall the worker; the abandoned call finishes into a
// buffered channel.
func (p *Pool) attempt(ctx context.Context, chunk kg.Chunk, sem *semaphore.Weighted, known *knownEntities) ([]kg.Entity, []kg.Relation, error) {
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, nil, fmt.Errorf("acquire llm slot: %w", err)
	}
	defer sem.Release(1)

	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.ChunkTimeout)
	defer cancel()

	type outcome struct {
		entities  []kg.Entity
		relations []kg.Relation
		err       error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		entities, relations, err := p.extractor.Extract(attemptCtx, chunk.Text, known.snapshot())
		done <- outcome{entities: entities, relations: relations, err: err}
	}()

	select {
	case out := <-done:
		return out.entities, out.relations, out.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("Timeout after %gs", p.cfg.ChunkTimeout.Seconds())
	}
}

// backoffDelay is the sleep before retrying a failed attempt, doubling per
// attempt: base 1s gives 1s, 2s, 4s.
func (p *Pool) backoffDelay(attempt int) time.Duration {
	return p.backoffBase * time.Duration(math.Pow(2, float64(attempt)))
}
