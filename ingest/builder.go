// Package ingest orchestrates extraction runs end to end. A Builder feeds
// chunks through the extraction pool, upserts the extracted entities and
// relations into a graph store, indexes chunk embeddings in a vector store,
// and journals one record per chunk. Every output is optional except the
// extractor itself, so the same Builder works for graph-only, vector-only,
// or audit-only pipelines.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/graphexio/graphex/extract"
	"github.com/graphexio/graphex/kg"
	"github.com/graphexio/graphex/log"
	"github.com/graphexio/graphex/runlog"
)

// Report summarizes one ingestion run. Entity and relation counts are the
// extraction totals over successful chunks.
type Report struct {
	RunID     string        `json:"run_id"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Entities  int           `json:"entities"`
	Relations int           `json:"relations"`
	Duration  time.Duration `json:"duration"`
}

// Builder runs extraction over chunk batches and persists the results.
type Builder struct {
	cfg      extract.Config
	pool     *extract.Pool
	graph    kg.Store
	vectors  kg.VectorStore
	embedder kg.Embedder
	journal  runlog.Journal
	logger   log.Logger
	progress extract.ProgressFunc
}

// Option configures a Builder.
type Option func(*Builder)

// WithPoolConfig overrides the extraction pool configuration.
func WithPoolConfig(cfg extract.Config) Option {
	return func(b *Builder) { b.cfg = cfg }
}

// WithGraphStore persists extracted entities and relations into store.
func WithGraphStore(store kg.Store) Option {
	return func(b *Builder) { b.graph = store }
}

// WithVectorStore indexes successful chunks into store. Chunks are embedded
// with the embedder from WithEmbedder unless they already carry embeddings.
func WithVectorStore(store kg.VectorStore) Option {
	return func(b *Builder) { b.vectors = store }
}

// WithEmbedder sets the embedder used for chunk indexing.
func WithEmbedder(embedder kg.Embedder) Option {
	return func(b *Builder) { b.embedder = embedder }
}

// WithJournal records one runlog entry per processed chunk.
func WithJournal(journal runlog.Journal) Option {
	return func(b *Builder) { b.journal = journal }
}

// WithLogger sets the logger for the builder and its pool.
func WithLogger(logger log.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithProgress registers a progress callback forwarded to the pool.
func WithProgress(fn extract.ProgressFunc) Option {
	return func(b *Builder) { b.progress = fn }
}

// NewBuilder creates a Builder around the given extractor.
func NewBuilder(extractor extract.Extractor, opts ...Option) (*Builder, error) {
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}

	b := &Builder{
		cfg:    extract.DefaultConfig(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	pool, err := extract.New(b.cfg, extractor, extract.WithLogger(b.logger))
	if err != nil {
		return nil, fmt.Errorf("create extraction pool: %w", err)
	}
	b.pool = pool

	return b, nil
}

// Build processes chunks through the pool and persists every successful
// result. Chunk-level extraction failures are journaled and counted, never
// fatal; the returned error reports persistence failures and cancellation.
func (b *Builder) Build(ctx context.Context, chunks []kg.Chunk) (*Report, error) {
	runID := uuid.NewString()
	start := time.Now()

	report := &Report{RunID: runID, Total: len(chunks)}
	if len(chunks) == 0 {
		return report, nil
	}

	b.logger.Info("run %s: ingesting %d chunks with %d workers", runID, len(chunks), b.cfg.NumWorkers)

	chunksByID := make(map[string]kg.Chunk, len(chunks))
	for _, chunk := range chunks {
		chunksByID[chunk.ID] = chunk
	}

	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
		b.logger.Error("run %s: %v", runID, err)
	}

	// Embedding calls hit the same model backend as extraction, so index
	// work gets the same concurrent-call cap.
	var indexers errgroup.Group
	indexers.SetLimit(b.cfg.MaxConcurrentLLMCalls)

	// Journal writes survive cancellation; records for canceled chunks are
	// part of the audit trail.
	jctx := context.WithoutCancel(ctx)

	for res := range b.pool.ProcessChunks(ctx, chunks, b.progress) {
		if res.Success {
			report.Succeeded++
			report.Entities += len(res.Entities)
			report.Relations += len(res.Relations)

			if b.graph != nil {
				if err := b.persistResult(ctx, res); err != nil {
					fail(err)
				}
			}
			if b.vectors != nil {
				b.queueIndex(ctx, &indexers, chunksByID[res.ChunkID])
			}
		} else {
			report.Failed++
			b.logger.Warn("run %s: chunk %s failed: %s", runID, res.ChunkID, res.Error)
		}

		if b.journal != nil {
			rec := runlog.Record{
				RunID:         runID,
				ChunkID:       res.ChunkID,
				DocumentID:    chunksByID[res.ChunkID].DocumentID,
				Success:       res.Success,
				Error:         res.Error,
				EntityCount:   len(res.Entities),
				RelationCount: len(res.Relations),
				ProcessingMS:  res.ProcessingMS,
				CreatedAt:     time.Now().UTC(),
			}
			if err := b.journal.Append(jctx, rec); err != nil {
				fail(fmt.Errorf("journal chunk %s: %w", res.ChunkID, err))
			}
		}
	}

	if err := indexers.Wait(); err != nil {
		fail(err)
	}
	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}

	report.Duration = time.Since(start)
	b.logger.Info("run %s: %d/%d chunks succeeded, %d entities, %d relations in %s",
		runID, report.Succeeded, report.Total, report.Entities, report.Relations, report.Duration)

	return report, firstErr
}

// BuildDocuments ingests each document as a single chunk. Callers that need
// finer granularity chunk their documents before calling Build.
func (b *Builder) BuildDocuments(ctx context.Context, docs []kg.Document) (*Report, error) {
	chunks := make([]kg.Chunk, 0, len(docs))
	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}
		chunks = append(chunks, kg.Chunk{
			ID:         id,
			DocumentID: id,
			Text:       doc.Content,
			Index:      i,
		})
	}
	return b.Build(ctx, chunks)
}

// persistResult upserts one result's entities, then its relations. Entities
// go first so relations inside the same result always find their endpoints.
func (b *Builder) persistResult(ctx context.Context, res extract.Result) error {
	for _, entity := range res.Entities {
		// Clone properties before attaching provenance; the result still
		// feeds known-entity prompts elsewhere.
		props := make(map[string]any, len(entity.Properties)+1)
		for k, v := range entity.Properties {
			props[k] = v
		}
		props["source_chunk"] = res.ChunkID
		entity.Properties = props

		if err := b.graph.AddEntity(ctx, entity); err != nil {
			return fmt.Errorf("upsert entity %s: %w", entity.ID, err)
		}
	}

	for _, rel := range res.Relations {
		if err := b.graph.AddRelation(ctx, rel); err != nil {
			if errors.Is(err, kg.ErrNotFound) {
				// The model related an entity it never extracted. Drop the
				// edge rather than failing the chunk.
				b.logger.Warn("chunk %s: dropping relation %s: %v", res.ChunkID, rel.ID, err)
				continue
			}
			return fmt.Errorf("upsert relation %s: %w", rel.ID, err)
		}
	}

	return nil
}

// queueIndex embeds a chunk if needed and adds it to the vector store.
func (b *Builder) queueIndex(ctx context.Context, g *errgroup.Group, chunk kg.Chunk) {
	if chunk.ID == "" {
		return
	}
	if len(chunk.Embedding) == 0 && b.embedder == nil {
		b.logger.Debug("chunk %s: no embedder configured, skipping index", chunk.ID)
		return
	}

	g.Go(func() error {
		if len(chunk.Embedding) == 0 {
			vec, err := b.embedder.EmbedText(ctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
			}
			chunk.Embedding = vec
		}
		if err := b.vectors.AddChunks(ctx, []kg.Chunk{chunk}); err != nil {
			return fmt.Errorf("index chunk %s: %w", chunk.ID, err)
		}
		return nil
	})
}
