package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphexio/graphex/extract"
	"github.com/graphexio/graphex/kg"
	"github.com/graphexio/graphex/kg/store"
	"github.com/graphexio/graphex/log"
	"github.com/graphexio/graphex/runlog"
	"github.com/graphexio/graphex/runlog/memory"
)

// entityPerChunk extracts one entity named after the chunk text and one
// self-describing relation to a fixed hub entity.
func entityPerChunk(ctx context.Context, text string, known []kg.Entity) ([]kg.Entity, []kg.Relation, error) {
	name := strings.ToUpper(text)
	entities := []kg.Entity{
		{ID: name, Name: name, Type: "CONCEPT"},
		{ID: "HUB", Name: "HUB", Type: "CONCEPT"},
	}
	relations := []kg.Relation{
		{ID: name + "_RELATED_TO_HUB", Source: name, Target: "HUB", Type: "RELATED_TO", Weight: 1},
	}
	return entities, relations, nil
}

type fixedEmbedder struct {
	err error
}

func (f *fixedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *fixedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

type failingJournal struct {
	*memory.MemoryJournal
}

func (f *failingJournal) Append(ctx context.Context, rec runlog.Record) error {
	return errors.New("journal is read-only")
}

func makeChunks(ids ...string) []kg.Chunk {
	chunks := make([]kg.Chunk, len(ids))
	for i, id := range ids {
		chunks[i] = kg.Chunk{ID: id, DocumentID: "doc-1", Text: id, Index: i}
	}
	return chunks
}

func quietConfig() extract.Config {
	cfg := extract.DefaultConfig()
	cfg.NumWorkers = 2
	cfg.ChunkTimeout = 5 * time.Second
	cfg.MaxRetries = 0
	return cfg
}

func TestNewBuilder(t *testing.T) {
	t.Run("requires an extractor", func(t *testing.T) {
		_, err := NewBuilder(nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "extractor is required")
	})

	t.Run("rejects invalid pool config", func(t *testing.T) {
		cfg := extract.DefaultConfig()
		cfg.NumWorkers = 0
		_, err := NewBuilder(extract.ExtractorFunc(entityPerChunk), WithPoolConfig(cfg))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "create extraction pool")
	})

	t.Run("defaults are enough", func(t *testing.T) {
		b, err := NewBuilder(extract.ExtractorFunc(entityPerChunk))
		require.NoError(t, err)
		assert.NotNil(t, b)
	})
}

func TestBuild_EmptyInput(t *testing.T) {
	b, err := NewBuilder(extract.ExtractorFunc(entityPerChunk), WithLogger(log.NopLogger{}))
	require.NoError(t, err)

	report, err := b.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Zero(t, report.Succeeded)
	assert.Zero(t, report.Failed)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err, "run IDs are UUIDs")
}

func TestBuild_PersistsGraphVectorsAndJournal(t *testing.T) {
	graph := store.NewMemoryGraph()
	vectors := store.NewMemoryVectorStore()
	journal := memory.NewMemoryJournal()

	b, err := NewBuilder(extract.ExtractorFunc(entityPerChunk),
		WithPoolConfig(quietConfig()),
		WithGraphStore(graph),
		WithVectorStore(vectors),
		WithEmbedder(&fixedEmbedder{}),
		WithJournal(journal),
		WithLogger(log.NopLogger{}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	report, err := b.Build(ctx, makeChunks("ada", "turing", "hopper"))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 3, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.Equal(t, 6, report.Entities, "two entities per chunk")
	assert.Equal(t, 3, report.Relations)
	assert.Greater(t, report.Duration, time.Duration(0))

	// Graph contains the extracted entities with chunk provenance.
	ada, err := graph.GetEntity(ctx, "ADA")
	require.NoError(t, err)
	assert.Equal(t, "ada", ada.Properties["source_chunk"])

	neighbors, rels, err := graph.Neighbors(ctx, "HUB", 1)
	require.NoError(t, err)
	assert.Len(t, neighbors, 3)
	assert.Len(t, rels, 3)

	// Vector store serves the indexed chunks.
	vec, err := (&fixedEmbedder{}).EmbedText(ctx, "ada")
	require.NoError(t, err)
	hits, err := vectors.Search(ctx, vec, 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	// Journal holds one record per chunk under the report's run ID.
	records, err := journal.Run(ctx, report.RunID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	seen := make(map[string]runlog.Record, len(records))
	for _, rec := range records {
		seen[rec.ChunkID] = rec
		assert.Equal(t, report.RunID, rec.RunID)
		assert.Equal(t, "doc-1", rec.DocumentID)
		assert.True(t, rec.Success)
		assert.Equal(t, 2, rec.EntityCount)
		assert.Equal(t, 1, rec.RelationCount)
		assert.False(t, rec.CreatedAt.IsZero())
	}
	assert.Len(t, seen, 3)
}

func TestBuild_FailedChunksAreJournaledNotFatal(t *testing.T) {
	graph := store.NewMemoryGraph()
	journal := memory.NewMemoryJournal()

	ext := extract.ExtractorFunc(func(ctx context.Context, text string, known []kg.Entity) ([]kg.Entity, []kg.Relation, error) {
		if text == "bad" {
			return nil, nil, errors.New("model refused")
		}
		return entityPerChunk(ctx, text, known)
	})

	b, err := NewBuilder(ext,
		WithPoolConfig(quietConfig()),
		WithGraphStore(graph),
		WithJournal(journal),
		WithLogger(log.NopLogger{}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	report, err := b.Build(ctx, makeChunks("good", "bad"))
	require.NoError(t, err, "extraction failures are data, not errors")

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	records, err := journal.Run(ctx, report.RunID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byChunk := map[string]runlog.Record{}
	for _, rec := range records {
		byChunk[rec.ChunkID] = rec
	}
	assert.True(t, byChunk["good"].Success)
	assert.False(t, byChunk["bad"].Success)
	assert.Contains(t, byChunk["bad"].Error, "model refused")

	// The failed chunk contributed nothing to the graph.
	_, err = graph.GetEntity(ctx, "BAD")
	assert.ErrorIs(t, err, kg.ErrNotFound)
	_, err = graph.GetEntity(ctx, "GOOD")
	assert.NoError(t, err)
}

func TestBuild_DanglingRelationsAreDropped(t *testing.T) {
	graph := store.NewMemoryGraph()

	ext := extract.ExtractorFunc(func(ctx context.Context, text string, known []kg.Entity) ([]kg.Entity, []kg.Relation, error) {
		entities := []kg.Entity{{ID: "A", Name: "A", Type: "CONCEPT"}}
		relations := []kg.Relation{
			{ID: "A_KNOWS_GHOST", Source: "A", Target: "GHOST", Type: "KNOWS"},
		}
		return entities, relations, nil
	})

	b, err := NewBuilder(ext,
		WithPoolConfig(quietConfig()),
		WithGraphStore(graph),
		WithLogger(log.NopLogger{}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	report, err := b.Build(ctx, makeChunks("c1"))
	require.NoError(t, err, "an edge to a never-extracted entity is dropped, not fatal")
	assert.Equal(t, 1, report.Succeeded)

	_, err = graph.GetEntity(ctx, "A")
	assert.NoError(t, err)

	neighbors, rels, err := graph.Neighbors(ctx, "A", 1)
	require.NoError(t, err)
	assert.Empty(t, neighbors)
	assert.Empty(t, rels)
}

func TestBuild_JournalErrorsSurface(t *testing.T) {
	journal := &failingJournal{MemoryJournal: memory.NewMemoryJournal()}

	b, err := NewBuilder(extract.ExtractorFunc(entityPerChunk),
		WithPoolConfig(quietConfig()),
		WithJournal(journal),
		WithLogger(log.NopLogger{}),
	)
	require.NoError(t, err)

	report, err := b.Build(context.Background(), makeChunks("c1", "c2"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "journal chunk")
	// Extraction itself still completed.
	assert.Equal(t, 2, report.Succeeded)
}

func TestBuild_EmbedderErrorsSurface(t *testing.T) {
	vectors := store.NewMemoryVectorStore()

	b, err := NewBuilder(extract.ExtractorFunc(entityPerChunk),
		WithPoolConfig(quietConfig()),
		WithVectorStore(vectors),
		WithEmbedder(&fixedEmbedder{err: errors.New("quota exceeded")}),
		WithLogger(log.NopLogger{}),
	)
	require.NoError(t, err)

	report, err := b.Build(context.Background(), makeChunks("c1"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "embed chunk")
	assert.Equal(t, 1, report.Succeeded)
}

func TestBuild_PreEmbeddedChunksSkipTheEmbedder(t *testing.T) {
	vectors := store.NewMemoryVectorStore()

	b, err := NewBuilder(extract.ExtractorFunc(entityPerChunk),
		WithPoolConfig(quietConfig()),
		WithVectorStore(vectors),
		// No embedder configured.
		WithLogger(log.NopLogger{}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	chunks := []kg.Chunk{
		{ID: "c1", Text: "one", Embedding: []float32{1, 0}},
		{ID: "c2", Text: "two"}, // not indexable without an embedder
	}

	report, err := b.Build(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)

	hits, err := vectors.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].Chunk.ID)
}

func TestBuild_ProgressCallbackForwarded(t *testing.T) {
	var calls []extract.Progress

	b, err := NewBuilder(extract.ExtractorFunc(entityPerChunk),
		WithPoolConfig(quietConfig()),
		WithProgress(func(p extract.Progress) { calls = append(calls, p) }),
		WithLogger(log.NopLogger{}),
	)
	require.NoError(t, err)

	_, err = b.Build(context.Background(), makeChunks("c1", "c2", "c3", "c4"))
	require.NoError(t, err)

	require.Len(t, calls, 4)
	assert.Equal(t, 4, calls[3].Completed)
	assert.InDelta(t, 100.0, calls[3].Percent, 0.01)
}

func TestBuildDocuments(t *testing.T) {
	journal := memory.NewMemoryJournal()
	graph := store.NewMemoryGraph()

	b, err := NewBuilder(extract.ExtractorFunc(entityPerChunk),
		WithPoolConfig(quietConfig()),
		WithGraphStore(graph),
		WithJournal(journal),
		WithLogger(log.NopLogger{}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	docs := []kg.Document{
		{ID: "paper-1", Content: "alpha"},
		{Content: "beta"}, // no ID, gets a generated one
	}

	report, err := b.BuildDocuments(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Succeeded)

	records, err := journal.Run(ctx, report.RunID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	var sawPaper, sawGenerated bool
	for _, rec := range records {
		assert.Equal(t, rec.ChunkID, rec.DocumentID, "one chunk per document")
		if rec.DocumentID == "paper-1" {
			sawPaper = true
		} else if _, err := uuid.Parse(rec.DocumentID); err == nil {
			sawGenerated = true
		}
	}
	assert.True(t, sawPaper)
	assert.True(t, sawGenerated)
}

func TestBuild_CanceledContextSurfaces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	journal := memory.NewMemoryJournal()
	b, err := NewBuilder(extract.ExtractorFunc(entityPerChunk),
		WithPoolConfig(quietConfig()),
		WithJournal(journal),
		WithLogger(log.NopLogger{}),
	)
	require.NoError(t, err)

	report, err := b.Build(ctx, makeChunks("c1", "c2"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, report.Failed)

	// Every chunk still got a journal record.
	records, jerr := journal.Run(context.Background(), report.RunID)
	require.NoError(t, jerr)
	assert.Len(t, records, 2)
}

func TestBuild_ManyChunks(t *testing.T) {
	graph := store.NewMemoryGraph()

	cfg := quietConfig()
	cfg.NumWorkers = 4

	b, err := NewBuilder(extract.ExtractorFunc(entityPerChunk),
		WithPoolConfig(cfg),
		WithGraphStore(graph),
		WithLogger(log.NopLogger{}),
	)
	require.NoError(t, err)

	ids := make([]string, 40)
	for i := range ids {
		ids[i] = fmt.Sprintf("chunk-%02d", i)
	}

	report, err := b.Build(context.Background(), makeChunks(ids...))
	require.NoError(t, err)
	assert.Equal(t, 40, report.Succeeded)

	// Every chunk's entity landed in the graph.
	for _, id := range ids {
		_, err := graph.GetEntity(context.Background(), strings.ToUpper(id))
		assert.NoError(t, err)
	}
}
