package retrieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graphexio/graphex/kg"
	"github.com/graphexio/graphex/kg/store"
)

// stubEmbedder maps known texts to fixed vectors so similarity order is
// fully deterministic.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 0, 1}, nil
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// stubRetriever returns canned results.
type stubRetriever struct {
	results []Result
	err     error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

// seededVectorStore indexes three chunks along distinct axes.
func seededVectorStore(t *testing.T) *store.MemoryVectorStore {
	t.Helper()

	vectors := store.NewMemoryVectorStore()
	chunks := []kg.Chunk{
		{ID: "c-ada", DocumentID: "doc-1", Text: "Ada Lovelace wrote the first program.", Embedding: []float32{1, 0, 0}},
		{ID: "c-engine", DocumentID: "doc-1", Text: "The Analytical Engine was mechanical.", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "c-cobol", DocumentID: "doc-2", Text: "COBOL came much later.", Embedding: []float32{0, 1, 0}},
	}
	require.NoError(t, vectors.AddChunks(context.Background(), chunks))
	return vectors
}

// seededGraph builds a small graph: Ada Lovelace worked on the Analytical
// Engine, Grace Hopper created COBOL.
func seededGraph(t *testing.T) *store.MemoryGraph {
	t.Helper()

	graph := store.NewMemoryGraph()
	ctx := context.Background()

	entities := []kg.Entity{
		{ID: "Ada Lovelace", Name: "Ada Lovelace", Type: "PERSON", Properties: map[string]any{"description": "first programmer"}},
		{ID: "Analytical Engine", Name: "Analytical Engine", Type: "TECHNOLOGY"},
		{ID: "Grace Hopper", Name: "Grace Hopper", Type: "PERSON"},
		{ID: "COBOL", Name: "COBOL", Type: "TECHNOLOGY"},
	}
	for _, e := range entities {
		require.NoError(t, graph.AddEntity(ctx, e))
	}

	relations := []kg.Relation{
		{ID: "r1", Source: "Ada Lovelace", Target: "Analytical Engine", Type: "WORKED_ON", Weight: 1},
		{ID: "r2", Source: "Grace Hopper", Target: "COBOL", Type: "CREATED", Weight: 1},
	}
	for _, r := range relations {
		require.NoError(t, graph.AddRelation(ctx, r))
	}
	return graph
}
