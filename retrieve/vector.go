package retrieve

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphexio/graphex/kg"
)

// VectorRetriever retrieves chunks by embedding similarity.
type VectorRetriever struct {
	vectors  kg.VectorStore
	embedder kg.Embedder
	cfg      config
}

var _ Retriever = (*VectorRetriever)(nil)

// NewVectorRetriever creates a retriever over a vector store.
func NewVectorRetriever(vectors kg.VectorStore, embedder kg.Embedder, opts ...Option) (*VectorRetriever, error) {
	if vectors == nil {
		return nil, errors.New("vector store is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	return &VectorRetriever{
		vectors:  vectors,
		embedder: embedder,
		cfg:      newConfig(opts),
	}, nil
}

// Retrieve embeds the query and returns the closest chunks.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]Result, error) {
	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.vectors.Search(ctx, embedding, r.cfg.k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		if hit.Score < r.cfg.scoreThreshold {
			continue
		}
		results = append(results, Result{
			Chunk:  hit.Chunk,
			Score:  hit.Score,
			Source: "vector",
		})
	}
	return results, nil
}
