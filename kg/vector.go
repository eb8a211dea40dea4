package kg

import (
	"context"
)

// ScoredChunk is a chunk returned from a vector search together with its
// similarity score (higher is closer).
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// VectorStore indexes chunks by embedding for similarity search.
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// AddChunks stores chunks. Chunks without an embedding are rejected.
	AddChunks(ctx context.Context, chunks []Chunk) error

	// Search returns up to k chunks most similar to the query embedding,
	// ordered by descending score.
	Search(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error)

	// DeleteByDocument removes every chunk belonging to a document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases backend resources.
	Close() error
}

// Embedder turns text into embedding vectors.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
