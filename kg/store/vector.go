package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/graphexio/graphex/kg"
)

// MemoryVectorStore is an in-process kg.VectorStore using cosine similarity.
// Safe for concurrent use.
type MemoryVectorStore struct {
	mu     sync.RWMutex
	chunks []kg.Chunk
}

var _ kg.VectorStore = (*MemoryVectorStore)(nil)

// NewMemoryVectorStore creates an empty vector store.
func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{}
}

// AddChunks stores chunks. Every chunk must carry an embedding.
func (s *MemoryVectorStore) AddChunks(ctx context.Context, chunks []kg.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("chunk %q has no embedding", c.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

// Search returns the k chunks most similar to the query embedding, ordered
// by descending cosine similarity.
func (s *MemoryVectorStore) Search(ctx context.Context, embedding []float32, k int) ([]kg.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.chunks) == 0 {
		return []kg.ScoredChunk{}, nil
	}

	scored := make([]kg.ScoredChunk, len(s.chunks))
	for i, c := range s.chunks {
		scored[i] = kg.ScoredChunk{
			Chunk: c,
			Score: cosineSimilarity32(embedding, c.Embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// DeleteByDocument removes every chunk belonging to a document.
func (s *MemoryVectorStore) DeleteByDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	s.chunks = kept
	return nil
}

// Len reports the number of stored chunks.
func (s *MemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Close drops all stored chunks.
func (s *MemoryVectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	return nil
}

// cosineSimilarity32 computes cosine similarity between two float32 vectors.
// Mismatched lengths and zero vectors score 0.
func cosineSimilarity32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
