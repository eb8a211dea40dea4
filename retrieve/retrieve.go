// Package retrieve answers queries against the stores an ingestion run
// filled. The vector retriever searches chunk embeddings, the graph
// retriever walks the knowledge graph and renders matched subgraphs as
// pseudo-chunks, and the hybrid retriever merges both with weighted scores.
package retrieve

import (
	"context"

	"github.com/graphexio/graphex/kg"
)

// Result is one retrieved chunk with its relevance score. Source names the
// retriever that produced it: "vector", "graph", or "hybrid" when both did.
type Result struct {
	Chunk  kg.Chunk `json:"chunk"`
	Score  float64  `json:"score"`
	Source string   `json:"source"`
}

// Retriever finds chunks relevant to a natural-language query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Result, error)
}

const (
	defaultK            = 4
	defaultGraphDepth   = 1
	defaultVectorWeight = 0.7
	defaultGraphWeight  = 0.3
)

type config struct {
	k              int
	scoreThreshold float64
	graphDepth     int
	vectorWeight   float64
	graphWeight    float64
}

func newConfig(opts []Option) config {
	cfg := config{
		k:            defaultK,
		graphDepth:   defaultGraphDepth,
		vectorWeight: defaultVectorWeight,
		graphWeight:  defaultGraphWeight,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a retriever.
type Option func(*config)

// WithK sets how many results Retrieve returns at most. Default 4.
func WithK(k int) Option {
	return func(c *config) {
		if k > 0 {
			c.k = k
		}
	}
}

// WithScoreThreshold drops results scoring below the threshold. Default 0
// (no filtering).
func WithScoreThreshold(threshold float64) Option {
	return func(c *config) {
		if threshold > 0 {
			c.scoreThreshold = threshold
		}
	}
}

// WithGraphDepth sets how many hops the graph retriever expands around a
// matched entity. Default 1.
func WithGraphDepth(depth int) Option {
	return func(c *config) {
		if depth > 0 {
			c.graphDepth = depth
		}
	}
}

// WithWeights sets the hybrid merge weights. Defaults 0.7 vector, 0.3 graph.
func WithWeights(vector, graph float64) Option {
	return func(c *config) {
		if vector > 0 {
			c.vectorWeight = vector
		}
		if graph > 0 {
			c.graphWeight = graph
		}
	}
}
