package retrieve

import (
	"context"
	"errors"
	"sort"
)

// HybridRetriever merges vector and graph retrieval. Scores are combined as
// a weighted sum and chunks surfaced by both retrievers get a 10% boost.
type HybridRetriever struct {
	vector Retriever
	graph  Retriever
	cfg    config
}

var _ Retriever = (*HybridRetriever)(nil)

// NewHybridRetriever combines a vector retriever and a graph retriever.
func NewHybridRetriever(vector, graph Retriever, opts ...Option) (*HybridRetriever, error) {
	if vector == nil {
		return nil, errors.New("vector retriever is required")
	}
	if graph == nil {
		return nil, errors.New("graph retriever is required")
	}
	return &HybridRetriever{
		vector: vector,
		graph:  graph,
		cfg:    newConfig(opts),
	}, nil
}

// Retrieve runs both retrievers and merges their results. One retriever
// failing degrades to the other's results unweighted; both failing is an
// error.
func (h *HybridRetriever) Retrieve(ctx context.Context, query string) ([]Result, error) {
	vectorResults, vectorErr := h.vector.Retrieve(ctx, query)
	graphResults, graphErr := h.graph.Retrieve(ctx, query)

	switch {
	case vectorErr != nil && graphErr != nil:
		return nil, vectorErr
	case vectorErr != nil:
		return h.finalize(graphResults), nil
	case graphErr != nil:
		return h.finalize(vectorResults), nil
	}

	type merged struct {
		result  Result
		sources int
	}
	byID := make(map[string]*merged)

	fold := func(results []Result, weight float64) {
		for _, res := range results {
			id := res.Chunk.ID
			if m, ok := byID[id]; ok {
				m.result.Score += res.Score * weight
				m.sources++
				m.result.Source = "hybrid"
				continue
			}
			res.Score *= weight
			byID[id] = &merged{result: res, sources: 1}
		}
	}
	fold(vectorResults, h.cfg.vectorWeight)
	fold(graphResults, h.cfg.graphWeight)

	results := make([]Result, 0, len(byID))
	for _, m := range byID {
		if m.sources > 1 {
			m.result.Score *= 1.1
		}
		if m.result.Score > 1.0 {
			m.result.Score = 1.0
		}
		results = append(results, m.result)
	}

	return h.finalize(results), nil
}

// finalize applies the threshold, a deterministic ordering, and the k cap.
func (h *HybridRetriever) finalize(results []Result) []Result {
	kept := make([]Result, 0, len(results))
	for _, res := range results {
		if res.Score < h.cfg.scoreThreshold {
			continue
		}
		kept = append(kept, res)
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].Chunk.ID < kept[j].Chunk.ID
	})

	if len(kept) > h.cfg.k {
		kept = kept[:h.cfg.k]
	}
	return kept
}
