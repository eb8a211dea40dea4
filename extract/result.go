package extract

import "github.com/graphexio/graphex/kg"

// Result is the outcome of processing one chunk. A worker builds it exactly
// once, after all retries are spent, and never mutates it afterwards.
type Result struct {
	ChunkID   string        `json:"chunk_id"`
	Entities  []kg.Entity   `json:"entities,omitempty"`
	Relations []kg.Relation `json:"relations,omitempty"`
	Success   bool          `json:"success"`

	// Error holds the last failure message. Set exactly when Success is
	// false.
	Error string `json:"error,omitempty"`

	// ProcessingMS is wall time for the chunk across all attempts,
	// including backoff sleeps.
	ProcessingMS int64 `json:"processing_time_ms"`
}
