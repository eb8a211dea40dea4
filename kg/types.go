package kg

import (
	"time"
)

// Entity is a node in the knowledge graph.
type Entity struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Embedding  []float32      `json:"embedding,omitempty"`
	CreatedAt  time.Time      `json:"created_at,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at,omitempty"`
}

// Relation is a directed, typed edge between two entities, identified by
// their IDs.
type Relation struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Weight     float64        `json:"weight,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	CreatedAt  time.Time      `json:"created_at,omitempty"`
}

// Chunk is a unit of document text, the unit of work dispatched to the
// extraction pool.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id,omitempty"`
	Text       string    `json:"text"`
	Index      int       `json:"index,omitempty"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// Document is a loaded source document before chunking.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}
