package kg

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when the requested entity, chunk, or
// record does not exist.
var ErrNotFound = errors.New("not found")

// GraphQuery describes a knowledge-graph lookup. Structured fields
// (EntityTypes, NameLike, Limit) work against every backend; Cypher is
// passed through verbatim by backends that speak it and rejected by those
// that do not.
type GraphQuery struct {
	Cypher      string         `json:"cypher,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
	EntityTypes []string       `json:"entity_types,omitempty"`
	NameLike    string         `json:"name_like,omitempty"`
	Limit       int            `json:"limit,omitempty"`
}

// GraphResult holds the outcome of a GraphQuery. Entities and Relations are
// populated for structured queries; Rows carries raw result rows for Cypher
// queries whose shape the store cannot interpret.
type GraphResult struct {
	Entities  []Entity   `json:"entities,omitempty"`
	Relations []Relation `json:"relations,omitempty"`
	Rows      [][]any    `json:"rows,omitempty"`
}

// Store is the knowledge-graph storage interface. Implementations must be
// safe for concurrent use.
type Store interface {
	// AddEntity upserts an entity by ID. Properties of an existing entity
	// are merged, not replaced wholesale.
	AddEntity(ctx context.Context, e Entity) error

	// AddRelation upserts a relation by ID. Both endpoints must already
	// exist.
	AddRelation(ctx context.Context, r Relation) error

	// GetEntity returns the entity with the given ID, or ErrNotFound.
	GetEntity(ctx context.Context, id string) (Entity, error)

	// FindEntitiesByName returns entities whose name matches name
	// case-insensitively.
	FindEntitiesByName(ctx context.Context, name string) ([]Entity, error)

	// Neighbors returns the entities reachable from entityID within depth
	// hops, along with the relations connecting them. Depth 0 or negative
	// means depth 1.
	Neighbors(ctx context.Context, entityID string, depth int) ([]Entity, []Relation, error)

	// DeleteEntity removes an entity and every relation attached to it.
	DeleteEntity(ctx context.Context, id string) error

	// Query runs a GraphQuery.
	Query(ctx context.Context, q GraphQuery) (*GraphResult, error)

	// Clear removes all graph contents.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
