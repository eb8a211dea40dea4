package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/graphexio/graphex/kg"
)

// MemoryGraph is an in-process kg.Store. Safe for concurrent use.
type MemoryGraph struct {
	mu        sync.RWMutex
	entities  map[string]kg.Entity
	relations map[string]kg.Relation
	byType    map[string][]string
}

var _ kg.Store = (*MemoryGraph)(nil)

// NewMemoryGraph creates an empty in-memory graph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		entities:  make(map[string]kg.Entity),
		relations: make(map[string]kg.Relation),
		byType:    make(map[string][]string),
	}
}

// AddEntity upserts an entity. Properties of an existing entity are merged.
func (m *MemoryGraph) AddEntity(ctx context.Context, e kg.Entity) error {
	if e.ID == "" {
		return fmt.Errorf("entity has no ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.entities[e.ID]; ok {
		merged := existing
		merged.Name = e.Name
		merged.Type = e.Type
		merged.UpdatedAt = now
		if len(e.Embedding) > 0 {
			merged.Embedding = e.Embedding
		}
		for k, v := range e.Properties {
			if merged.Properties == nil {
				merged.Properties = make(map[string]any)
			}
			merged.Properties[k] = v
		}
		if existing.Type != e.Type {
			m.dropFromTypeIndex(existing.Type, e.ID)
			m.byType[e.Type] = append(m.byType[e.Type], e.ID)
		}
		m.entities[e.ID] = merged
		return nil
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	m.entities[e.ID] = e
	m.byType[e.Type] = append(m.byType[e.Type], e.ID)
	return nil
}

// AddRelation upserts a relation. Both endpoints must exist.
func (m *MemoryGraph) AddRelation(ctx context.Context, r kg.Relation) error {
	if r.ID == "" {
		return fmt.Errorf("relation has no ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entities[r.Source]; !ok {
		return fmt.Errorf("relation %s: source entity %q: %w", r.ID, r.Source, kg.ErrNotFound)
	}
	if _, ok := m.entities[r.Target]; !ok {
		return fmt.Errorf("relation %s: target entity %q: %w", r.ID, r.Target, kg.ErrNotFound)
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	m.relations[r.ID] = r
	return nil
}

// GetEntity returns the entity with the given ID.
func (m *MemoryGraph) GetEntity(ctx context.Context, id string) (kg.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entities[id]
	if !ok {
		return kg.Entity{}, fmt.Errorf("entity %q: %w", id, kg.ErrNotFound)
	}
	return e, nil
}

// FindEntitiesByName matches entity names case-insensitively.
func (m *MemoryGraph) FindEntitiesByName(ctx context.Context, name string) ([]kg.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := strings.ToLower(name)
	var out []kg.Entity
	for _, e := range m.entities {
		if strings.ToLower(e.Name) == want {
			out = append(out, e)
		}
	}
	return out, nil
}

// Neighbors walks the graph breadth-first from entityID up to depth hops.
func (m *MemoryGraph) Neighbors(ctx context.Context, entityID string, depth int) ([]kg.Entity, []kg.Relation, error) {
	if depth < 1 {
		depth = 1
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.entities[entityID]; !ok {
		return nil, nil, fmt.Errorf("entity %q: %w", entityID, kg.ErrNotFound)
	}

	visited := map[string]bool{entityID: true}
	seenRel := make(map[string]bool)
	frontier := []string{entityID}

	var entities []kg.Entity
	var relations []kg.Relation

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, rel := range m.relations {
				var other string
				switch id {
				case rel.Source:
					other = rel.Target
				case rel.Target:
					other = rel.Source
				default:
					continue
				}
				if !seenRel[rel.ID] {
					seenRel[rel.ID] = true
					relations = append(relations, rel)
				}
				if visited[other] {
					continue
				}
				visited[other] = true
				if e, ok := m.entities[other]; ok {
					entities = append(entities, e)
					next = append(next, other)
				}
			}
		}
		frontier = next
	}

	return entities, relations, nil
}

// DeleteEntity removes an entity and every relation touching it.
func (m *MemoryGraph) DeleteEntity(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entities[id]
	if !ok {
		return fmt.Errorf("entity %q: %w", id, kg.ErrNotFound)
	}

	delete(m.entities, id)
	m.dropFromTypeIndex(e.Type, id)

	for relID, rel := range m.relations {
		if rel.Source == id || rel.Target == id {
			delete(m.relations, relID)
		}
	}
	return nil
}

// Query runs a structured query. Raw Cypher is not supported by the memory
// backend.
func (m *MemoryGraph) Query(ctx context.Context, q kg.GraphQuery) (*kg.GraphResult, error) {
	if q.Cypher != "" {
		return nil, fmt.Errorf("memory graph store does not execute cypher")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := &kg.GraphResult{}

	match := func(e kg.Entity) bool {
		if len(q.EntityTypes) > 0 {
			found := false
			for _, t := range q.EntityTypes {
				if e.Type == t {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		if q.NameLike != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(q.NameLike)) {
			return false
		}
		return true
	}

	for _, e := range m.entities {
		if match(e) {
			result.Entities = append(result.Entities, e)
			if q.Limit > 0 && len(result.Entities) >= q.Limit {
				break
			}
		}
	}

	selected := make(map[string]bool, len(result.Entities))
	for _, e := range result.Entities {
		selected[e.ID] = true
	}
	for _, rel := range m.relations {
		if selected[rel.Source] && selected[rel.Target] {
			result.Relations = append(result.Relations, rel)
		}
	}

	return result, nil
}

// Clear removes everything.
func (m *MemoryGraph) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entities = make(map[string]kg.Entity)
	m.relations = make(map[string]kg.Relation)
	m.byType = make(map[string][]string)
	return nil
}

// Close clears the graph.
func (m *MemoryGraph) Close() error {
	return m.Clear(context.Background())
}

// Len reports entity and relation counts, for logs and tests.
func (m *MemoryGraph) Len() (entities, relations int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities), len(m.relations)
}

func (m *MemoryGraph) dropFromTypeIndex(entityType, id string) {
	ids := m.byType[entityType]
	for i, existing := range ids {
		if existing == id {
			m.byType[entityType] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(m.byType[entityType]) == 0 {
		delete(m.byType, entityType)
	}
}
