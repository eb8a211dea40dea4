package extract

import (
	"context"
	"sync"

	"github.com/graphexio/graphex/kg"
)

// Extractor turns chunk text into graph entities and relations. The known
// slice carries entities already extracted earlier in the batch so
// implementations can keep names consistent across chunks; it may be empty
// and implementations are free to ignore it.
//
// Implementations must honor ctx cancellation, but the pool guards every
// call with its own deadline so even a blocking implementation cannot stall
// a worker.
type Extractor interface {
	Extract(ctx context.Context, text string, known []kg.Entity) ([]kg.Entity, []kg.Relation, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, text string, known []kg.Entity) ([]kg.Entity, []kg.Relation, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, text string, known []kg.Entity) ([]kg.Entity, []kg.Relation, error) {
	return f(ctx, text, known)
}

// knownEntities accumulates successfully extracted entities for one batch so
// later chunks can see what earlier chunks produced.
type knownEntities struct {
	mu       sync.Mutex
	entities []kg.Entity
}

func newKnownEntities() *knownEntities {
	return &knownEntities{}
}

func (k *knownEntities) add(entities []kg.Entity) {
	if len(entities) == 0 {
		return
	}
	k.mu.Lock()
	k.entities = append(k.entities, entities...)
	k.mu.Unlock()
}

func (k *knownEntities) snapshot() []kg.Entity {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.entities) == 0 {
		return nil
	}
	out := make([]kg.Entity, len(k.entities))
	copy(out, k.entities)
	return out
}
