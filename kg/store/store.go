package store

import (
	"fmt"
	"strings"

	"github.com/graphexio/graphex/kg"
)

// New creates a graph store from a database URL. Supported schemes are
// memory:// and falkordb://host:port/graph_name.
func New(databaseURL string) (kg.Store, error) {
	if strings.HasPrefix(databaseURL, "memory://") {
		return NewMemoryGraph(), nil
	}

	if strings.HasPrefix(databaseURL, "falkordb://") {
		return NewFalkorGraph(databaseURL)
	}

	return nil, fmt.Errorf("unsupported graph store URL %q: only memory:// and falkordb:// are supported", databaseURL)
}
