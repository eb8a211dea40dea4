package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/graphexio/graphex/kg"
)

// FalkorGraph is a kg.Store backed by FalkorDB, speaking Cypher over the
// Redis protocol (GRAPH.QUERY).
type FalkorGraph struct {
	client    redis.UniversalClient
	graphName string
}

var _ kg.Store = (*FalkorGraph)(nil)

// NewFalkorGraph connects to a FalkorDB instance. The connection string has
// the form falkordb://host:port/graph_name; the graph name defaults to
// "graphex".
func NewFalkorGraph(connectionString string) (*FalkorGraph, error) {
	u, err := url.Parse(connectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid falkordb connection string: %w", err)
	}
	if u.Scheme != "falkordb" {
		return nil, fmt.Errorf("invalid falkordb connection string: scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid falkordb connection string: missing host")
	}

	graphName := strings.TrimPrefix(u.Path, "/")
	if graphName == "" {
		graphName = "graphex"
	}

	client := redis.NewClient(&redis.Options{Addr: u.Host})
	return NewFalkorGraphWithClient(client, graphName), nil
}

// NewFalkorGraphWithClient wraps an existing go-redis client. The caller
// keeps ownership of the client's lifecycle only if it is shared; Close
// closes it.
func NewFalkorGraphWithClient(client redis.UniversalClient, graphName string) *FalkorGraph {
	return &FalkorGraph{client: client, graphName: graphName}
}

// AddEntity upserts an entity node, keyed by its ID.
func (f *FalkorGraph) AddEntity(ctx context.Context, e kg.Entity) error {
	if e.ID == "" {
		return fmt.Errorf("entity has no ID")
	}

	label := sanitizeLabel(e.Type)
	props := cypherProps(entityProps(e))
	query := fmt.Sprintf("MERGE (n:%s {id: '%s'}) SET n += %s", label, escapeString(e.ID), props)

	_, err := f.run(ctx, query)
	if err != nil {
		return fmt.Errorf("falkordb add entity %s: %w", e.ID, err)
	}
	return nil
}

// AddRelation upserts a relation between two existing entities. Returns
// kg.ErrNotFound if either endpoint is missing.
func (f *FalkorGraph) AddRelation(ctx context.Context, r kg.Relation) error {
	if r.ID == "" {
		return fmt.Errorf("relation has no ID")
	}

	relType := sanitizeLabel(r.Type)
	props := cypherProps(relationProps(r))
	query := fmt.Sprintf(
		"MATCH (a {id: '%s'}), (b {id: '%s'}) MERGE (a)-[r:%s {id: '%s'}]->(b) SET r += %s",
		escapeString(r.Source), escapeString(r.Target), relType, escapeString(r.ID), props)

	reply, err := f.run(ctx, query)
	if err != nil {
		return fmt.Errorf("falkordb add relation %s: %w", r.ID, err)
	}
	// MATCH on a missing endpoint silently matches nothing; detect that.
	if statCounter(reply.Stats, "Relationships created") == 0 && statCounter(reply.Stats, "Properties set") == 0 {
		return fmt.Errorf("relation %s: endpoints %q -> %q: %w", r.ID, r.Source, r.Target, kg.ErrNotFound)
	}
	return nil
}

// GetEntity returns the entity with the given ID.
func (f *FalkorGraph) GetEntity(ctx context.Context, id string) (kg.Entity, error) {
	query := fmt.Sprintf("MATCH (n {id: '%s'}) RETURN n", escapeString(id))
	reply, err := f.run(ctx, query)
	if err != nil {
		return kg.Entity{}, fmt.Errorf("falkordb get entity: %w", err)
	}
	if len(reply.Rows) == 0 || len(reply.Rows[0]) == 0 {
		return kg.Entity{}, fmt.Errorf("entity %q: %w", id, kg.ErrNotFound)
	}

	e, ok := parseNode(reply.Rows[0][0])
	if !ok {
		return kg.Entity{}, fmt.Errorf("falkordb get entity %q: unparseable node reply", id)
	}
	return e, nil
}

// FindEntitiesByName matches entity names case-insensitively.
func (f *FalkorGraph) FindEntitiesByName(ctx context.Context, name string) ([]kg.Entity, error) {
	query := fmt.Sprintf("MATCH (n) WHERE toLower(n.name) = toLower('%s') RETURN n", escapeString(name))
	reply, err := f.run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("falkordb find entities: %w", err)
	}

	var out []kg.Entity
	for _, row := range reply.Rows {
		if len(row) == 0 {
			continue
		}
		if e, ok := parseNode(row[0]); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// Neighbors returns entities within depth hops of entityID and the relations
// among the returned set.
func (f *FalkorGraph) Neighbors(ctx context.Context, entityID string, depth int) ([]kg.Entity, []kg.Relation, error) {
	if depth < 1 {
		depth = 1
	}

	query := fmt.Sprintf("MATCH (n {id: '%s'})-[*1..%d]-(m) RETURN DISTINCT m", escapeString(entityID), depth)
	reply, err := f.run(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("falkordb neighbors: %w", err)
	}

	ids := []string{fmt.Sprintf("'%s'", escapeString(entityID))}
	var entities []kg.Entity
	for _, row := range reply.Rows {
		if len(row) == 0 {
			continue
		}
		if e, ok := parseNode(row[0]); ok {
			entities = append(entities, e)
			ids = append(ids, fmt.Sprintf("'%s'", escapeString(e.ID)))
		}
	}

	edgeQuery := fmt.Sprintf(
		"MATCH (a)-[r]->(b) WHERE a.id IN [%s] AND b.id IN [%s] RETURN a, r, b",
		strings.Join(ids, ", "), strings.Join(ids, ", "))
	edgeReply, err := f.run(ctx, edgeQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("falkordb neighbor relations: %w", err)
	}

	var relations []kg.Relation
	seen := make(map[string]bool)
	for _, row := range edgeReply.Rows {
		if len(row) < 3 {
			continue
		}
		a, aok := parseNode(row[0])
		b, bok := parseNode(row[2])
		if !aok || !bok {
			continue
		}
		if rel, ok := parseEdge(row[1], a.ID, b.ID); ok && !seen[rel.ID] {
			seen[rel.ID] = true
			relations = append(relations, rel)
		}
	}

	return entities, relations, nil
}

// DeleteEntity removes an entity and its relations.
func (f *FalkorGraph) DeleteEntity(ctx context.Context, id string) error {
	query := fmt.Sprintf("MATCH (n {id: '%s'}) DETACH DELETE n", escapeString(id))
	reply, err := f.run(ctx, query)
	if err != nil {
		return fmt.Errorf("falkordb delete entity: %w", err)
	}
	if statCounter(reply.Stats, "Nodes deleted") == 0 {
		return fmt.Errorf("entity %q: %w", id, kg.ErrNotFound)
	}
	return nil
}

// Query runs raw Cypher when q.Cypher is set, otherwise builds a match from
// the structured fields.
func (f *FalkorGraph) Query(ctx context.Context, q kg.GraphQuery) (*kg.GraphResult, error) {
	cypher := q.Cypher
	if cypher == "" {
		cypher = buildMatchQuery(q)
	}
	if len(q.Params) > 0 {
		cypher = cypherParams(q.Params) + cypher
	}

	reply, err := f.run(ctx, cypher)
	if err != nil {
		return nil, fmt.Errorf("falkordb query: %w", err)
	}

	result := &kg.GraphResult{Rows: reply.Rows}
	seenEntities := make(map[string]bool)
	seenRels := make(map[string]bool)

	for _, row := range reply.Rows {
		var rowNodes []kg.Entity
		for _, cell := range row {
			if e, ok := parseNode(cell); ok && e.ID != "" {
				rowNodes = append(rowNodes, e)
				if !seenEntities[e.ID] {
					seenEntities[e.ID] = true
					result.Entities = append(result.Entities, e)
				}
			}
		}
		// An edge cell is resolvable only when the row carries its endpoints.
		if len(rowNodes) == 2 {
			for _, cell := range row {
				if rel, ok := parseEdge(cell, rowNodes[0].ID, rowNodes[1].ID); ok && rel.ID != "" && !seenRels[rel.ID] {
					seenRels[rel.ID] = true
					result.Relations = append(result.Relations, rel)
				}
			}
		}
	}

	return result, nil
}

// Clear drops the whole graph.
func (f *FalkorGraph) Clear(ctx context.Context) error {
	err := f.client.Do(ctx, "GRAPH.DELETE", f.graphName).Err()
	if err != nil && strings.Contains(err.Error(), "empty key") {
		// Deleting a graph that was never written to.
		return nil
	}
	return err
}

// Close closes the underlying redis client.
func (f *FalkorGraph) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func buildMatchQuery(q kg.GraphQuery) string {
	cypher := "MATCH (n)-[r]->(m)"
	var where []string

	if len(q.EntityTypes) > 0 {
		var clauses []string
		for _, t := range q.EntityTypes {
			lbl := sanitizeLabel(t)
			clauses = append(clauses, fmt.Sprintf("n:%s", lbl), fmt.Sprintf("m:%s", lbl))
		}
		where = append(where, "("+strings.Join(clauses, " OR ")+")")
	}
	if q.NameLike != "" {
		needle := escapeString(strings.ToLower(q.NameLike))
		where = append(where, fmt.Sprintf(
			"(toLower(n.name) CONTAINS '%s' OR toLower(m.name) CONTAINS '%s')", needle, needle))
	}
	if len(where) > 0 {
		cypher += " WHERE " + strings.Join(where, " AND ")
	}

	cypher += " RETURN n, r, m"
	if q.Limit > 0 {
		cypher += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	return cypher
}

func entityProps(e kg.Entity) map[string]any {
	m := make(map[string]any, len(e.Properties)+3)
	for k, v := range e.Properties {
		m[k] = v
	}
	m["name"] = e.Name
	m["type"] = e.Type
	if len(e.Embedding) > 0 {
		m["embedding"] = e.Embedding
	}
	return m
}

func relationProps(r kg.Relation) map[string]any {
	m := make(map[string]any, len(r.Properties)+3)
	for k, v := range r.Properties {
		m[k] = v
	}
	m["type"] = r.Type
	m["weight"] = r.Weight
	m["confidence"] = r.Confidence
	return m
}
