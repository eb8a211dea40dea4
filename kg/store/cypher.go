package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/graphexio/graphex/kg"
)

// cypherReply is a decoded GRAPH.QUERY response: header row, result rows,
// and the trailing statistics strings.
type cypherReply struct {
	Header []string
	Rows   [][]any
	Stats  []string
}

// run executes one Cypher statement against the graph.
func (f *FalkorGraph) run(ctx context.Context, query string) (*cypherReply, error) {
	res, err := f.client.Do(ctx, "GRAPH.QUERY", f.graphName, query).Result()
	if err != nil {
		return nil, err
	}

	raw, ok := res.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected GRAPH.QUERY response type %T", res)
	}

	reply := &cypherReply{}
	switch len(raw) {
	case 3:
		// header, rows, stats
		if header, ok := raw[0].([]any); ok {
			reply.Header = make([]string, len(header))
			for i, h := range header {
				reply.Header[i] = asString(h)
			}
		}
		reply.Rows = decodeRows(raw[1])
		reply.Stats = decodeStats(raw[2])
	case 2:
		// write-only statements return rows and stats
		reply.Rows = decodeRows(raw[0])
		reply.Stats = decodeStats(raw[1])
	case 1:
		reply.Stats = decodeStats(raw[0])
	default:
		return nil, fmt.Errorf("unexpected GRAPH.QUERY response length %d", len(raw))
	}

	return reply, nil
}

func decodeRows(v any) [][]any {
	rows, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		if cells, ok := row.([]any); ok {
			out = append(out, cells)
		}
	}
	return out
}

func decodeStats(v any) []string {
	stats, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = asString(s)
	}
	return out
}

// statCounter extracts the integer from a statistics line such as
// "Nodes created: 2". Missing stats count as zero.
func statCounter(stats []string, name string) int {
	for _, s := range stats {
		if !strings.HasPrefix(s, name+":") {
			continue
		}
		val := strings.TrimSpace(strings.TrimPrefix(s, name+":"))
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return 0
}

var labelRegex = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitizeLabel makes an entity type or relation type safe for use as a
// Cypher label.
func sanitizeLabel(l string) string {
	clean := labelRegex.ReplaceAllString(l, "_")
	if clean == "" {
		return "Entity"
	}
	return clean
}

// escapeString escapes a value for inclusion in a single-quoted Cypher
// string literal.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// cypherProps renders a property map as a Cypher map literal. Keys are
// sorted so generated queries are deterministic.
func cypherProps(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", sanitizeLabel(k), cypherValue(m[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func cypherValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + escapeString(x) + "'"
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []float32:
		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		parts := make([]string, len(x))
		for i, s := range x {
			parts[i] = "'" + escapeString(s) + "'"
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "'" + escapeString(fmt.Sprint(x)) + "'"
	}
}

// cypherParams renders a parameter map as a CYPHER prefix, the FalkorDB
// mechanism for bound parameters.
func cypherParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", sanitizeLabel(k), cypherValue(params[k])))
	}
	return "CYPHER " + strings.Join(parts, " ") + " "
}

// parseNode decodes a node cell from a GRAPH.QUERY reply. The verbose reply
// shape is a list of labeled fields:
//
//	[["id", 7], ["labels", ["Person"]], ["properties", [["name", "Ada"], ...]]]
//
// The graphex "id" property, not the internal graph id, becomes Entity.ID.
func parseNode(obj any) (kg.Entity, bool) {
	fields, ok := obj.([]any)
	if !ok || len(fields) == 0 {
		return kg.Entity{}, false
	}

	e := kg.Entity{Properties: make(map[string]any)}
	recognized := false

	for _, field := range fields {
		pair, ok := field.([]any)
		if !ok || len(pair) < 2 {
			continue
		}
		switch asString(pair[0]) {
		case "labels":
			recognized = true
			if labels, ok := pair[1].([]any); ok && len(labels) > 0 {
				e.Type = asString(labels[0])
			}
		case "properties":
			recognized = true
			props, ok := pair[1].([]any)
			if !ok {
				continue
			}
			for _, p := range props {
				kv, ok := p.([]any)
				if !ok || len(kv) < 2 {
					continue
				}
				key := asString(kv[0])
				val := normalizeScalar(kv[1])
				switch key {
				case "id":
					e.ID = asString(val)
				case "name":
					e.Name = asString(val)
				case "type":
					// The label already carries the type; keep the property
					// copy only when no label was present.
					if e.Type == "" {
						e.Type = asString(val)
					}
				default:
					e.Properties[key] = val
				}
			}
		case "id":
			recognized = true
		}
	}

	if !recognized {
		return kg.Entity{}, false
	}
	return e, true
}

// parseEdge decodes an edge cell. Source and target entity IDs come from the
// surrounding row since the wire format carries only internal node ids.
func parseEdge(obj any, sourceID, targetID string) (kg.Relation, bool) {
	fields, ok := obj.([]any)
	if !ok || len(fields) == 0 {
		return kg.Relation{}, false
	}

	rel := kg.Relation{
		Source:     sourceID,
		Target:     targetID,
		Properties: make(map[string]any),
	}
	recognized := false

	for _, field := range fields {
		pair, ok := field.([]any)
		if !ok || len(pair) < 2 {
			continue
		}
		switch asString(pair[0]) {
		case "type":
			recognized = true
			rel.Type = asString(pair[1])
		case "relationships", "src_node", "dest_node":
			recognized = true
		case "properties":
			props, ok := pair[1].([]any)
			if !ok {
				continue
			}
			for _, p := range props {
				kv, ok := p.([]any)
				if !ok || len(kv) < 2 {
					continue
				}
				key := asString(kv[0])
				val := normalizeScalar(kv[1])
				switch key {
				case "id":
					rel.ID = asString(val)
				case "type":
					if rel.Type == "" {
						rel.Type = asString(val)
					}
				case "weight":
					rel.Weight = toFloat(val)
				case "confidence":
					rel.Confidence = toFloat(val)
				default:
					rel.Properties[key] = val
				}
			}
		}
	}

	if !recognized || rel.Type == "" {
		return kg.Relation{}, false
	}
	return rel, true
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// normalizeScalar converts wire scalars ([]byte, integer strings) into
// plain Go values.
func normalizeScalar(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return 0
}
