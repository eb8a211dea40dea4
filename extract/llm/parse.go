package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/graphexio/graphex/kg"
)

type extractionPayload struct {
	Entities      []extractedEntity   `json:"entities"`
	Relationships []extractedRelation `json:"relationships"`
}

type extractedEntity struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Properties  map[string]any `json:"properties"`
}

type extractedRelation struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Confidence float64        `json:"confidence"`
}

// parseExtraction decodes an LLM extraction response into graph objects.
// Strict JSON is tried first; if that fails the markdown fences are stripped
// and the outermost object is retried. A response that still does not parse
// is an error, so the pool's retry policy gets a chance at a cleaner answer.
func parseExtraction(response string) ([]kg.Entity, []kg.Relation, error) {
	var payload extractionPayload
	if err := json.Unmarshal([]byte(response), &payload); err != nil {
		cleaned := extractJSONObject(response)
		if cleaned == "" {
			return nil, nil, fmt.Errorf("response is not extraction JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
			return nil, nil, fmt.Errorf("response is not extraction JSON: %w", err)
		}
	}

	now := time.Now()
	var entities []kg.Entity
	for _, e := range payload.Entities {
		if e.Name == "" {
			continue
		}
		props := e.Properties
		if props == nil {
			props = map[string]any{}
		}
		if e.Description != "" {
			props["description"] = e.Description
		}
		etype := e.Type
		if etype == "" {
			etype = "UNKNOWN"
		}
		entities = append(entities, kg.Entity{
			ID:         e.Name,
			Name:       e.Name,
			Type:       etype,
			Properties: props,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	var relations []kg.Relation
	for _, r := range payload.Relationships {
		if r.Source == "" || r.Target == "" {
			continue
		}
		rtype := r.Type
		if rtype == "" {
			rtype = "RELATED_TO"
		}
		relations = append(relations, kg.Relation{
			ID:         fmt.Sprintf("%s_%s_%s", r.Source, rtype, r.Target),
			Source:     r.Source,
			Target:     r.Target,
			Type:       rtype,
			Properties: r.Properties,
			Weight:     1,
			Confidence: r.Confidence,
			CreatedAt:  now,
		})
	}

	return entities, relations, nil
}

// extractJSONObject pulls the outermost JSON object out of a response that
// wraps it in markdown fences or prose. Returns "" when there is none.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
