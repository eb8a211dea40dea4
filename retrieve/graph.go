package retrieve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/graphexio/graphex/kg"
)

// GraphRetriever matches query terms against entity names and renders each
// matched entity's neighborhood as a pseudo-chunk.
type GraphRetriever struct {
	graph kg.Store
	cfg   config
}

var _ Retriever = (*GraphRetriever)(nil)

// NewGraphRetriever creates a retriever over a knowledge graph.
func NewGraphRetriever(graph kg.Store, opts ...Option) (*GraphRetriever, error) {
	if graph == nil {
		return nil, errors.New("graph store is required")
	}
	return &GraphRetriever{
		graph: graph,
		cfg:   newConfig(opts),
	}, nil
}

// Retrieve finds entities named in the query, expands their neighborhoods,
// and returns one scored pseudo-chunk per matched entity. Better-connected
// entities score higher.
func (r *GraphRetriever) Retrieve(ctx context.Context, query string) ([]Result, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	matched := make(map[string]kg.Entity)
	for _, term := range terms {
		entities, err := r.graph.FindEntitiesByName(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("find entities for %q: %w", term, err)
		}
		for _, e := range entities {
			matched[e.ID] = e
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(matched))
	for _, e := range matched {
		neighbors, relations, err := r.graph.Neighbors(ctx, e.ID, r.cfg.graphDepth)
		if err != nil {
			return nil, fmt.Errorf("expand entity %s: %w", e.ID, err)
		}

		score := 0.7 + 0.05*float64(len(relations))
		if score > 1.0 {
			score = 1.0
		}

		results = append(results, Result{
			Chunk: kg.Chunk{
				ID:   "graph:" + e.ID,
				Text: renderSubgraph(e, neighbors, relations),
			},
			Score:  score,
			Source: "graph",
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	out := make([]Result, 0, len(results))
	for _, res := range results {
		if res.Score < r.cfg.scoreThreshold {
			continue
		}
		out = append(out, res)
		if len(out) == r.cfg.k {
			break
		}
	}
	return out, nil
}

// queryTerms returns candidate entity names from a query: every word of
// three letters or more that is not a stop word, plus every adjacent word
// pair, since entity names are often multi-word.
func queryTerms(query string) []string {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var terms []string
	seen := make(map[string]bool)
	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}

	for i, word := range words {
		if len(word) >= 3 && !stopWords[word] {
			add(word)
		}
		if i+1 < len(words) {
			add(word + " " + words[i+1])
		}
	}
	return terms
}

// stopWords are common words skipped during entity matching. Words shorter
// than three letters are skipped unconditionally.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"that": true, "these": true, "those": true, "what": true, "where": true,
	"when": true, "who": true, "whom": true, "whose": true, "which": true,
	"how": true, "why": true, "are": true, "was": true, "were": true,
	"have": true, "has": true, "had": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "can": true,
	"may": true, "might": true, "about": true, "between": true, "into": true,
	"their": true, "there": true, "they": true, "you": true, "she": true,
	"his": true, "her": true, "its": true, "our": true, "not": true,
}

// renderSubgraph turns a matched entity and its neighborhood into text an
// LLM can consume as context.
func renderSubgraph(e kg.Entity, neighbors []kg.Entity, relations []kg.Relation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entity: %s\nType: %s\n", e.Name, e.Type)
	if desc, ok := e.Properties["description"]; ok {
		fmt.Fprintf(&b, "Description: %v\n", desc)
	}

	if len(relations) > 0 {
		names := make(map[string]string, len(neighbors)+1)
		names[e.ID] = e.Name
		for _, n := range neighbors {
			names[n.ID] = n.Name
		}
		resolve := func(id string) string {
			if name := names[id]; name != "" {
				return name
			}
			return id
		}

		b.WriteString("Relations:\n")
		for _, rel := range relations {
			fmt.Fprintf(&b, "%s -[%s]-> %s\n", resolve(rel.Source), rel.Type, resolve(rel.Target))
		}
	}

	return b.String()
}
