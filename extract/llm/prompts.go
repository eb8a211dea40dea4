package llm

import (
	"fmt"
	"strings"

	"github.com/graphexio/graphex/kg"
)

const defaultSystemPrompt = `You are an information extraction engine. Respond with JSON only, no prose.`

const extractionPromptTemplate = `Extract entities and relationships from the following text.
Focus on these entity types: %s.
Consider relationship types like: works_with, located_in, created_by, part_of, related_to.
Return a JSON response with this structure:
{
  "entities": [
    {
      "name": "entity_name",
      "type": "entity_type",
      "description": "brief description",
      "properties": {}
    }
  ],
  "relationships": [
    {
      "source": "entity1_name",
      "target": "entity2_name",
      "type": "relationship_type",
      "properties": {},
      "confidence": 0.9
    }
  ]
}

%sText: %s
`

// DefaultEntityTypes contains commonly used entity types.
var DefaultEntityTypes = []string{
	"PERSON",
	"ORGANIZATION",
	"LOCATION",
	"DATE",
	"PRODUCT",
	"EVENT",
	"CONCEPT",
	"TECHNOLOGY",
}

// buildExtractionPrompt renders the one-shot extraction prompt. Entity names
// already known from earlier chunks are folded in so the model reuses them
// instead of inventing variants.
func buildExtractionPrompt(text string, entityTypes []string, known []kg.Entity) string {
	knownLine := ""
	if names := knownNames(known); len(names) > 0 {
		knownLine = "Reuse these entity names where the text refers to them: " + strings.Join(names, ", ") + ".\n"
	}
	return fmt.Sprintf(extractionPromptTemplate, strings.Join(entityTypes, ", "), knownLine, text)
}

func knownNames(known []kg.Entity) []string {
	if len(known) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(known))
	names := make([]string, 0, len(known))
	for _, e := range known {
		if e.Name == "" || seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		names = append(names, e.Name)
	}
	return names
}

// config holds the knobs shared by all extractor implementations.
type config struct {
	entityTypes  []string
	systemPrompt string
}

// Option configures an extractor.
type Option func(*config)

// WithEntityTypes replaces the default entity type list in the prompt.
func WithEntityTypes(types ...string) Option {
	return func(c *config) {
		if len(types) > 0 {
			c.entityTypes = types
		}
	}
}

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *config) {
		if prompt != "" {
			c.systemPrompt = prompt
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		entityTypes:  DefaultEntityTypes,
		systemPrompt: defaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
