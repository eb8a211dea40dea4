package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/graphexio/graphex/extract"
	"github.com/graphexio/graphex/kg"
)

// LangChainExtractor runs extraction through any langchaingo llms.Model
// (OpenAI, Ollama, Anthropic and the rest of the provider zoo).
type LangChainExtractor struct {
	model llms.Model
	cfg   config
}

var _ extract.Extractor = (*LangChainExtractor)(nil)

// NewLangChainExtractor wraps model. A nil model is refused.
func NewLangChainExtractor(model llms.Model, opts ...Option) (*LangChainExtractor, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	return &LangChainExtractor{model: model, cfg: newConfig(opts)}, nil
}

// Extract prompts the model for entities and relationships in one shot and
// parses its JSON answer.
func (e *LangChainExtractor) Extract(ctx context.Context, text string, known []kg.Entity) ([]kg.Entity, []kg.Relation, error) {
	prompt := buildExtractionPrompt(text, e.cfg.entityTypes, known)
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, e.cfg.systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := e.model.GenerateContent(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return nil, nil, fmt.Errorf("llm generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil, errors.New("llm returned no choices")
	}
	return parseExtraction(resp.Choices[0].Content)
}
