package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/graphexio/graphex/extract"
	"github.com/graphexio/graphex/kg"
)

// OpenAIExtractor runs extraction through the OpenAI chat completion API.
// It requests JSON-object responses, which api.openai.com and
// OpenAI-compatible servers like Ollama honor.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
	cfg    config
}

var _ extract.Extractor = (*OpenAIExtractor)(nil)

// NewOpenAIExtractor wraps an existing client. An empty model falls back to
// gpt-4o-mini.
func NewOpenAIExtractor(client *openai.Client, model string, opts ...Option) (*OpenAIExtractor, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIExtractor{client: client, model: model, cfg: newConfig(opts)}, nil
}

// NewOpenAICompatibleExtractor builds an extractor against any
// OpenAI-compatible endpoint, e.g. "http://localhost:11434/v1" for Ollama.
func NewOpenAICompatibleExtractor(baseURL, apiKey, model string, opts ...Option) (*OpenAIExtractor, error) {
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = baseURL
	return NewOpenAIExtractor(openai.NewClientWithConfig(clientCfg), model, opts...)
}

// Extract prompts the model for entities and relationships in one shot and
// parses its JSON answer.
func (e *OpenAIExtractor) Extract(ctx context.Context, text string, known []kg.Entity) ([]kg.Entity, []kg.Relation, error) {
	prompt := buildExtractionPrompt(text, e.cfg.entityTypes, known)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: e.cfg.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil, errors.New("chat completion returned no choices")
	}
	return parseExtraction(resp.Choices[0].Message.Content)
}
