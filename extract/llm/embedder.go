package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"

	"github.com/graphexio/graphex/kg"
)

// LangChainEmbedder adapts a langchaingo embedder to kg.Embedder so chunk
// vectors can come from the same provider stack as extraction.
type LangChainEmbedder struct {
	embedder embeddings.Embedder
}

var _ kg.Embedder = (*LangChainEmbedder)(nil)

// NewLangChainEmbedder wraps e. A nil embedder is refused.
func NewLangChainEmbedder(e embeddings.Embedder) (*LangChainEmbedder, error) {
	if e == nil {
		return nil, errors.New("embedder is required")
	}
	return &LangChainEmbedder{embedder: e}, nil
}

// EmbedText embeds a single text.
func (l *LangChainEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := l.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vec, nil
}

// EmbedTexts embeds a batch of texts, one vector per input.
func (l *LangChainEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := l.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	return vecs, nil
}
