package loader

import (
	"context"
	"io"

	"github.com/graphexio/graphex/kg"
)

// TextLoader loads a plain-text source as a single document.
type TextLoader struct {
	src  source
	opts options
}

// NewTextLoader creates a TextLoader reading from r.
func NewTextLoader(r io.Reader, opts ...Option) *TextLoader {
	return &TextLoader{src: source{r: r}, opts: newOptions(opts)}
}

// NewTextFileLoader creates a TextLoader reading the file at path.
func NewTextFileLoader(path string, opts ...Option) *TextLoader {
	return &TextLoader{src: source{path: path}, opts: newOptions(opts)}
}

// Load reads the source and returns it as one document.
func (l *TextLoader) Load(ctx context.Context) ([]kg.Document, error) {
	raw, err := l.src.read()
	if err != nil {
		return nil, err
	}
	return []kg.Document{l.src.document(l.opts, "text", string(raw))}, nil
}
