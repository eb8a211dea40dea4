package loader

import (
	"context"
	"errors"
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/graphexio/graphex/kg"
)

// MarkdownLoader loads a Markdown source as a single text document. The
// source is rendered to HTML and the visible text extracted, so heading
// markers, emphasis, and link targets drop away while the prose remains.
type MarkdownLoader struct {
	src  source
	opts options
}

// NewMarkdownLoader creates a MarkdownLoader reading from r.
func NewMarkdownLoader(r io.Reader, opts ...Option) *MarkdownLoader {
	return &MarkdownLoader{src: source{r: r}, opts: newOptions(opts)}
}

// NewMarkdownFileLoader creates a MarkdownLoader reading the file at path.
func NewMarkdownFileLoader(path string, opts ...Option) *MarkdownLoader {
	return &MarkdownLoader{src: source{path: path}, opts: newOptions(opts)}
}

// Load renders the source and returns its text as one document.
func (l *MarkdownLoader) Load(ctx context.Context) ([]kg.Document, error) {
	raw, err := l.src.read()
	if err != nil {
		return nil, err
	}

	// Parser instances are single-use.
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.Render(p.Parse(raw), renderer)

	text, err := htmlToText(rendered)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("no text content found")
	}

	return []kg.Document{l.src.document(l.opts, "markdown", text)}, nil
}
