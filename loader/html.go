package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/graphexio/graphex/kg"
)

// HTMLLoader loads an HTML source as a single text document. Markup is
// sanitized before extraction, so script and style contents never reach
// the document text.
type HTMLLoader struct {
	src  source
	opts options
}

// NewHTMLLoader creates an HTMLLoader reading from r.
func NewHTMLLoader(r io.Reader, opts ...Option) *HTMLLoader {
	return &HTMLLoader{src: source{r: r}, opts: newOptions(opts)}
}

// NewHTMLFileLoader creates an HTMLLoader reading the file at path.
func NewHTMLFileLoader(path string, opts ...Option) *HTMLLoader {
	return &HTMLLoader{src: source{path: path}, opts: newOptions(opts)}
}

// Load parses the source and returns its visible text as one document.
// A page with no text content is an error.
func (l *HTMLLoader) Load(ctx context.Context) ([]kg.Document, error) {
	raw, err := l.src.read()
	if err != nil {
		return nil, err
	}

	text, err := htmlToText(raw)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("no text content found")
	}

	return []kg.Document{l.src.document(l.opts, "html", text)}, nil
}

// htmlToText sanitizes markup and extracts its visible text, one line
// per block of the source layout. The UGC policy drops script, style,
// and iframe contents along with event handlers.
func htmlToText(raw []byte) (string, error) {
	clean := bluemonday.UGCPolicy().SanitizeBytes(raw)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(clean))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	return normalizeText(doc.Text()), nil
}
