// Package loader turns raw text, HTML, and Markdown sources into
// documents ready for chunking and extraction.
package loader

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/graphexio/graphex/kg"
)

// Loader reads a source into one or more documents.
type Loader interface {
	Load(ctx context.Context) ([]kg.Document, error)
}

type options struct {
	id       string
	metadata map[string]any
}

// Option configures a loader.
type Option func(*options)

// WithID sets the document ID. File loaders default to the file path,
// reader loaders to a random UUID.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithMetadata merges metadata into every loaded document.
func WithMetadata(metadata map[string]any) Option {
	return func(o *options) {
		if o.metadata == nil {
			o.metadata = make(map[string]any)
		}
		maps.Copy(o.metadata, metadata)
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// source is the content behind a loader, either an open reader or a
// file path.
type source struct {
	r    io.Reader
	path string
}

func (s source) read() ([]byte, error) {
	if s.path != "" {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", s.path, err)
		}
		return data, nil
	}
	data, err := io.ReadAll(s.r)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	return data, nil
}

// document assembles the loaded content into a kg.Document, applying
// default ID and metadata rules.
func (s source) document(opts options, kind, content string) kg.Document {
	metadata := map[string]any{"type": kind}
	if s.path != "" {
		metadata["source"] = s.path
	}
	maps.Copy(metadata, opts.metadata)

	id := opts.id
	if id == "" {
		if s.path != "" {
			id = s.path
		} else {
			id = uuid.NewString()
		}
	}

	return kg.Document{
		ID:        id,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}

// normalizeText collapses the runs of spaces and blank lines that tag
// removal leaves behind, keeping one line per source block.
func normalizeText(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
