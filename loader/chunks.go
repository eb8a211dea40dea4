package loader

import (
	"github.com/google/uuid"

	"github.com/graphexio/graphex/kg"
)

// Chunks converts loaded documents into extraction chunks, one chunk
// per document with its corpus position as the index. Splitting long
// documents into smaller chunks is up to the caller.
func Chunks(docs []kg.Document) []kg.Chunk {
	chunks := make([]kg.Chunk, 0, len(docs))
	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}
		chunks = append(chunks, kg.Chunk{
			ID:         id,
			DocumentID: id,
			Text:       doc.Content,
			Index:      i,
		})
	}
	return chunks
}
