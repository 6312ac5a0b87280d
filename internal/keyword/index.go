// Package keyword provides BM25 keyword indexing over chunks, used for
// optional hybrid retrieval alongside the vector index.
package keyword

import (
	"context"

	"github.com/hyperjump/shirabe/internal/models"
)

// Index defines keyword search operations over chunks.
type Index interface {
	// IndexChunks adds or replaces chunks in the index, keyed by chunk ID.
	IndexChunks(ctx context.Context, chunks []models.Chunk, titles map[string]string) error
	// Search returns up to limit chunk hits for a free-text query.
	Search(ctx context.Context, query string, limit int) ([]*Result, error)
	// DeleteSource removes all chunks belonging to a source.
	DeleteSource(ctx context.Context, sourceID string) error
	// DocCount returns the number of indexed chunks.
	DocCount() (uint64, error)
	Close() error
}

// Result is a single keyword search hit.
type Result struct {
	ChunkID string
	Score   float64
}
