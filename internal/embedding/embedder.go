// Package embedding provides text embedding backends and caching.
package embedding

import "context"

// Embedder produces fixed-dimension vector embeddings for text. Embedding is
// pure: the same text under the same model always yields the same vector, and
// failed calls are always safe to retry. EmbedBatch is equivalent to mapping
// Embed over the inputs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// ModelID identifies the model and version. Vectors from different model
	// IDs are never mixed in one index.
	ModelID() string
	Dimensions() int
	Close() error
}
