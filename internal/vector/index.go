// Package vector provides vector index backends, similarity search, and the
// persisted index artifact.
package vector

import "context"

// Index defines vector storage and similarity search over unit-norm vectors.
// Scores are inner products, which equal cosine similarity for normalized
// input; results are ordered by descending score with ties broken by
// insertion order. Implementations are safe for concurrent searches; Add is
// serialized against searches, so a search observes either the pre- or
// post-append state, never a partial one.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Remove(ctx context.Context, ids []string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// Result is a single vector search hit. ID is the chunk ID.
type Result struct {
	ID    string
	Score float64
}
