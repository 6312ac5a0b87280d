package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoContent is returned by normalization when a fragment yields no
// extractable text. The document is dropped; ingestion of the batch continues.
var ErrNoContent = errors.New("no extractable text")

// ErrEmbedding is returned for malformed or empty embedder input. Embedding is
// pure and side-effect-free, so callers may always retry.
var ErrEmbedding = errors.New("embedding failed")

// ErrEmbeddingTimeout is returned when an embedding call exceeds its deadline.
// It wraps context.DeadlineExceeded so errors.Is works on either.
var ErrEmbeddingTimeout = fmt.Errorf("embedding timed out: %w", context.DeadlineExceeded)

// DimensionError reports a vector whose dimension does not match the index.
// At build time it signals an embedding model/version mismatch and is fatal.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: got %d, expected %d", e.Got, e.Want)
}

// IsDimensionError reports whether err is (or wraps) a DimensionError.
func IsDimensionError(err error) bool {
	var de *DimensionError
	return errors.As(err, &de)
}
