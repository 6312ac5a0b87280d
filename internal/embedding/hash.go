package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/pkg/utils"
)

// HashModelID selects the hash embedder in configuration.
const HashModelID = "hash"

// HashEmbedder produces deterministic unit-norm embeddings from word hashes.
// It is the zero-dependency fallback backend and the test double: the same
// text always gets the same vector, and texts sharing words get correlated
// vectors, which is enough for ranking and round-trip tests without a model.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns a hash embedder with the given dimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed returns a deterministic embedding derived from the text's words.
// Empty or whitespace-only input is malformed and returns models.ErrEmbedding.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty input", models.ErrEmbedding)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	for _, w := range words {
		h := HashString(w)
		// Each word contributes a sparse pseudo-random direction.
		for j := 0; j < 4; j++ {
			idx := (h + j*2654435761) % e.dimensions
			emb[idx] += float32(math.Sin(float64(h*(j+1)))*0.5 + 0.1)
		}
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// ModelID returns the model identifier.
func (e *HashEmbedder) ModelID() string {
	return HashModelID
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}
