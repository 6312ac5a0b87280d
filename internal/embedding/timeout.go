package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/shirabe/internal/models"
)

// timeoutEmbedder bounds each embedding call with a deadline. Deadline
// failures surface as models.ErrEmbeddingTimeout; because embedding is pure,
// the caller may retry without side effects.
type timeoutEmbedder struct {
	Embedder
	timeout time.Duration
}

// WithTimeout wraps e so every Embed/EmbedBatch call is bounded by timeout.
// A non-positive timeout returns e unchanged.
func WithTimeout(e Embedder, timeout time.Duration) Embedder {
	if timeout <= 0 {
		return e
	}
	return &timeoutEmbedder{Embedder: e, timeout: timeout}
}

func (t *timeoutEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	emb, err := t.Embedder.Embed(ctx, text)
	return emb, mapDeadline(err)
}

func (t *timeoutEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	embs, err := t.Embedder.EmbedBatch(ctx, texts)
	return embs, mapDeadline(err)
}

func mapDeadline(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w", models.ErrEmbeddingTimeout)
	}
	return err
}
