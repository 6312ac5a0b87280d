package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hyperjump/shirabe/internal/models"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()
	a, err := e.Embed(ctx, "restart after install")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "restart after install")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at %d", i)
		}
	}
}

func TestHashEmbedder_UnitNorm(t *testing.T) {
	e := NewHashEmbedder(64)
	emb, err := e.Embed(context.Background(), "some documentation text")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v * v)
	}
	if math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("norm^2=%f, want 1", sum)
	}
}

func TestHashEmbedder_EmptyInput(t *testing.T) {
	e := NewHashEmbedder(16)
	if _, err := e.Embed(context.Background(), "   "); !errors.Is(err, models.ErrEmbedding) {
		t.Errorf("expected ErrEmbedding, got %v", err)
	}
}

func TestHashEmbedder_BatchMatchesSingle(t *testing.T) {
	e := NewHashEmbedder(32)
	ctx := context.Background()
	texts := []string{"one two", "three four"}
	batch, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatal(err)
	}
	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		if err != nil {
			t.Fatal(err)
		}
		for j := range single {
			if single[j] != batch[i][j] {
				t.Fatalf("batch differs from single for %q", text)
			}
		}
	}
}

type slowEmbedder struct{ *HashEmbedder }

func (s *slowEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Second):
		return s.HashEmbedder.Embed(ctx, text)
	}
}

func TestWithTimeout(t *testing.T) {
	e := WithTimeout(&slowEmbedder{NewHashEmbedder(8)}, time.Millisecond)
	_, err := e.Embed(context.Background(), "query")
	if !errors.Is(err, models.ErrEmbeddingTimeout) {
		t.Errorf("expected ErrEmbeddingTimeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("timeout error should wrap DeadlineExceeded")
	}
}
