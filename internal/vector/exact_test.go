package vector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/shirabe/internal/models"
)

func TestExactIndex_AddSearch(t *testing.T) {
	idx, err := NewExactIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	if err := idx.Add(ctx, []string{"a", "b", "c"}, vecs); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("got order %s, %s", results[0].ID, results[1].ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results must be ordered by descending score")
	}
}

func TestExactIndex_KLargerThanSize(t *testing.T) {
	idx, _ := NewExactIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"x"}, [][]float32{{1, 0}})
	results, err := idx.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("k beyond size should return the index size, got %d", len(results))
	}
}

func TestExactIndex_TiesKeepInsertionOrder(t *testing.T) {
	idx, _ := NewExactIndex(2)
	ctx := context.Background()
	// Identical vectors: identical scores, order must follow insertion.
	_ = idx.Add(ctx, []string{"first", "second", "third"}, [][]float32{{0, 1}, {0, 1}, {0, 1}})
	results, err := idx.Search(ctx, []float32{0, 1}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	for i, r := range results {
		if r.ID != want[i] {
			t.Errorf("rank %d: got %s, want %s", i, r.ID, want[i])
		}
	}
}

func TestExactIndex_DimensionMismatch(t *testing.T) {
	idx, _ := NewExactIndex(3)
	ctx := context.Background()
	err := idx.Add(ctx, []string{"a"}, [][]float32{{1, 0}})
	if !models.IsDimensionError(err) {
		t.Errorf("expected DimensionError on add, got %v", err)
	}
	if _, err := idx.Search(ctx, []float32{1}, 1); !models.IsDimensionError(err) {
		t.Errorf("expected DimensionError on search, got %v", err)
	}
}

func TestExactIndex_Remove(t *testing.T) {
	idx, _ := NewExactIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"x", "y"}, [][]float32{{1, 0}, {0, 1}})
	if err := idx.Remove(ctx, []string{"x"}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 1 {
		t.Errorf("expected size 1, got %d", idx.Size())
	}
}

func TestExactIndex_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	idx, _ := NewExactIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"x", "y"}, [][]float32{{1, 0}, {0.6, 0.8}})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewExactIndex(2)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("Size=%d after load", loaded.Size())
	}
	before, _ := idx.Search(ctx, []float32{1, 0}, 2)
	after, _ := loaded.Search(ctx, []float32{1, 0}, 2)
	if len(before) != len(after) {
		t.Fatal("result count differs after load")
	}
	for i := range before {
		if before[i].ID != after[i].ID || before[i].Score != after[i].Score {
			t.Errorf("result %d differs after load: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestExactIndex_LoadMissingFile(t *testing.T) {
	idx, _ := NewExactIndex(2)
	if err := idx.Load(filepath.Join(t.TempDir(), "missing.bin")); err != nil {
		t.Errorf("missing file should not error, got %v", err)
	}
}
