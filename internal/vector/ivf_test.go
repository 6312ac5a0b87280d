package vector

import (
	"context"
	"fmt"
	"math"
	"testing"
)

// clusteredVectors builds n unit vectors spread over a few directions so the
// coarse quantizer has real structure to find.
func clusteredVectors(n, dim int) [][]float32 {
	vecs := make([][]float32, n)
	for i := 0; i < n; i++ {
		v := make([]float32, dim)
		base := i % dim
		v[base] = 1
		v[(base+1)%dim] = float32(i%13) * 0.05
		norm := L2Norm(v)
		for j := range v {
			v[j] = float32(float64(v[j]) / norm)
		}
		vecs[i] = v
	}
	return vecs
}

func TestIVFIndex_SmallCorpusIsExact(t *testing.T) {
	ivf, err := NewIVFIndex(4)
	if err != nil {
		t.Fatal(err)
	}
	exact, _ := NewExactIndex(4)
	ctx := context.Background()

	vecs := clusteredVectors(50, 4)
	ids := make([]string, len(vecs))
	for i := range ids {
		ids[i] = fmt.Sprintf("c%03d", i)
	}
	_ = ivf.Add(ctx, ids, vecs)
	_ = exact.Add(ctx, ids, vecs)

	query := vecs[7]
	got, err := ivf.Search(ctx, query, 5)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := exact.Search(ctx, query, 5)
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i].ID != want[i].ID {
			t.Errorf("rank %d: got %s, want %s", i, got[i].ID, want[i].ID)
		}
	}
}

func TestIVFIndex_TrainedSearchFindsNeighbors(t *testing.T) {
	ivf, _ := NewIVFIndex(8)
	ctx := context.Background()

	vecs := clusteredVectors(minTrainSize+100, 8)
	ids := make([]string, len(vecs))
	for i := range ids {
		ids[i] = fmt.Sprintf("c%04d", i)
	}
	if err := ivf.Add(ctx, ids, vecs); err != nil {
		t.Fatal(err)
	}

	// Query with a stored vector: the vector itself must come back first.
	query := vecs[16]
	results, err := ivf.Search(ctx, query, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("no results from trained index")
	}
	if math.Abs(results[0].Score-1.0) > 1e-4 {
		t.Errorf("top score %f, want ~1.0 (the query vector is in the index)", results[0].Score)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Error("results must be ordered by descending score")
		}
	}
}

func TestIVFIndex_Deterministic(t *testing.T) {
	ctx := context.Background()
	vecs := clusteredVectors(minTrainSize+10, 8)
	ids := make([]string, len(vecs))
	for i := range ids {
		ids[i] = fmt.Sprintf("c%04d", i)
	}

	run := func() []string {
		ivf, _ := NewIVFIndex(8)
		_ = ivf.Add(ctx, ids, vecs)
		results, err := ivf.Search(ctx, vecs[3], 10)
		if err != nil {
			t.Fatal(err)
		}
		out := make([]string, len(results))
		for i, r := range results {
			out[i] = r.ID
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs differ at rank %d: %s vs %s", i, a[i], b[i])
		}
	}
}
