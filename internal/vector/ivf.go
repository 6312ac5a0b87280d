package vector

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/hyperjump/shirabe/internal/models"
)

// minTrainSize is the corpus size below which the IVF index falls back to a
// full scan: with so few vectors the coarse quantizer buys nothing and recall
// would suffer for no speedup.
const minTrainSize = 256

const kmeansIterations = 10

// IVFIndex is an inverted-file (IVF-flat) approximate index: vectors are
// partitioned into nlist clusters by k-means over the stored vectors, and a
// query scans only the nprobe closest clusters. Ordering and top-k semantics
// match ExactIndex; the only approximation error is recall. Training is
// deterministic for a given insertion order (centroids seeded by position).
type IVFIndex struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	centroids  [][]float32
	lists      [][]int // cluster -> vector positions, ascending (insertion order)
	trained    bool
	mu         sync.RWMutex
}

// NewIVFIndex creates an approximate IVF-flat index with the given dimension.
func NewIVFIndex(dimensions int) (*IVFIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &IVFIndex{dimensions: dimensions}, nil
}

// Add appends vectors with the given IDs. The clustering is invalidated and
// rebuilt lazily on the next search past the training threshold.
func (x *IVFIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != x.dimensions {
			return &models.DimensionError{Got: len(vectors[i]), Want: x.dimensions}
		}
		vec := make([]float32, x.dimensions)
		copy(vec, vectors[i])
		x.ids = append(x.ids, id)
		x.vectors = append(x.vectors, vec)
	}
	x.trained = false
	return nil
}

// Search returns the top-k vectors by inner product, descending, ties by
// insertion order. Small corpora are scanned exhaustively; larger ones scan
// the nprobe nearest inverted lists.
func (x *IVFIndex) Search(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != x.dimensions {
		return nil, &models.DimensionError{Got: len(query), Want: x.dimensions}
	}
	x.mu.Lock()
	if !x.trained && len(x.vectors) >= minTrainSize {
		x.train()
	}
	x.mu.Unlock()

	x.mu.RLock()
	defer x.mu.RUnlock()
	if k <= 0 || len(x.ids) == 0 {
		return nil, nil
	}

	var candidates []int
	if x.trained {
		candidates = x.probe(query)
	} else {
		candidates = make([]int, len(x.vectors))
		for i := range candidates {
			candidates[i] = i
		}
	}

	results := make([]*Result, 0, len(candidates))
	for _, pos := range candidates {
		results = append(results, &Result{ID: x.ids[pos], Score: InnerProduct(query, x.vectors[pos])})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// probe returns candidate positions from the nprobe clusters closest to query,
// merged in ascending position so the stable sort preserves insertion order.
func (x *IVFIndex) probe(query []float32) []int {
	nprobe := len(x.centroids) / 4
	if nprobe < 1 {
		nprobe = 1
	}
	type centroidDist struct {
		cluster int
		score   float64
	}
	dists := make([]centroidDist, len(x.centroids))
	for c, centroid := range x.centroids {
		dists[c] = centroidDist{cluster: c, score: InnerProduct(query, centroid)}
	}
	sort.SliceStable(dists, func(i, j int) bool { return dists[i].score > dists[j].score })

	var candidates []int
	for _, d := range dists[:nprobe] {
		candidates = append(candidates, x.lists[d.cluster]...)
	}
	sort.Ints(candidates)
	return candidates
}

// train runs k-means over the stored vectors. nlist scales with sqrt(n);
// centroids are seeded with evenly spaced vectors so the result depends only
// on insertion order. Caller holds the write lock.
func (x *IVFIndex) train() {
	n := len(x.vectors)
	nlist := int(math.Sqrt(float64(n)))
	if nlist < 1 {
		nlist = 1
	}

	centroids := make([][]float32, nlist)
	for c := 0; c < nlist; c++ {
		seed := x.vectors[c*n/nlist]
		centroids[c] = append([]float32(nil), seed...)
	}

	assign := make([]int, n)
	for iter := 0; iter < kmeansIterations; iter++ {
		changed := false
		for i, vec := range x.vectors {
			best, bestScore := 0, math.Inf(-1)
			for c, centroid := range centroids {
				if s := InnerProduct(vec, centroid); s > bestScore {
					best, bestScore = c, s
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		// Recompute centroids as normalized means of their members.
		counts := make([]int, nlist)
		sums := make([][]float32, nlist)
		for c := range sums {
			sums[c] = make([]float32, x.dimensions)
		}
		for i, vec := range x.vectors {
			c := assign[i]
			counts[c]++
			for j, v := range vec {
				sums[c][j] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue // empty cluster keeps its previous centroid
			}
			norm := L2Norm(sums[c])
			if norm == 0 {
				norm = 1
			}
			for j := range sums[c] {
				sums[c][j] = float32(float64(sums[c][j]) / norm)
			}
			centroids[c] = sums[c]
		}
	}

	lists := make([][]int, nlist)
	for i, c := range assign {
		lists[c] = append(lists[c], i)
	}
	x.centroids = centroids
	x.lists = lists
	x.trained = true
}

// Remove removes vectors by ID and invalidates the clustering.
func (x *IVFIndex) Remove(ctx context.Context, ids []string) error {
	removeSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		removeSet[id] = true
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	newIDs := x.ids[:0]
	newVectors := x.vectors[:0]
	for i, id := range x.ids {
		if !removeSet[id] {
			newIDs = append(newIDs, id)
			newVectors = append(newVectors, x.vectors[i])
		}
	}
	x.ids = newIDs
	x.vectors = newVectors
	x.trained = false
	return nil
}

// Save persists the raw vectors to path; the clustering is rebuilt on load.
func (x *IVFIndex) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return writeVectors(path, x.dimensions, x.ids, x.vectors)
}

// Load reads vectors from path and replaces the in-memory contents.
// If the file does not exist, no error is returned and the index is unchanged.
func (x *IVFIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	ids, vectors, err := readVectors(path, x.dimensions)
	if err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = ids
	x.vectors = vectors
	x.trained = false
	return nil
}

// Size returns the number of vectors in the index.
func (x *IVFIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Close is a no-op for IVFIndex.
func (x *IVFIndex) Close() error {
	return nil
}
