package vector

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/hyperjump/shirabe/internal/models"
)

// ExactIndex is an in-memory vector index using brute-force inner product
// search: O(n*D) per query, exact recall. The default backend.
type ExactIndex struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewExactIndex creates a brute-force index with the given dimension.
func NewExactIndex(dimensions int) (*ExactIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &ExactIndex{
		dimensions: dimensions,
		ids:        make([]string, 0),
		vectors:    make([][]float32, 0),
	}, nil
}

// Add appends vectors with the given IDs.
func (m *ExactIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != m.dimensions {
			return &models.DimensionError{Got: len(vectors[i]), Want: m.dimensions}
		}
		vec := make([]float32, m.dimensions)
		copy(vec, vectors[i])
		m.ids = append(m.ids, id)
		m.vectors = append(m.vectors, vec)
	}
	return nil
}

// Search returns the top-k vectors by inner product, descending. Ties keep
// insertion order. k larger than the index size returns the whole index.
func (m *ExactIndex) Search(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != m.dimensions {
		return nil, &models.DimensionError{Got: len(query), Want: m.dimensions}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.ids) == 0 {
		return nil, nil
	}
	results := make([]*Result, len(m.ids))
	for i, vec := range m.vectors {
		results[i] = &Result{ID: m.ids[i], Score: InnerProduct(query, vec)}
	}
	// Stable sort over insertion order gives the deterministic tie-break.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Remove removes vectors by ID, compacting the slices in place.
func (m *ExactIndex) Remove(ctx context.Context, ids []string) error {
	removeSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		removeSet[id] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	newIDs := m.ids[:0]
	newVectors := m.vectors[:0]
	for i, id := range m.ids {
		if !removeSet[id] {
			newIDs = append(newIDs, id)
			newVectors = append(newVectors, m.vectors[i])
		}
	}
	m.ids = newIDs
	m.vectors = newVectors
	return nil
}

// Save persists the index to path.
func (m *ExactIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return writeVectors(path, m.dimensions, m.ids, m.vectors)
}

// Load reads the index from path and replaces the in-memory contents.
// If the file does not exist, no error is returned and the index is unchanged.
func (m *ExactIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	ids, vectors, err := readVectors(path, m.dimensions)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = ids
	m.vectors = vectors
	return nil
}

// Size returns the number of vectors in the index.
func (m *ExactIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Close is a no-op for ExactIndex.
func (m *ExactIndex) Close() error {
	return nil
}
