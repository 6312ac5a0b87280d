package vector

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/shirabe/internal/models"
)

// Artifact file names inside a published index directory.
const (
	manifestFile = "manifest.yaml"
	vectorsFile  = "vectors.bin"
	metaFile     = "meta.jsonl"
)

// Manifest describes a persisted index artifact. An artifact built with a
// different model or dimension must not be served against a mismatched
// embedder; OpenStore surfaces that as a DimensionError.
type Manifest struct {
	Backend    string    `yaml:"backend"`
	ModelID    string    `yaml:"model_id"`
	Dimensions int       `yaml:"dimensions"`
	Count      int       `yaml:"count"`
	CreatedAt  time.Time `yaml:"created_at"`
}

// ScoredEntry is an index entry with its similarity score.
type ScoredEntry struct {
	Entry models.IndexEntry
	Score float64
}

// Store couples a vector index with the metadata needed for citations, making
// the persisted artifact self-describing: retrieval never joins against the
// document store. The store is immutable from the reader's perspective;
// appends are serialized against concurrent searches.
type Store struct {
	backend    string
	modelID    string
	dimensions int
	index      Index
	entries    map[string]models.IndexEntry
	order      []string // chunk IDs in insertion order, drives meta.jsonl
	mu         sync.RWMutex
}

// NewStore creates an empty store for the given backend, model, and dimension.
func NewStore(backend, modelID string, dimensions int) (*Store, error) {
	idx, err := NewIndex(backend, dimensions)
	if err != nil {
		return nil, err
	}
	return &Store{
		backend:    backend,
		modelID:    modelID,
		dimensions: dimensions,
		index:      idx,
		entries:    make(map[string]models.IndexEntry),
	}, nil
}

// Append adds entries and their vectors to the store. Entries and vectors are
// parallel slices sharing one dimension D; a mismatch fails with a
// DimensionError and leaves the store unchanged.
func (s *Store) Append(ctx context.Context, entries []models.IndexEntry, vectors [][]float32) error {
	if len(entries) != len(vectors) {
		return fmt.Errorf("entries and vectors length mismatch: %d vs %d", len(entries), len(vectors))
	}
	for _, v := range vectors {
		if len(v) != s.dimensions {
			return &models.DimensionError{Got: len(v), Want: s.dimensions}
		}
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ChunkID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.index.Add(ctx, ids, vectors); err != nil {
		return err
	}
	for _, e := range entries {
		if _, exists := s.entries[e.ChunkID]; !exists {
			s.order = append(s.order, e.ChunkID)
		}
		s.entries[e.ChunkID] = e
	}
	return nil
}

// RemoveSource drops every entry belonging to sourceID. Used when a source is
// re-ingested: replacement, not in-place mutation.
func (s *Store) RemoveSource(ctx context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	kept := s.order[:0]
	for _, id := range s.order {
		if s.entries[id].SourceID == sourceID {
			removed = append(removed, id)
			delete(s.entries, id)
		} else {
			kept = append(kept, id)
		}
	}
	s.order = kept
	if len(removed) == 0 {
		return nil
	}
	return s.index.Remove(ctx, removed)
}

// Search returns up to k entries ordered by descending similarity.
// An empty store returns an empty result, not an error.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]ScoredEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results, err := s.index.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	scored := make([]ScoredEntry, 0, len(results))
	for _, r := range results {
		entry, ok := s.entries[r.ID]
		if !ok {
			continue
		}
		scored = append(scored, ScoredEntry{Entry: entry, Score: r.Score})
	}
	return scored, nil
}

// Entry returns the stored entry for a chunk ID.
func (s *Store) Entry(chunkID string) (models.IndexEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[chunkID]
	return entry, ok
}

// Size returns the number of indexed entries.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// ModelID returns the embedding model the artifact was built with.
func (s *Store) ModelID() string { return s.modelID }

// Dimensions returns the vector dimension of the artifact.
func (s *Store) Dimensions() int { return s.dimensions }

// Backend returns the index backend name.
func (s *Store) Backend() string { return s.backend }

// Close releases the underlying index.
func (s *Store) Close() error {
	return s.index.Close()
}

// Publish persists the store to dir using rebuild-then-atomic-swap: the
// artifact is fully written to a temporary sibling directory and then renamed
// over the published path, so readers never observe a partial write and a
// failed save leaves the previous good artifact authoritative.
func (s *Store) Publish(dir string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmp := dir + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return fmt.Errorf("clear temp artifact: %w", err)
	}
	if err := os.MkdirAll(tmp, 0755); err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}

	if err := s.writeArtifact(tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}

	// Swap: move the old artifact aside, promote the new one, drop the old.
	old := dir + ".old"
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("clear old artifact: %w", err)
	}
	if _, err := os.Stat(dir); err == nil {
		if err := os.Rename(dir, old); err != nil {
			return fmt.Errorf("retire old artifact: %w", err)
		}
	}
	if err := os.Rename(tmp, dir); err != nil {
		// Promote failed: restore the previous artifact.
		_ = os.Rename(old, dir)
		return fmt.Errorf("publish artifact: %w", err)
	}
	_ = os.RemoveAll(old)
	return nil
}

func (s *Store) writeArtifact(dir string) error {
	manifest := Manifest{
		Backend:    s.backend,
		ModelID:    s.modelID,
		Dimensions: s.dimensions,
		Count:      len(s.order),
		CreatedAt:  time.Now().UTC(),
	}
	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if err := s.index.Save(filepath.Join(dir, vectorsFile)); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, metaFile))
	if err != nil {
		return fmt.Errorf("create meta file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, id := range s.order {
		entry := s.entries[id]
		if err := enc.Encode(&entry); err != nil {
			return fmt.Errorf("write meta entry: %w", err)
		}
	}
	return w.Flush()
}

// OpenStore loads a published artifact from dir. The serving process only
// ever needs this; it never builds. wantModelID and wantDimensions guard
// against serving an artifact built with a different embedder: a mismatch is
// a DimensionError (model/version mismatch), not a corrupt artifact. Pass an
// empty model ID or zero dimensions to skip the respective check.
func OpenStore(dir, wantModelID string, wantDimensions int) (*Store, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if wantDimensions > 0 && manifest.Dimensions != wantDimensions {
		return nil, &models.DimensionError{Got: manifest.Dimensions, Want: wantDimensions}
	}
	if wantModelID != "" && manifest.ModelID != wantModelID {
		return nil, fmt.Errorf("artifact built with model %q, embedder is %q", manifest.ModelID, wantModelID)
	}

	s, err := NewStore(manifest.Backend, manifest.ModelID, manifest.Dimensions)
	if err != nil {
		return nil, err
	}
	if err := s.index.Load(filepath.Join(dir, vectorsFile)); err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}

	f, err := os.Open(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, fmt.Errorf("open meta file: %w", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry models.IndexEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("parse meta entry: %w", err)
		}
		s.entries[entry.ChunkID] = entry
		s.order = append(s.order, entry.ChunkID)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read meta file: %w", err)
	}
	return s, nil
}
