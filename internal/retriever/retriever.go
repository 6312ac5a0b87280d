// Package retriever serves top-k chunk retrieval over a published index,
// optionally fused with keyword search.
package retriever

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/keyword"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/vector"
)

// Retriever answers queries against the current index artifact. The store
// can be swapped after a rebuild; in-flight queries finish against the store
// they started with.
type Retriever struct {
	cfg      *config.Config
	embedder embedding.Embedder
	keyword  keyword.Index
	logger   *zap.Logger

	mu    sync.RWMutex
	store *vector.Store
}

// New creates a retriever. kw may be nil to disable hybrid retrieval.
func New(cfg *config.Config, embedder embedding.Embedder, store *vector.Store, kw keyword.Index, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		cfg:      cfg,
		embedder: embedder,
		keyword:  kw,
		logger:   logger,
		store:    store,
	}
}

// ReplaceStore swaps in a freshly built store and closes the previous one.
func (r *Retriever) ReplaceStore(store *vector.Store) {
	r.mu.Lock()
	old := r.store
	r.store = store
	r.mu.Unlock()
	if old != nil && old != store {
		_ = old.Close()
	}
}

// Store returns the store currently being served.
func (r *Retriever) Store() *vector.Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store
}

// Retrieve validates the query, embeds it, and returns the top-k chunks by
// descending score. An empty index yields an empty result set, not an error.
// When the query requests a keyword weight and a keyword index is available,
// semantic and keyword candidates are fused with the requested weights.
func (r *Retriever) Retrieve(ctx context.Context, query models.RetrieveQuery) (*models.RetrieveResponse, error) {
	if err := query.Validate(r.cfg.Pipeline.TopKDefault); err != nil {
		return nil, err
	}
	start := time.Now()
	store := r.Store()

	qvec, err := r.embedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	semantic, err := store.Search(ctx, qvec, query.TopK)
	if err != nil {
		return nil, err
	}

	var results []models.RetrievedChunk
	if query.KeywordWeight > 0 && r.keyword != nil {
		results, err = r.hybrid(ctx, store, &query, semantic)
		if err != nil {
			return nil, err
		}
	} else {
		results = make([]models.RetrievedChunk, 0, len(semantic))
		for i, hit := range semantic {
			results = append(results, retrievedChunk(hit.Entry, hit.Score, i+1))
		}
	}

	r.logger.Debug("Retrieve",
		zap.String("query", query.Query),
		zap.Int("top_k", query.TopK),
		zap.Int("results", len(results)),
		zap.Duration("took", time.Since(start)))

	return &models.RetrieveResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     query.Query,
	}, nil
}

func (r *Retriever) hybrid(ctx context.Context, store *vector.Store, query *models.RetrieveQuery, semantic []vector.ScoredEntry) ([]models.RetrievedChunk, error) {
	kwHits, err := r.keyword.Search(ctx, query.Query, query.TopK)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	fused := fuse(semantic, kwHits, query.KeywordWeight, query.SemanticWeight)

	results := make([]models.RetrievedChunk, 0, query.TopK)
	for _, hit := range fused {
		if len(results) == query.TopK {
			break
		}
		entry, ok := store.Entry(hit.ChunkID)
		if !ok {
			// Keyword hit for a chunk absent from the artifact, e.g. an
			// index rebuilt between the two searches. Skip it.
			continue
		}
		results = append(results, retrievedChunk(entry, hit.Score, len(results)+1))
	}
	return results, nil
}

func retrievedChunk(entry models.IndexEntry, score float64, rank int) models.RetrievedChunk {
	return models.RetrievedChunk{
		ChunkID:  entry.ChunkID,
		SourceID: entry.SourceID,
		Title:    entry.Title,
		URL:      entry.URL,
		Text:     entry.Text,
		Score:    score,
		Rank:     rank,
	}
}
