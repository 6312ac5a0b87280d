package retriever

import (
	"sort"

	"github.com/hyperjump/shirabe/internal/keyword"
	"github.com/hyperjump/shirabe/internal/vector"
)

// fusedHit holds a chunk ID and its fused keyword/semantic scores.
type fusedHit struct {
	ChunkID       string
	Score         float64
	KeywordScore  float64
	SemanticScore float64
}

// normalizeKeywordScores maps raw BM25 scores to [0,1] by dividing by the
// maximum, so they combine with cosine scores on a comparable scale.
func normalizeKeywordScores(results []*keyword.Result) map[string]float64 {
	normalized := make(map[string]float64, len(results))
	if len(results) == 0 {
		return normalized
	}
	maxScore := results[0].Score
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	for _, r := range results {
		if maxScore > 0 {
			normalized[r.ChunkID] = r.Score / maxScore
		} else {
			normalized[r.ChunkID] = 0
		}
	}
	return normalized
}

// fuse merges semantic and keyword candidates with weighted scores. Ties are
// broken by candidate discovery order (semantic hits first, then keyword-only
// hits), keeping fusion deterministic.
func fuse(semantic []vector.ScoredEntry, kw []*keyword.Result, keywordWeight, semanticWeight float64) []fusedHit {
	kwScores := normalizeKeywordScores(kw)

	byID := make(map[string]*fusedHit)
	var order []string
	for _, r := range semantic {
		id := r.Entry.ChunkID
		byID[id] = &fusedHit{ChunkID: id, SemanticScore: r.Score}
		order = append(order, id)
	}
	for _, r := range kw {
		if _, exists := byID[r.ChunkID]; !exists {
			byID[r.ChunkID] = &fusedHit{ChunkID: r.ChunkID}
			order = append(order, r.ChunkID)
		}
	}

	hits := make([]fusedHit, 0, len(order))
	for _, id := range order {
		h := byID[id]
		h.KeywordScore = kwScores[id]
		h.Score = keywordWeight*h.KeywordScore + semanticWeight*h.SemanticScore
		hits = append(hits, *h)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits
}
