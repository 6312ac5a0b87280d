package models

import "fmt"

// RetrieveQuery is a retrieval request against the published index.
type RetrieveQuery struct {
	Query string `json:"query"`
	// TopK is the maximum number of chunks to return. Zero means the
	// configured default; negative is invalid.
	TopK int `json:"top_k,omitempty"`
	// KeywordWeight and SemanticWeight control hybrid fusion. When both are
	// zero, retrieval is pure semantic (weight 1.0), which is the default
	// contract consumed by answer generation.
	KeywordWeight  float64 `json:"keyword_weight,omitempty"`
	SemanticWeight float64 `json:"semantic_weight,omitempty"`
}

// Validate checks the query and applies defaults. defaultTopK is used when
// TopK is zero. Returns an error for an empty query or non-positive TopK.
func (q *RetrieveQuery) Validate(defaultTopK int) error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.TopK == 0 {
		q.TopK = defaultTopK
	}
	if q.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", q.TopK)
	}
	if q.KeywordWeight == 0 && q.SemanticWeight == 0 {
		q.SemanticWeight = 1.0
	}
	return nil
}
