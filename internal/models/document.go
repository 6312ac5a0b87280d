// Package models defines core data structures for fragments, documents, chunks, and retrieval results.
package models

import "time"

// Fragment is one raw record handed over by the scraper. SourceID is the
// natural key: re-delivering a fragment with the same SourceID supersedes
// everything previously ingested for it.
type Fragment struct {
	SourceID   string `json:"source_id"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	RawContent string `json:"raw_content"`
}

// Document is a normalized fragment. It is created once after normalization
// and never mutated; a re-scrape of the same SourceID produces a new Document
// that replaces this one.
type Document struct {
	SourceID    string    `json:"source_id" db:"source_id"`
	Title       string    `json:"title" db:"title"`
	URL         string    `json:"url" db:"url"`
	Text        string    `json:"text" db:"text"`
	ContentHash string    `json:"content_hash" db:"content_hash"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Chunk is a bounded contiguous span of a document's normalized text, the
// unit of embedding and retrieval. ID is derived from SourceID and StartOffset
// so re-runs over identical input produce identical chunk IDs.
type Chunk struct {
	ID          string    `json:"id" db:"id"`
	SourceID    string    `json:"source_id" db:"source_id"`
	Text        string    `json:"text" db:"text"`
	StartOffset int       `json:"start_offset" db:"start_offset"`
	EndOffset   int       `json:"end_offset" db:"end_offset"`
	Fingerprint string    `json:"fingerprint" db:"fingerprint"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// IndexEntry is one persisted record of the published index artifact. The
// artifact is self-describing: entries carry the document metadata snapshot
// needed for citations, so serving never joins against the document store.
type IndexEntry struct {
	ChunkID  string `json:"chunk_id"`
	SourceID string `json:"source_id"`
	Title    string `json:"title,omitempty"`
	URL      string `json:"url,omitempty"`
	Text     string `json:"text"`
}

// RetrievedChunk is a single retrieval hit exposed to answer generation.
type RetrievedChunk struct {
	ChunkID  string  `json:"chunk_id"`
	SourceID string  `json:"source_id"`
	Title    string  `json:"title,omitempty"`
	URL      string  `json:"url,omitempty"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}
