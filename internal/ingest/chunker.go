// Package ingest provides the batch pipeline: chunking, deduplication, and
// index construction from normalized documents.
package ingest

import (
	"fmt"

	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/normalize"
	"github.com/hyperjump/shirabe/pkg/utils"
)

// Chunker splits normalized text into overlapping character windows. Split
// points prefer paragraph and sentence boundaries within a lookback region
// before falling back to a hard cut, so chunks rarely sever mid-sentence.
type Chunker struct {
	maxChars     int
	overlapChars int
	lookback     int
}

// NewChunker creates a chunker. Returns a config.ValidationError unless
// 0 <= overlapChars < maxChars.
func NewChunker(maxChars, overlapChars int) (*Chunker, error) {
	if maxChars <= 0 {
		return nil, &config.ValidationError{Field: "pipeline.max_chars", Reason: "must be positive"}
	}
	if overlapChars < 0 || overlapChars >= maxChars {
		return nil, &config.ValidationError{
			Field:  "pipeline.overlap_chars",
			Reason: fmt.Sprintf("must satisfy 0 <= overlap < max_chars (%d)", maxChars),
		}
	}
	lookback := maxChars / 4
	if lookback < 1 {
		lookback = 1
	}
	return &Chunker{maxChars: maxChars, overlapChars: overlapChars, lookback: lookback}, nil
}

// Chunk splits the document into chunks covering its entire text: the union
// of [StartOffset, EndOffset) windows has no gaps (overlaps are deliberate).
// Offsets are rune offsets into doc.Text. Chunk IDs derive from the source ID
// and start offset, so identical input yields identical IDs across runs.
func (c *Chunker) Chunk(doc *models.Document) []models.Chunk {
	runes := []rune(doc.Text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	var chunks []models.Chunk
	start := 0
	for start < n {
		end := start + c.maxChars
		if end >= n {
			end = n
		} else {
			end = c.splitPoint(runes, start, end)
		}
		text := string(runes[start:end])
		chunks = append(chunks, models.Chunk{
			ID:          fmt.Sprintf("%s:%d", doc.SourceID, start),
			SourceID:    doc.SourceID,
			Text:        text,
			StartOffset: start,
			EndOffset:   end,
			Fingerprint: Fingerprint(text),
		})
		if end >= n {
			break
		}
		next := end - c.overlapChars
		if next <= start {
			// Boundary landed inside the overlap region; advance without
			// overlap rather than re-emitting the same window.
			next = end
		}
		start = next
	}
	return chunks
}

// splitPoint returns the cut position for a window [start, hardEnd). It scans
// backward through the lookback region for a paragraph break, then a sentence
// end, then any whitespace, and falls back to the hard cut when the region
// has no boundary. The returned position is always after start.
func (c *Chunker) splitPoint(runes []rune, start, hardEnd int) int {
	limit := hardEnd - c.lookback
	if limit <= start {
		limit = start + 1
	}
	// Paragraph break: cut after the blank line.
	for i := hardEnd - 1; i > limit; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	// Sentence end followed by whitespace.
	for i := hardEnd - 1; i >= limit; i-- {
		if isSentenceEnd(runes[i-1]) && isSpace(runes[i]) {
			return i + 1
		}
	}
	for i := hardEnd - 1; i >= limit; i-- {
		if isSpace(runes[i]) {
			return i + 1
		}
	}
	return hardEnd
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}

// Fingerprint returns the content fingerprint for a chunk text: the hash of
// the case- and whitespace-folded text, used for exact duplicate detection.
func Fingerprint(text string) string {
	return normalize.HashText(utils.FoldText(text))
}
