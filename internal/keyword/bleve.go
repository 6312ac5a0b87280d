// Package keyword provides Bleve implementation of Index.
package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/shirabe/internal/models"
)

// chunkDoc is the shape Bleve indexes per chunk. Text and title use the
// standard analyzer (lowercase + tokenize, no stemming) so query terms match
// exact words; source_id is a keyword field so DeleteSource can term-match it.
type chunkDoc struct {
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// opened and reused; remove the directory to force a full re-index after a
// mapping change.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("source_id", keywordFieldMapping)
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexChunks adds or replaces chunks in one batch. titles maps source ID to
// document title so chunk hits can match on title terms too.
func (b *BleveIndex) IndexChunks(ctx context.Context, chunks []models.Chunk, titles map[string]string) error {
	batch := b.index.NewBatch()
	for i := range chunks {
		c := &chunks[i]
		doc := chunkDoc{
			SourceID: c.SourceID,
			Title:    titles[c.SourceID],
			Text:     c.Text,
		}
		if err := batch.Index(c.ID, doc); err != nil {
			return fmt.Errorf("failed to batch chunk %s: %w", c.ID, err)
		}
	}
	return b.index.Batch(batch)
}

// Search runs a match query over text and title and returns up to limit hits.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	q := bleve.NewMatchQuery(query)
	search := bleve.NewSearchRequest(q)
	search.Size = limit
	results, err := b.index.SearchInContext(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Result{ChunkID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// DeleteSource removes every chunk indexed for sourceID.
func (b *BleveIndex) DeleteSource(ctx context.Context, sourceID string) error {
	q := bleve.NewTermQuery(sourceID)
	q.SetField("source_id")
	search := bleve.NewSearchRequest(q)
	search.Size = 10000
	for {
		results, err := b.index.SearchInContext(ctx, search)
		if err != nil {
			return fmt.Errorf("Bleve source lookup failed: %w", err)
		}
		if len(results.Hits) == 0 {
			return nil
		}
		batch := b.index.NewBatch()
		for _, hit := range results.Hits {
			batch.Delete(hit.ID)
		}
		if err := b.index.Batch(batch); err != nil {
			return err
		}
		if uint64(len(results.Hits)) >= results.Total {
			return nil
		}
	}
}

// DocCount returns the total number of chunks in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
