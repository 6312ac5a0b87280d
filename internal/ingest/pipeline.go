package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/keyword"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/normalize"
	"github.com/hyperjump/shirabe/internal/storage"
	"github.com/hyperjump/shirabe/internal/vector"
)

// embedBatchSize bounds how many chunk texts go to the embedder at once.
const embedBatchSize = 64

// Pipeline runs ingestion end to end: normalize fragments, supersede by
// source ID, chunk, dedupe, embed, and rebuild the index artifact. The
// keyword index is optional; passing nil disables hybrid retrieval support.
type Pipeline struct {
	cfg      *config.Config
	embedder embedding.Embedder
	store    storage.Storage
	keyword  keyword.Index
	chunker  *Chunker
	logger   *zap.Logger
}

// NewPipeline creates a pipeline from validated configuration.
func NewPipeline(cfg *config.Config, embedder embedding.Embedder, store storage.Storage, kw keyword.Index, logger *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	chunker, err := NewChunker(cfg.Pipeline.MaxChars, cfg.Pipeline.OverlapChars)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:      cfg,
		embedder: embedder,
		store:    store,
		keyword:  kw,
		chunker:  chunker,
		logger:   logger,
	}, nil
}

// Run processes fragments into the document store and builds a fresh vector
// store covering the whole corpus. The returned store is not yet published;
// use Ingest for the full build-and-publish cycle.
//
// Fragments are processed in delivery order. A fragment whose normalized
// content hash matches an already stored document from a different source is
// dropped as a document-level duplicate; re-delivery under the same source ID
// supersedes the stored version instead.
func (p *Pipeline) Run(ctx context.Context, fragments []models.Fragment) (*vector.Store, *models.IngestReport, error) {
	report := &models.IngestReport{Fragments: len(fragments)}

	var newChunks []models.Chunk
	keptSources := make(map[string]struct{})
	batchHashes := make(map[string]string) // content hash -> source ID within this batch

	for i := range fragments {
		frag := &fragments[i]
		doc, err := normalize.Normalize(frag)
		if err != nil {
			if errors.Is(err, models.ErrNoContent) {
				report.DocumentsNoText++
				p.logger.Warn("Fragment has no usable text",
					zap.String("source_id", frag.SourceID))
				continue
			}
			return nil, nil, fmt.Errorf("normalize %s: %w", frag.SourceID, err)
		}

		if dup, err := p.isDuplicateDocument(ctx, doc, batchHashes); err != nil {
			return nil, nil, err
		} else if dup {
			report.DocumentsDupes++
			p.logger.Info("Dropping duplicate document",
				zap.String("source_id", doc.SourceID))
			continue
		}
		batchHashes[doc.ContentHash] = doc.SourceID

		if err := p.store.ReplaceDocument(ctx, doc); err != nil {
			return nil, nil, fmt.Errorf("store document %s: %w", doc.SourceID, err)
		}
		if p.keyword != nil {
			if err := p.keyword.DeleteSource(ctx, doc.SourceID); err != nil {
				return nil, nil, fmt.Errorf("clear keyword index for %s: %w", doc.SourceID, err)
			}
		}
		report.DocumentsKept++
		keptSources[doc.SourceID] = struct{}{}

		chunks := p.chunker.Chunk(doc)
		report.ChunksProduced += len(chunks)
		newChunks = append(newChunks, chunks...)
	}

	kept, err := p.dedupeAgainstCorpus(ctx, newChunks, report)
	if err != nil {
		return nil, nil, err
	}

	bySource := make(map[string][]models.Chunk)
	for _, c := range kept {
		bySource[c.SourceID] = append(bySource[c.SourceID], c)
	}
	for sourceID := range keptSources {
		if err := p.store.ReplaceChunks(ctx, sourceID, bySource[sourceID]); err != nil {
			return nil, nil, fmt.Errorf("store chunks for %s: %w", sourceID, err)
		}
	}

	store, titles, err := p.buildStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	if p.keyword != nil && len(kept) > 0 {
		if err := p.keyword.IndexChunks(ctx, kept, titles); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("keyword indexing: %w", err)
		}
	}

	report.ChunksIndexed = len(kept)
	return store, report, nil
}

// Ingest runs the pipeline and publishes the resulting artifact to the
// configured index directory with an atomic swap. The returned store is the
// in-memory copy of what was published, ready to serve.
func (p *Pipeline) Ingest(ctx context.Context, fragments []models.Fragment) (*vector.Store, *models.IngestReport, error) {
	store, report, err := p.Run(ctx, fragments)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Publish(p.cfg.Storage.IndexDir); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("publish index: %w", err)
	}
	p.logger.Info("Published index artifact",
		zap.String("dir", p.cfg.Storage.IndexDir),
		zap.Int("chunks", store.Size()))
	return store, report, nil
}

// Remove deletes a source and republishes the index without it.
func (p *Pipeline) Remove(ctx context.Context, sourceID string) (*vector.Store, error) {
	if err := p.store.DeleteDocument(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("delete document %s: %w", sourceID, err)
	}
	if p.keyword != nil {
		if err := p.keyword.DeleteSource(ctx, sourceID); err != nil {
			return nil, fmt.Errorf("clear keyword index for %s: %w", sourceID, err)
		}
	}
	return p.Rebuild(ctx)
}

// Rebuild re-embeds the stored corpus and publishes a fresh artifact.
func (p *Pipeline) Rebuild(ctx context.Context) (*vector.Store, error) {
	store, _, err := p.buildStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.Publish(p.cfg.Storage.IndexDir); err != nil {
		store.Close()
		return nil, fmt.Errorf("publish index: %w", err)
	}
	return store, nil
}

// isDuplicateDocument reports whether doc repeats the content of a different
// source, either stored or earlier in the current batch.
func (p *Pipeline) isDuplicateDocument(ctx context.Context, doc *models.Document, batchHashes map[string]string) (bool, error) {
	if src, ok := batchHashes[doc.ContentHash]; ok && src != doc.SourceID {
		return true, nil
	}
	existing, err := p.store.GetDocumentByHash(ctx, doc.ContentHash)
	if err != nil {
		return false, fmt.Errorf("lookup content hash: %w", err)
	}
	return existing != nil && existing.SourceID != doc.SourceID, nil
}

// dedupeAgainstCorpus seeds the deduper with chunks already persisted for
// untouched sources, then filters the new chunks. Stored chunks keep priority
// over new arrivals; within the batch, delivery order wins.
func (p *Pipeline) dedupeAgainstCorpus(ctx context.Context, chunks []models.Chunk, report *models.IngestReport) ([]models.Chunk, error) {
	deduper := NewDeduper(p.cfg.Pipeline.DedupeThreshold, p.cfg.Pipeline.ShingleSize)
	existing, err := p.store.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing chunks: %w", err)
	}
	deduper.Seed(existing)

	kept, stats := deduper.Dedupe(chunks)
	report.ChunksExactDup = stats.Exact
	report.ChunksNearDup = stats.Near
	return kept, nil
}

// buildStore embeds every stored chunk and assembles the vector store plus a
// source-to-title map for keyword indexing. Chunks are walked in insertion
// order so rebuilds are deterministic.
func (p *Pipeline) buildStore(ctx context.Context) (*vector.Store, map[string]string, error) {
	chunks, err := p.store.AllChunks(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load chunks: %w", err)
	}

	docs := make(map[string]*models.Document)
	titles := make(map[string]string)
	for i := range chunks {
		sourceID := chunks[i].SourceID
		if _, ok := docs[sourceID]; ok {
			continue
		}
		doc, err := p.store.GetDocument(ctx, sourceID)
		if err != nil {
			return nil, nil, fmt.Errorf("load document %s: %w", sourceID, err)
		}
		docs[sourceID] = doc
		titles[sourceID] = doc.Title
	}

	store, err := vector.NewStore(p.cfg.Pipeline.IndexBackend, p.embedder.ModelID(), p.embedder.Dimensions())
	if err != nil {
		return nil, nil, err
	}

	for offset := 0; offset < len(chunks); offset += embedBatchSize {
		end := offset + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}
		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("embed chunks: %w", err)
		}

		entries := make([]models.IndexEntry, len(batch))
		for i := range batch {
			doc := docs[batch[i].SourceID]
			entries[i] = models.IndexEntry{
				ChunkID:  batch[i].ID,
				SourceID: batch[i].SourceID,
				Title:    doc.Title,
				URL:      doc.URL,
				Text:     batch[i].Text,
			}
		}
		if err := store.Append(ctx, entries, vectors); err != nil {
			store.Close()
			return nil, nil, err
		}
	}
	return store, titles, nil
}
