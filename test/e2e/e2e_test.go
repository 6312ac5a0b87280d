package e2e

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/ingest"
	"github.com/hyperjump/shirabe/internal/keyword"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/retriever"
	"github.com/hyperjump/shirabe/internal/storage"
)

const (
	e2eRetrieveLimit = 15
	e2eDimensions    = 64
)

func TestE2E_RetrieveReturnsCorrectChunks(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:     filepath.Join(dir, "shirabe.db"),
			IndexDir:         filepath.Join(dir, "index"),
			KeywordIndexPath: filepath.Join(dir, "bleve"),
		},
		Embedding: config.EmbeddingConfig{ModelID: "hash", Dimensions: e2eDimensions},
		Pipeline: config.PipelineConfig{
			MaxChars:        600,
			OverlapChars:    100,
			DedupeThreshold: 0.9,
			ShingleSize:     3,
			IndexBackend:    config.BackendExact,
			TopKDefault:     e2eRetrieveLimit,
			KeywordEnabled:  true,
		},
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	kw, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	defer kw.Close()

	embedder := embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	pipeline, err := ingest.NewPipeline(cfg, embedder, store, kw, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	corpus := BuildCorpus()
	if corpus.TotalPages == 0 {
		t.Fatal("corpus has no pages")
	}
	if corpus.TotalQueries == 0 {
		t.Fatal("corpus has no query cases")
	}

	vstore, report, err := pipeline.Ingest(ctx, corpus.ToFragments())
	if err != nil {
		t.Fatalf("ingest corpus: %v", err)
	}
	defer vstore.Close()
	if report.DocumentsKept != corpus.TotalPages {
		t.Fatalf("kept %d of %d pages: %+v", report.DocumentsKept, corpus.TotalPages, report)
	}

	ret := retriever.New(cfg, embedder, vstore, kw, nil)

	t.Logf("ingested %d pages; running %d query cases", corpus.TotalPages, corpus.TotalQueries)

	for _, tc := range corpus.Cases {
		t.Run(tc.Description, func(t *testing.T) {
			resp, err := ret.Retrieve(ctx, models.RetrieveQuery{
				Query:          tc.Query,
				TopK:           e2eRetrieveLimit,
				KeywordWeight:  0.5,
				SemanticWeight: 0.5,
			})
			if err != nil {
				t.Fatalf("retrieve failed: %v", err)
			}
			got := sourceIDsFromResponse(resp)
			if !containsAny(got, tc.ExpectedSources) {
				t.Errorf("query %q: expected one of %v in results, got %v",
					tc.Query, tc.ExpectedSources, got)
			}
		})
	}
}

func sourceIDsFromResponse(resp *models.RetrieveResponse) []string {
	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.SourceID)
	}
	return ids
}

func containsAny(got, expected []string) bool {
	for _, e := range expected {
		for _, g := range got {
			if g == e {
				return true
			}
		}
	}
	return false
}
