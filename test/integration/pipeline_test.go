// Package integration provides end-to-end tests (requires real storage and indices).
package integration

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
	"github.com/hyperjump/shirabe/internal/vector"
)

func TestIntegration_IngestPublishRetrieve(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:     filepath.Join(dir, "shirabe.db"),
			IndexDir:         filepath.Join(dir, "index"),
			KeywordIndexPath: filepath.Join(dir, "bleve"),
		},
		Embedding: config.EmbeddingConfig{ModelID: "hash", Dimensions: 64},
		Pipeline: config.PipelineConfig{
			MaxChars:        400,
			OverlapChars:    50,
			DedupeThreshold: 0.9,
			ShingleSize:     3,
			IndexBackend:    config.BackendExact,
			TopKDefault:     5,
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

	_, report, err := pipeline.Ingest(ctx, []models.Fragment{
		{SourceID: "install", Title: "Install Guide", URL: "https://docs/install",
			RawContent: "<h1>Install</h1><p>Installing the agent requires admin rights. Restart after installing.</p>"},
		{SourceID: "billing", Title: "Billing FAQ", URL: "https://docs/billing",
			RawContent: "<p>Invoices are issued monthly. Billing questions go to support.</p>"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.DocumentsKept != 2 || report.ChunksIndexed == 0 {
		t.Fatalf("report=%+v", report)
	}

	// The serving path opens the published artifact, not the build-side store.
	published, err := vector.OpenStore(cfg.Storage.IndexDir, embedder.ModelID(), embedder.Dimensions())
	if err != nil {
		t.Fatal(err)
	}
	defer published.Close()

	ret := retriever.New(cfg, embedder, published, kw, nil)
	resp, err := ret.Retrieve(ctx, models.RetrieveQuery{
		Query:          "installing the agent",
		TopK:           2,
		KeywordWeight:  0.5,
		SemanticWeight: 0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total < 1 {
		t.Fatalf("expected results, got %d", resp.Total)
	}
	top := resp.Results[0]
	if top.SourceID != "install" {
		t.Errorf("top result source = %s, want install", top.SourceID)
	}
	if top.URL != "https://docs/install" || top.Title != "Install Guide" {
		t.Errorf("citation metadata missing: %+v", top)
	}
}
