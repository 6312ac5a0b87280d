package retriever

import (
	"context"
	"testing"

	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/keyword"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/vector"
)

func testConfig() *config.Config {
	return &config.Config{
		Embedding: config.EmbeddingConfig{ModelID: "hash", Dimensions: 64},
		Pipeline: config.PipelineConfig{
			MaxChars:        1200,
			OverlapChars:    200,
			DedupeThreshold: 0.9,
			ShingleSize:     3,
			IndexBackend:    config.BackendExact,
			TopKDefault:     5,
		},
	}
}

func buildStore(t *testing.T, embedder embedding.Embedder, texts map[string]string) *vector.Store {
	t.Helper()
	store, err := vector.NewStore(config.BackendExact, embedder.ModelID(), embedder.Dimensions())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for id, text := range texts {
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			t.Fatal(err)
		}
		entry := models.IndexEntry{ChunkID: id, SourceID: id, Title: "T " + id, URL: "https://docs/" + id, Text: text}
		if err := store.Append(ctx, []models.IndexEntry{entry}, [][]float32{vec}); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestRetriever_TopK(t *testing.T) {
	cfg := testConfig()
	embedder := embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	store := buildStore(t, embedder, map[string]string{
		"a": "installing the agent requires admin rights",
		"b": "restart the service after every install",
		"c": "webhooks deliver events to your endpoint",
	})
	defer store.Close()
	r := New(cfg, embedder, store, nil, nil)

	resp, err := r.Retrieve(context.Background(), models.RetrieveQuery{Query: "installing the agent", TopK: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if resp.Results[0].ChunkID != "a" {
		t.Errorf("top result=%s, want a", resp.Results[0].ChunkID)
	}
	for i, res := range resp.Results {
		if res.Rank != i+1 {
			t.Errorf("result %d has rank %d", i, res.Rank)
		}
		if i > 0 && res.Score > resp.Results[i-1].Score {
			t.Error("results must be sorted by descending score")
		}
		if res.URL == "" || res.Title == "" {
			t.Errorf("result %d is missing citation metadata", i)
		}
	}
}

func TestRetriever_DefaultTopK(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.TopKDefault = 2
	embedder := embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	store := buildStore(t, embedder, map[string]string{
		"a": "first text", "b": "second text", "c": "third text",
	})
	defer store.Close()
	r := New(cfg, embedder, store, nil, nil)

	resp, err := r.Retrieve(context.Background(), models.RetrieveQuery{Query: "text"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("default top_k should cap results at 2, got %d", len(resp.Results))
	}
}

func TestRetriever_EmptyQuery(t *testing.T) {
	cfg := testConfig()
	embedder := embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	store := buildStore(t, embedder, nil)
	defer store.Close()
	r := New(cfg, embedder, store, nil, nil)

	if _, err := r.Retrieve(context.Background(), models.RetrieveQuery{Query: ""}); err == nil {
		t.Error("empty query must be rejected")
	}
}

func TestRetriever_EmptyIndex(t *testing.T) {
	cfg := testConfig()
	embedder := embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	store := buildStore(t, embedder, nil)
	defer store.Close()
	r := New(cfg, embedder, store, nil, nil)

	resp, err := r.Retrieve(context.Background(), models.RetrieveQuery{Query: "anything"})
	if err != nil {
		t.Fatalf("empty index must not error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %d", len(resp.Results))
	}
}

func TestRetriever_ReplaceStore(t *testing.T) {
	cfg := testConfig()
	embedder := embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	first := buildStore(t, embedder, map[string]string{"a": "old content"})
	r := New(cfg, embedder, first, nil, nil)

	second := buildStore(t, embedder, map[string]string{"b": "new content"})
	r.ReplaceStore(second)
	defer second.Close()

	resp, err := r.Retrieve(context.Background(), models.RetrieveQuery{Query: "content"})
	if err != nil {
		t.Fatal(err)
	}
	for _, res := range resp.Results {
		if res.ChunkID == "a" {
			t.Error("swapped-out store still serving")
		}
	}
}

func TestRetriever_HybridFusion(t *testing.T) {
	cfg := testConfig()
	embedder := embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	texts := map[string]string{
		"a": "installing the agent requires admin rights",
		"b": "webhooks deliver events to your endpoint",
	}
	store := buildStore(t, embedder, texts)
	defer store.Close()

	kw, err := keyword.NewBleveIndex(t.TempDir() + "/kw.bleve")
	if err != nil {
		t.Fatal(err)
	}
	defer kw.Close()
	chunks := []models.Chunk{
		{ID: "a", SourceID: "a", Text: texts["a"]},
		{ID: "b", SourceID: "b", Text: texts["b"]},
	}
	if err := kw.IndexChunks(context.Background(), chunks, map[string]string{"a": "T a", "b": "T b"}); err != nil {
		t.Fatal(err)
	}

	r := New(cfg, embedder, store, kw, nil)
	resp, err := r.Retrieve(context.Background(), models.RetrieveQuery{
		Query:          "admin rights",
		TopK:           2,
		KeywordWeight:  0.5,
		SemanticWeight: 0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("hybrid retrieval returned nothing")
	}
	if resp.Results[0].ChunkID != "a" {
		t.Errorf("top hybrid result=%s, want a", resp.Results[0].ChunkID)
	}
}
