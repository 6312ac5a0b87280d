package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: "./data/db/documents.db"
watch:
  directories: ["./drop"]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "documents.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	if len(cfg.Watch.Directories) != 1 {
		t.Fatalf("watch directories: got %d", len(cfg.Watch.Directories))
	}
	wantWatch := filepath.Join(dir, "drop")
	if cfg.Watch.Directories[0] != wantWatch {
		t.Errorf("watch directory = %s, want %s", cfg.Watch.Directories[0], wantWatch)
	}
}

func TestLoad_invalidPipelineRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
pipeline:
  max_chars: 100
  overlap_chars: 100
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "pipeline.overlap_chars" {
		t.Errorf("field = %s", verr.Field)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.ModelID != "hash" {
		t.Errorf("default model_id: got %s", cfg.Embedding.ModelID)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Pipeline.MaxChars != 1200 || cfg.Pipeline.OverlapChars != 200 {
		t.Errorf("default chunking: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.DedupeThreshold != 0.90 {
		t.Errorf("default dedupe_threshold: got %f", cfg.Pipeline.DedupeThreshold)
	}
	if cfg.Pipeline.IndexBackend != BackendExact {
		t.Errorf("default index_backend: got %s", cfg.Pipeline.IndexBackend)
	}
	if cfg.Pipeline.TopKDefault != 5 {
		t.Errorf("default top_k_default: got %d", cfg.Pipeline.TopKDefault)
	}
	if cfg.Watch.Extensions == nil {
		t.Error("watch extensions should be set by default")
	}
	if len(cfg.Watch.Extensions) != 8 || cfg.Watch.Extensions[0] != ".jsonl" {
		t.Errorf("watch extensions: got %v", cfg.Watch.Extensions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestApplyDefaults_WatchRecursiveWhenDirectoriesSet(t *testing.T) {
	cfg := &Config{Watch: WatchConfig{Directories: []string{"/tmp/drop"}}}
	ApplyDefaults(cfg)
	if cfg.Watch.Recursive == nil || !*cfg.Watch.Recursive {
		t.Error("recursive should default to true when directories are set")
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		w := &WatchConfig{}
		if !w.RecursiveOrDefault() {
			t.Error("RecursiveOrDefault() = false, want true")
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		w := &WatchConfig{Recursive: &f}
		if w.RecursiveOrDefault() {
			t.Error("RecursiveOrDefault() = true, want false")
		}
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		ApplyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"max_chars_zero", func(c *Config) { c.Pipeline.MaxChars = 0 }, "pipeline.max_chars"},
		{"overlap_negative", func(c *Config) { c.Pipeline.OverlapChars = -1 }, "pipeline.overlap_chars"},
		{"overlap_equals_max", func(c *Config) { c.Pipeline.OverlapChars = c.Pipeline.MaxChars }, "pipeline.overlap_chars"},
		{"threshold_one", func(c *Config) { c.Pipeline.DedupeThreshold = 1.0 }, "pipeline.dedupe_threshold"},
		{"threshold_negative", func(c *Config) { c.Pipeline.DedupeThreshold = -0.1 }, "pipeline.dedupe_threshold"},
		{"shingle_negative", func(c *Config) { c.Pipeline.ShingleSize = -3 }, "pipeline.shingle_size"},
		{"unknown_backend", func(c *Config) { c.Pipeline.IndexBackend = "faiss" }, "pipeline.index_backend"},
		{"top_k_negative", func(c *Config) { c.Pipeline.TopKDefault = -1 }, "pipeline.top_k_default"},
		{"dimensions_negative", func(c *Config) { c.Embedding.Dimensions = -8 }, "embedding.dimensions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %s, want %s", verr.Field, tt.field)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
