// Package config provides configuration loading and structs for the Shirabe pipeline and server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Index backends selectable via PipelineConfig.IndexBackend.
const (
	BackendExact       = "exact"
	BackendApproximate = "approximate"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the document database and index artifacts.
type StorageConfig struct {
	DatabasePath     string `yaml:"database_path"`
	IndexDir         string `yaml:"index_dir"`
	KeywordIndexPath string `yaml:"keyword_index_path"`
}

// EmbeddingConfig holds embedder settings. ModelID selects the backend:
// "hash" for the built-in deterministic embedder, anything else is treated
// as an ONNX model identifier resolved against ModelPath.
type EmbeddingConfig struct {
	ModelID    string `yaml:"model_id"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	// TimeoutMS bounds a single embedding call; 0 disables the deadline.
	TimeoutMS int `yaml:"timeout_ms"`
}

// PipelineConfig holds chunking, deduplication, and retrieval settings.
type PipelineConfig struct {
	MaxChars     int `yaml:"max_chars"`
	OverlapChars int `yaml:"overlap_chars"`
	// DedupeThreshold is the Jaccard similarity above which a chunk is
	// considered a near-duplicate of an accepted chunk from another document.
	DedupeThreshold float64 `yaml:"dedupe_threshold"`
	// ShingleSize is the word n-gram size used for near-duplicate signatures.
	ShingleSize int `yaml:"shingle_size"`
	// IndexBackend is "exact" or "approximate".
	IndexBackend string `yaml:"index_backend"`
	TopKDefault  int    `yaml:"top_k_default"`
	// KeywordEnabled indexes chunks into the keyword index and allows hybrid
	// retrieval. Pure semantic retrieval works regardless.
	KeywordEnabled bool `yaml:"keyword_enabled"`
}

// WatchConfig holds fragment-directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ValidationError reports an invalid pipeline configuration. It is fatal and
// aborts a run before any fragment is processed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Validate checks the pipeline configuration invariants.
func (c *Config) Validate() error {
	p := &c.Pipeline
	if p.MaxChars <= 0 {
		return &ValidationError{Field: "pipeline.max_chars", Reason: "must be positive"}
	}
	if p.OverlapChars < 0 || p.OverlapChars >= p.MaxChars {
		return &ValidationError{
			Field:  "pipeline.overlap_chars",
			Reason: fmt.Sprintf("must satisfy 0 <= overlap < max_chars (%d)", p.MaxChars),
		}
	}
	if p.DedupeThreshold <= 0 || p.DedupeThreshold >= 1 {
		return &ValidationError{Field: "pipeline.dedupe_threshold", Reason: "must be in (0, 1)"}
	}
	if p.ShingleSize <= 0 {
		return &ValidationError{Field: "pipeline.shingle_size", Reason: "must be positive"}
	}
	switch p.IndexBackend {
	case BackendExact, BackendApproximate:
	default:
		return &ValidationError{
			Field:  "pipeline.index_backend",
			Reason: fmt.Sprintf("unknown backend %q (supported: exact, approximate)", p.IndexBackend),
		}
	}
	if p.TopKDefault <= 0 {
		return &ValidationError{Field: "pipeline.top_k_default", Reason: "must be positive"}
	}
	if c.Embedding.Dimensions <= 0 {
		return &ValidationError{Field: "embedding.dimensions", Reason: "must be positive"}
	}
	return nil
}

// Load reads and parses the config file at path, applies defaults, expands
// paths, and validates. Returns an error if the file cannot be read or parsed,
// or if validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexDir = expandPath(cfg.Storage.IndexDir, configDir)
	cfg.Storage.KeywordIndexPath = expandPath(cfg.Storage.KeywordIndexPath, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
