package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/shirabe/data/db/documents.db"
	}
	if cfg.Storage.IndexDir == "" {
		cfg.Storage.IndexDir = "/usr/local/var/shirabe/data/index"
	}
	if cfg.Storage.KeywordIndexPath == "" {
		cfg.Storage.KeywordIndexPath = "/usr/local/var/shirabe/data/indices/bleve"
	}
	if cfg.Embedding.ModelID == "" {
		cfg.Embedding.ModelID = "hash"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.TimeoutMS == 0 {
		cfg.Embedding.TimeoutMS = 10000
	}
	if cfg.Pipeline.MaxChars == 0 {
		cfg.Pipeline.MaxChars = 1200
	}
	if cfg.Pipeline.OverlapChars == 0 {
		cfg.Pipeline.OverlapChars = 200
	}
	if cfg.Pipeline.DedupeThreshold == 0 {
		cfg.Pipeline.DedupeThreshold = 0.90
	}
	if cfg.Pipeline.ShingleSize == 0 {
		cfg.Pipeline.ShingleSize = 3
	}
	if cfg.Pipeline.IndexBackend == "" {
		cfg.Pipeline.IndexBackend = BackendExact
	}
	if cfg.Pipeline.TopKDefault == 0 {
		cfg.Pipeline.TopKDefault = 5
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".jsonl", ".txt", ".md", ".rst", ".html", ".pdf", ".docx", ".xlsx"}
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
