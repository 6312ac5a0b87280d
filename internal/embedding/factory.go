package embedding

import (
	"fmt"
	"time"

	"github.com/hyperjump/shirabe/internal/config"
)

// NewEmbedder creates the embedder selected by cfg.ModelID: "hash" for the
// built-in deterministic backend, anything else is loaded as an ONNX model
// from cfg.ModelPath. The returned embedder is wrapped with the configured
// per-call timeout.
func NewEmbedder(cfg *config.EmbeddingConfig) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch cfg.ModelID {
	case HashModelID, "":
		e = NewHashEmbedder(cfg.Dimensions)
	default:
		e, err = NewONNXEmbedder(cfg.ModelID, cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", cfg.ModelID, err)
		}
	}
	return WithTimeout(e, time.Duration(cfg.TimeoutMS)*time.Millisecond), nil
}
