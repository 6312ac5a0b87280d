//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

var errNoONNX = errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// ONNXEmbedder stub type when built without CGO (see onnx.go for the real implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_, _ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, errNoONNX
}

// Embed is not available without CGO.
func (e *ONNXEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errNoONNX
}

// EmbedBatch is not available without CGO.
func (e *ONNXEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errNoONNX
}

// ModelID returns an empty model identifier.
func (e *ONNXEmbedder) ModelID() string { return "" }

// Dimensions returns 0 without CGO.
func (e *ONNXEmbedder) Dimensions() int { return 0 }

// Close is a no-op.
func (e *ONNXEmbedder) Close() error { return nil }
