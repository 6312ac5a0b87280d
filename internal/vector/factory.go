package vector

import (
	"fmt"

	"github.com/hyperjump/shirabe/internal/config"
)

// NewIndex creates a vector index for the configured backend.
// Supported backends: "exact" (brute force, default) and "approximate"
// (IVF-flat). Both satisfy the same ordering and top-k contract.
func NewIndex(backend string, dimensions int) (Index, error) {
	switch backend {
	case config.BackendExact, "":
		return NewExactIndex(dimensions)
	case config.BackendApproximate:
		return NewIVFIndex(dimensions)
	default:
		return nil, fmt.Errorf("unknown index backend: %s (supported: exact, approximate)", backend)
	}
}
