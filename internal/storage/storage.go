// Package storage defines persistence for ingested documents and chunks.
package storage

import (
	"context"

	"github.com/hyperjump/shirabe/internal/models"
)

// Storage records what the pipeline has ingested. The published index
// artifact is the serving truth; this store is the ingestion ledger behind
// it, keyed by source ID so re-delivery supersedes cleanly.
type Storage interface {
	// Document operations
	ReplaceDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, sourceID string) (*models.Document, error)
	GetDocumentByHash(ctx context.Context, contentHash string) (*models.Document, error)
	DeleteDocument(ctx context.Context, sourceID string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)

	// Chunk operations
	ReplaceChunks(ctx context.Context, sourceID string, chunks []models.Chunk) error
	GetChunksBySource(ctx context.Context, sourceID string) ([]models.Chunk, error)
	AllChunks(ctx context.Context) ([]models.Chunk, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
