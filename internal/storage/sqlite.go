// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/shirabe/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		source_id TEXT PRIMARY KEY,
		title TEXT,
		url TEXT,
		text TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_content_hash ON documents(content_hash);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		text TEXT NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (source_id) REFERENCES documents(source_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_source_id ON chunks(source_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_fingerprint ON chunks(fingerprint);
	`
	_, err := db.Exec(schema)
	return err
}

// ReplaceDocument stores a document, superseding any previous version with
// the same source ID. Chunks of the superseded version are removed in the
// same transaction so a re-scrape never leaves stale chunks behind.
func (s *SQLiteStorage) ReplaceDocument(ctx context.Context, doc *models.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source_id = ?`, doc.SourceID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (source_id, title, url, text, content_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			text = excluded.text,
			content_hash = excluded.content_hash,
			created_at = excluded.created_at`,
		doc.SourceID, doc.Title, doc.URL, doc.Text, doc.ContentHash, doc.CreatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// GetDocument returns a document by source ID.
func (s *SQLiteStorage) GetDocument(ctx context.Context, sourceID string) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT source_id, title, url, text, content_hash, created_at
		 FROM documents WHERE source_id = ?`, sourceID,
	).Scan(&doc.SourceID, &doc.Title, &doc.URL, &doc.Text, &doc.ContentHash, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", sourceID)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocumentByHash returns the first document with the given content hash,
// or nil if none exists. Used for document-level duplicate detection.
func (s *SQLiteStorage) GetDocumentByHash(ctx context.Context, contentHash string) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT source_id, title, url, text, content_hash, created_at
		 FROM documents WHERE content_hash = ? ORDER BY rowid LIMIT 1`, contentHash,
	).Scan(&doc.SourceID, &doc.Title, &doc.URL, &doc.Text, &doc.ContentHash, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a document and its chunks by source ID.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, sourceID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source_id = ?`, sourceID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE source_id = ?`, sourceID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListDocuments returns documents with offset and limit, most recent first.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, title, url, text, content_hash, created_at
		 FROM documents ORDER BY created_at DESC, source_id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.SourceID, &doc.Title, &doc.URL, &doc.Text, &doc.ContentHash, &doc.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// ReplaceChunks replaces all chunks for a source in a transaction.
func (s *SQLiteStorage) ReplaceChunks(ctx context.Context, sourceID string, chunks []models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source_id = ?`, sourceID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, source_id, text, start_offset, end_offset, fingerprint, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for i := range chunks {
		c := &chunks[i]
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.SourceID, c.Text, c.StartOffset, c.EndOffset, c.Fingerprint, c.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetChunksBySource returns all chunks for a source ordered by start offset.
func (s *SQLiteStorage) GetChunksBySource(ctx context.Context, sourceID string) ([]models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_id, text, start_offset, end_offset, fingerprint, created_at
		 FROM chunks WHERE source_id = ? ORDER BY start_offset`,
		sourceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunks(rows)
}

// AllChunks returns every stored chunk in insertion order. Insertion order is
// the dedupe priority order, so index rebuilds and re-ingest dedupe seeding
// both walk chunks the way they were first accepted.
func (s *SQLiteStorage) AllChunks(ctx context.Context) ([]models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_id, text, start_offset, end_offset, fingerprint, created_at
		 FROM chunks ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunks(rows)
}

func scanChunks(rows *sql.Rows) ([]models.Chunk, error) {
	var chunks []models.Chunk
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(&c.ID, &c.SourceID, &c.Text, &c.StartOffset, &c.EndOffset, &c.Fingerprint, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
