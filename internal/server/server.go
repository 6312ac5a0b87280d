// Package server provides the HTTP API for Shirabe.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/ingest"
	"github.com/hyperjump/shirabe/internal/retriever"
	"github.com/hyperjump/shirabe/internal/storage"
)

// Server is the HTTP server for the Shirabe API. Ingestion requests rebuild
// the index artifact and swap it into the retriever; ingestMu serializes
// rebuilds so concurrent deliveries cannot interleave partial corpora.
type Server struct {
	retriever *retriever.Retriever
	pipeline  *ingest.Pipeline
	storage   storage.Storage
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
	ingestMu  sync.Mutex
}

// NewServer creates a server with the given dependencies.
func NewServer(
	ret *retriever.Retriever,
	pipeline *ingest.Pipeline,
	storage storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		retriever: ret,
		pipeline:  pipeline,
		storage:   storage,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/retrieve", s.handleRetrieve)
	r.Post("/api/v1/fragments", s.handleIngestFragments)
	r.Get("/api/v1/documents", s.handleListDocuments)
	r.Get("/api/v1/documents/{id}", s.handleGetDocument)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
