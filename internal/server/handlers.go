package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/storage"
)

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var query models.RetrieveQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("retrieve request", zap.String("query", query.Query), zap.Int("top_k", query.TopK))
	response, err := s.retriever.Retrieve(r.Context(), query)
	if err != nil {
		if query.Query == "" || query.TopK < 0 {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("retrieve failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

type ingestRequest struct {
	Fragments []models.Fragment `json:"fragments"`
}

func (s *Server) handleIngestFragments(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Fragments) == 0 {
		s.respondError(w, http.StatusBadRequest, "fragments are required")
		return
	}
	// A fragment without a source ID gets a generated one: it can never be
	// superseded by a later delivery, so scrapers should set their own.
	for i := range req.Fragments {
		if req.Fragments[i].SourceID == "" {
			req.Fragments[i].SourceID = uuid.NewString()
		}
	}

	s.ingestMu.Lock()
	store, report, err := s.pipeline.Ingest(r.Context(), req.Fragments)
	s.ingestMu.Unlock()
	if err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.retriever.ReplaceStore(store)
	s.respondJSON(w, http.StatusCreated, report)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	docs, err := s.storage.ListDocuments(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.storage.GetDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("source_id", id))

	s.ingestMu.Lock()
	store, err := s.pipeline.Remove(r.Context(), id)
	s.ingestMu.Unlock()
	if err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.retriever.ReplaceStore(store)
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.storage.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	store := s.retriever.Store()
	resp := map[string]interface{}{
		"documents":  docCount,
		"chunks":     chunkCount,
		"index_size": store.Size(),
	}
	resp["config"] = map[string]interface{}{
		"index_backend":        store.Backend(),
		"model_id":             store.ModelID(),
		"embedding_dimensions": store.Dimensions(),
		"max_chars":            s.config.Pipeline.MaxChars,
		"overlap_chars":        s.config.Pipeline.OverlapChars,
		"dedupe_threshold":     s.config.Pipeline.DedupeThreshold,
		"keyword_enabled":      s.config.Pipeline.KeywordEnabled,
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.IndexDir,
		s.config.Storage.KeywordIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
