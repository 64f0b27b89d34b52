// Package httpapi wires the HTTP surface from §6: plain net/http handlers
// registered on a *http.ServeMux, following the teacher's RegisterHTTPHandlers
// convention (processor/context-builder/http.go) but using Go's 1.22+
// method-and-wildcard mux patterns ("GET /api/graph/entities/{id}") instead
// of hand-parsing paths, since this module targets a toolchain where that
// routing style is available and no pack repo imports a third-party router.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kogsector/kgfusion/apperr"
	"github.com/kogsector/kgfusion/cache"
	"github.com/kogsector/kgfusion/graphstore"
	"github.com/kogsector/kgfusion/ingest"
	"github.com/kogsector/kgfusion/linker"
	"github.com/kogsector/kgfusion/model"
	"github.com/kogsector/kgfusion/query"
	"github.com/kogsector/kgfusion/stats"
)

// Server holds every collaborator a handler might need. One Server is
// constructed at boot and its handlers registered onto one ServeMux.
type Server struct {
	store     graphstore.Store
	processor *ingest.Processor
	linker    *linker.Linker
	engine    *query.Engine
	embedder  stats.EmbeddingPinger
	cache     *cache.Cache // optional; nil means caching disabled (§12)
	logger    *slog.Logger
	version   string
}

// New builds a Server. embedder may be nil (health degrades gracefully);
// resultCache may be nil (caching disabled, every lookup is a live plan run).
func New(store graphstore.Store, processor *ingest.Processor, l *linker.Linker, engine *query.Engine, embedder stats.EmbeddingPinger, resultCache *cache.Cache, logger *slog.Logger, version string) *Server {
	return &Server{store: store, processor: processor, linker: l, engine: engine, embedder: embedder, cache: resultCache, logger: logger, version: version}
}

// Register mounts every handler on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/graph/entities", s.handleCreateEntity)
	mux.HandleFunc("GET /api/graph/entities/{id}", s.handleGetEntity)
	mux.HandleFunc("GET /api/graph/entities/{id}/neighbors", s.handleGetNeighbors)
	mux.HandleFunc("POST /api/graph/chunks", s.handleIngestChunks)
	mux.HandleFunc("POST /api/graph/link", s.handleRelink)
	mux.HandleFunc("POST /api/search", s.handleSearchHybrid)
	mux.HandleFunc("POST /api/search/vector", s.handleSearchVector)
	mux.HandleFunc("POST /api/search/graph", s.handleSearchGraph)
	mux.HandleFunc("GET /api/graph/statistics", s.handleStatistics)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := stats.Probe(r.Context(), s.version, s.store, s.embedder)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation)
		return
	}

	entityType, err := model.ParseEntityType(req.EntityType)
	if err != nil {
		writeError(w, err)
		return
	}
	sourceType := model.SourceType(req.Source)
	if !sourceType.Valid() {
		writeError(w, apperr.ErrValidation)
		return
	}

	e := model.Entity{
		ID:         uuid.NewString(),
		EntityType: entityType,
		Source:     sourceType,
		SourceID:   req.SourceID,
		Name:       req.Name,
		Properties: req.Properties,
	}
	id, err := s.store.UpsertEntityNode(r.Context(), e)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.CreateEntityResponse{EntityID: id, Resolved: false})
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, err := s.store.GetEntity(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleGetNeighbors(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	neighbors, err := s.store.GetNeighbors(r.Context(), id, nil, graphstore.DirectionBoth, 1)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entity_id": id,
		"neighbors": neighbors,
	})
}

func (s *Server) handleIngestChunks(w http.ResponseWriter, r *http.Request) {
	var req model.IngestChunksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation)
		return
	}
	resp := s.processor.IngestChunks(r.Context(), req)
	stats.RecordIngest(resp.ChunksIngested, resp.EntitiesExtracted, resp.RelationshipsCreated, resp.VectorsStored, resp.LinksCreated)
	writeJSON(w, http.StatusOK, resp)
}

// handleRelink is the optional re-linking trigger of §6: given an explicit
// set of code/document chunk ids, re-run the cross-source linker over them
// without re-ingesting.
func (s *Server) handleRelink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CodeChunks []model.ChunkInput `json:"code_chunks"`
		DocChunks  []model.ChunkInput `json:"doc_chunks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation)
		return
	}
	if s.linker == nil {
		writeError(w, apperr.ErrBackendUnavailable)
		return
	}

	now := time.Now().UTC()
	code := make([]model.Chunk, 0, len(req.CodeChunks))
	for _, in := range req.CodeChunks {
		code = append(code, in.IntoChunk(now))
	}
	docs := make([]model.Chunk, 0, len(req.DocChunks))
	for _, in := range req.DocChunks {
		docs = append(docs, in.IntoChunk(now))
	}

	created, err := s.linker.LinkBidirectional(r.Context(), code, docs)
	if err != nil {
		writeError(w, err)
		return
	}
	stats.LinksCreated.Add(float64(created))
	writeJSON(w, http.StatusOK, map[string]any{"links_created": created})
}

func (s *Server) handleSearchHybrid(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, "hybrid", s.engine.Hybrid)
}

func (s *Server) handleSearchVector(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, "vector", s.engine.VectorOnly)
}

func (s *Server) handleSearchGraph(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, "graph", s.engine.GraphOnly)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, mode string, plan func(ctx context.Context, req model.SearchRequest) (query.Result, error)) {
	var req model.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation)
		return
	}

	key := cache.Key(mode, req)
	if cached, ok := s.cache.Get(r.Context(), key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	started := time.Now()
	result, err := plan(r.Context(), req)
	stats.SearchDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
	if err != nil {
		writeError(w, err)
		return
	}
	s.cache.Set(r.Context(), key, result)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	report, err := stats.Statistics(r.Context(), s.store)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	body, status := apperr.ToBody(err)
	writeJSON(w, status, body)
}
