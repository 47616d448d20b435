// Package server exposes the indexing and query engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vkozyrev/ragdex/internal/engine"
	"github.com/vkozyrev/ragdex/internal/manifest"
	"github.com/vkozyrev/ragdex/internal/runlog"
)

// Config holds server configuration.
type Config struct {
	Host     string
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// EngineAPI is the part of the engine the server exposes.
type EngineAPI interface {
	IndexProject(ctx context.Context, projectID string, force bool) (*engine.IndexResult, error)
	Query(ctx context.Context, projectID string, req engine.QueryRequest) (*engine.QueryResponse, error)
	Manifest(projectID string) (*manifest.Manifest, error)
}

// Server is the ragdex HTTP API.
type Server struct {
	cfg        Config
	engine     EngineAPI
	runs       *runlog.Store // nil disables run history endpoints
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. runs may be nil, in which case the run history
// endpoint reports 404 and index runs are not recorded.
func New(cfg Config, eng EngineAPI, runs *runlog.Store) *Server {
	s := &Server{cfg: cfg, engine: eng, runs: runs}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/projects/{projectID}", func(r chi.Router) {
		// Indexing runs as long as it needs to; queries get a deadline.
		r.Post("/index", s.handleIndex)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Post("/query", s.handleQuery)
			r.Get("/status", s.handleStatus)
			r.Get("/runs", s.handleRuns)
		})
	})

	return r
}

// Router returns the chi router, used in tests.
func (s *Server) Router() chi.Router { return s.router }

type indexRequest struct {
	Force bool `json:"force"`
}

type indexResponse struct {
	Total       int    `json:"total"`
	Indexed     int    `json:"indexed"`
	Failed      int    `json:"failed"`
	Removed     int    `json:"removed"`
	Unchanged   int    `json:"unchanged"`
	VectorCount int    `json:"vector_count"`
	DurationMs  int64  `json:"duration_ms"`
	RunID       string `json:"run_id,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req indexRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
	}

	started := time.Now().UTC()
	res, err := s.engine.IndexProject(r.Context(), projectID, req.Force)
	if err != nil {
		s.recordRun(r.Context(), runlog.Run{
			ProjectID:  projectID,
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
			Status:     runlog.StatusError,
			Forced:     req.Force,
			Error:      err.Error(),
		})
		writeEngineError(w, err)
		return
	}

	run := s.recordRun(r.Context(), runlog.Run{
		ProjectID:   projectID,
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		Status:      runlog.StatusCompleted,
		Forced:      req.Force,
		Total:       res.Total,
		Indexed:     res.Indexed,
		Failed:      res.Failed,
		Removed:     res.Removed,
		VectorCount: res.VectorCount,
	})

	writeJSON(w, http.StatusOK, indexResponse{
		Total:       res.Total,
		Indexed:     res.Indexed,
		Failed:      res.Failed,
		Removed:     res.Removed,
		Unchanged:   res.Unchanged,
		VectorCount: res.VectorCount,
		DurationMs:  res.Duration.Milliseconds(),
		RunID:       run.ID,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req engine.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp, err := s.engine.Query(r.Context(), projectID, req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	ProjectID     string            `json:"project_id"`
	Documents     int               `json:"documents"`
	Indexed       int               `json:"indexed"`
	Failed        int               `json:"failed"`
	VectorCount   int               `json:"vector_count"`
	LastIndexedAt *time.Time        `json:"last_indexed_at,omitempty"`
	Summary       string            `json:"summary,omitempty"`
	Settings      manifest.Settings `json:"settings"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	m, err := s.engine.Manifest(projectID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := statusResponse{
		ProjectID:     m.ID,
		Documents:     len(m.Documents),
		VectorCount:   m.VectorCount,
		LastIndexedAt: m.LastIndexedAt,
		Summary:       m.Summary,
		Settings:      m.Settings,
	}
	for _, rec := range m.Documents {
		switch rec.Status {
		case manifest.StatusIndexed:
			resp.Indexed++
		case manifest.StatusFailed:
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "run history is not enabled")
		return
	}
	projectID := chi.URLParam(r, "projectID")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), projectID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []runlog.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// recordRun persists a run when history is enabled. Failures are logged, not
// surfaced: the indexing outcome matters more than its bookkeeping.
func (s *Server) recordRun(ctx context.Context, run runlog.Run) runlog.Run {
	if s.runs == nil {
		return run
	}
	recorded, err := s.runs.Record(ctx, run)
	if err != nil {
		log.Printf("recording run for %s: %v", run.ProjectID, err)
		return run
	}
	return recorded
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrAlreadyIndexing):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("ragdex server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
