// File path: internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/repolens/repolens/internal/common"
	"github.com/repolens/repolens/internal/github"
	"github.com/repolens/repolens/internal/ingest"
	"github.com/repolens/repolens/internal/rag"
	"github.com/repolens/repolens/internal/sqlite"
)

// Ingestor runs a repository ingestion, satisfied by *ingest.Service.
type Ingestor interface {
	Ingest(ctx context.Context, repoURL string, force bool) (*ingest.Result, error)
}

// Answerer answers feature requests, satisfied by *rag.Engine.
type Answerer interface {
	Answer(ctx context.Context, req rag.Request) (string, error)
}

// Registry exposes the registry reads the handlers need, satisfied by
// *sqlite.Store.
type Registry interface {
	GetRepo(ctx context.Context, repoURL string) (*sqlite.RepoRecord, error)
	HasFile(ctx context.Context, repoURL, filePath string) (bool, error)
}

type Server struct {
	router   chi.Router
	ingestor Ingestor
	engine   Answerer
	registry Registry
}

func NewServer(ingestor Ingestor, engine Answerer, registry Registry) (*Server, error) {
	if ingestor == nil || engine == nil || registry == nil {
		return nil, errors.New("ingestor, engine and registry required")
	}
	srv := &Server{
		router:   chi.NewRouter(),
		ingestor: ingestor,
		engine:   engine,
		registry: registry,
	}
	srv.routes()
	common.Logger().Info("api: server ready")
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/api/v1/logs", s.handleLogs)

	s.router.Post("/api/v1/repo/ingest", s.handleIngest)
	s.router.Get("/api/v1/repo/status", s.handleStatus)

	s.router.Post("/api/v1/feature/explain-file", s.handleExplainFile)
	s.router.Post("/api/v1/feature/architecture", s.handleArchitecture)
	s.router.Post("/api/v1/feature/workflow", s.handleWorkflow)
	s.router.Post("/api/v1/feature/unit-tests", s.handleUnitTests)
	s.router.Post("/api/v1/feature/improvements", s.handleImprovements)
	s.router.Post("/api/v1/feature/ask", s.handleAsk)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusForError maps classified failures to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, sqlite.ErrIngestionInProgress):
		return http.StatusConflict
	case errors.Is(err, github.ErrRepoNotFound):
		return http.StatusNotFound
	case errors.Is(err, github.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	switch rag.KindOf(err) {
	case rag.KindPrecondition:
		return http.StatusBadRequest
	case rag.KindNotFound:
		return http.StatusNotFound
	case rag.KindConsistency:
		return http.StatusConflict
	case rag.KindUpstream, rag.KindMalformed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
