// File path: internal/api/repo_handler.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/repolens/repolens/internal/githuburl"
)

type ingestRequest struct {
	RepoURL string `json:"repoUrl"`
	Force   bool   `json:"force"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	canonical, err := githuburl.Canonical(req.RepoURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.ingestor.Ingest(r.Context(), canonical, req.Force)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": result})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	canonical, err := githuburl.Canonical(strings.TrimSpace(r.URL.Query().Get("repoUrl")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	record, err := s.registry.GetRepo(r.Context(), canonical)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, errors.New("repository not registered"))
		return
	}
	payload := map[string]interface{}{
		"repoUrl":    record.RepoURL,
		"status":     record.Status,
		"fileCount":  record.FileCount,
		"chunkCount": record.ChunkCount,
	}
	if record.DefaultBranch != "" {
		payload["defaultBranch"] = record.DefaultBranch
	}
	if record.IngestedAt.Valid {
		payload["ingestedAt"] = record.IngestedAt.Time
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": payload})
}
