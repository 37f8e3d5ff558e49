// File path: internal/api/feature_handler.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/repolens/repolens/internal/feature"
	"github.com/repolens/repolens/internal/githuburl"
	"github.com/repolens/repolens/internal/rag"
	"github.com/repolens/repolens/internal/sqlite"
)

type featureRequest struct {
	RepoURL  string `json:"repoUrl"`
	FilePath string `json:"filePath"`
	Prompt   string `json:"prompt"`
}

func (s *Server) decodeFeatureRequest(w http.ResponseWriter, r *http.Request) (featureRequest, bool) {
	var req featureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return req, false
	}
	canonical, err := githuburl.Canonical(req.RepoURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return req, false
	}
	req.RepoURL = canonical
	req.FilePath = strings.TrimSpace(req.FilePath)
	return req, true
}

// checkFile rejects file-scoped requests naming a file the ingested
// repository does not have. When the repository is not ingested yet, the
// engine's precondition gate reports that instead.
func (s *Server) checkFile(w http.ResponseWriter, r *http.Request, repoURL, filePath string) bool {
	record, err := s.registry.GetRepo(r.Context(), repoURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return false
	}
	if record == nil || record.Status != sqlite.StatusIngested {
		return true
	}
	ok, err := s.registry.HasFile(r.Context(), repoURL, filePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return false
	}
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("file not found in ingested repository"))
		return false
	}
	return true
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, req rag.Request, wrap func(response string) interface{}) {
	response, err := s.engine.Answer(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": wrap(response)})
}

func (s *Server) handleExplainFile(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, errors.New("filePath required"))
		return
	}
	if !s.checkFile(w, r, req.RepoURL, req.FilePath) {
		return
	}
	s.answer(w, r, feature.ExplainFile(req.RepoURL, req.FilePath), func(response string) interface{} {
		return map[string]string{"filePath": req.FilePath, "explanation": response}
	})
}

func (s *Server) handleArchitecture(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	response, err := s.engine.Answer(r.Context(), feature.Architecture(req.RepoURL))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	diagram, err := feature.ExtractMermaidDiagram(response)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    map[string]string{"mermaidDiagram": diagram},
	})
}

func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	s.answer(w, r, feature.Workflow(req.RepoURL), func(response string) interface{} {
		return map[string]string{"workflow": response}
	})
}

func (s *Server) handleUnitTests(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, errors.New("filePath required"))
		return
	}
	if !s.checkFile(w, r, req.RepoURL, req.FilePath) {
		return
	}
	s.answer(w, r, feature.UnitTests(req.RepoURL, req.FilePath), func(response string) interface{} {
		return map[string]string{"filePath": req.FilePath, "tests": response}
	})
}

func (s *Server) handleImprovements(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	if req.FilePath != "" && !s.checkFile(w, r, req.RepoURL, req.FilePath) {
		return
	}
	s.answer(w, r, feature.Improvements(req.RepoURL, req.FilePath), func(response string) interface{} {
		return map[string]string{"improvements": response}
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, errors.New("prompt required"))
		return
	}
	s.answer(w, r, feature.AskRepo(req.RepoURL, req.Prompt), func(response string) interface{} {
		return map[string]string{"answer": response}
	})
}
