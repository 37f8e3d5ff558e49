// File path: internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/repolens/repolens/internal/ingest"
	"github.com/repolens/repolens/internal/rag"
	"github.com/repolens/repolens/internal/sqlite"
)

type fakeIngestor struct {
	result *ingest.Result
	err    error
	force  bool
	repo   string
}

func (f *fakeIngestor) Ingest(_ context.Context, repoURL string, force bool) (*ingest.Result, error) {
	f.repo = repoURL
	f.force = force
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeAnswerer struct {
	response string
	err      error
	lastReq  rag.Request
}

func (f *fakeAnswerer) Answer(_ context.Context, req rag.Request) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeRegistry struct {
	record  *sqlite.RepoRecord
	hasFile bool
}

func (f *fakeRegistry) GetRepo(_ context.Context, _ string) (*sqlite.RepoRecord, error) {
	return f.record, nil
}

func (f *fakeRegistry) HasFile(_ context.Context, _, _ string) (bool, error) {
	return f.hasFile, nil
}

func ingestedRegistry() *fakeRegistry {
	return &fakeRegistry{
		record:  &sqlite.RepoRecord{RepoURL: "https://github.com/o/r", Status: sqlite.StatusIngested, FileCount: 3, ChunkCount: 9},
		hasFile: true,
	}
}

func newTestServer(t *testing.T, ingestor *fakeIngestor, engine *fakeAnswerer, registry *fakeRegistry) *Server {
	t.Helper()
	srv, err := NewServer(ingestor, engine, registry)
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	if !payload.Success {
		t.Fatalf("expected success envelope: %s", rec.Body.String())
	}
	return payload.Data
}

func TestIngestEndpoint(t *testing.T) {
	ingestor := &fakeIngestor{result: &ingest.Result{RepoURL: "https://github.com/o/r", FileCount: 3, ChunkCount: 9, DefaultBranch: "main"}}
	srv := newTestServer(t, ingestor, &fakeAnswerer{}, ingestedRegistry())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/repo/ingest",
		`{"repoUrl":"git@github.com:o/r.git","force":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if ingestor.repo != "https://github.com/o/r" {
		t.Fatalf("url not canonicalized before ingestion: %q", ingestor.repo)
	}
	if !ingestor.force {
		t.Fatal("force flag not propagated")
	}
	data := decodeData(t, rec)
	if data["chunkCount"].(float64) != 9 {
		t.Fatalf("unexpected payload: %v", data)
	}
}

func TestIngestRejectsInvalidURL(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{}, &fakeAnswerer{}, ingestedRegistry())
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/repo/ingest", `{"repoUrl":"not a url"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestIngestConflictWhenInProgress(t *testing.T) {
	ingestor := &fakeIngestor{err: sqlite.ErrIngestionInProgress}
	srv := newTestServer(t, ingestor, &fakeAnswerer{}, ingestedRegistry())
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/repo/ingest", `{"repoUrl":"https://github.com/o/r"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{}, &fakeAnswerer{}, ingestedRegistry())
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/repo/status?repoUrl=https://github.com/o/r", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["status"] != "ingested" || data["fileCount"].(float64) != 3 {
		t.Fatalf("unexpected payload: %v", data)
	}
}

func TestStatusUnknownRepo(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{}, &fakeAnswerer{}, &fakeRegistry{})
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/repo/status?repoUrl=https://github.com/o/r", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestExplainFileValidation(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{}, &fakeAnswerer{response: "explained"}, ingestedRegistry())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/feature/explain-file", `{"repoUrl":"https://github.com/o/r"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing filePath: expected 400, got %d", rec.Code)
	}

	registry := ingestedRegistry()
	registry.hasFile = false
	srv = newTestServer(t, &fakeIngestor{}, &fakeAnswerer{}, registry)
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/feature/explain-file",
		`{"repoUrl":"https://github.com/o/r","filePath":"gone.go"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown file: expected 404, got %d", rec.Code)
	}
}

func TestExplainFileHappyPath(t *testing.T) {
	engine := &fakeAnswerer{response: "explained"}
	srv := newTestServer(t, &fakeIngestor{}, engine, ingestedRegistry())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/feature/explain-file",
		`{"repoUrl":"https://github.com/o/r","filePath":"src/main.go"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["explanation"] != "explained" || data["filePath"] != "src/main.go" {
		t.Fatalf("unexpected payload: %v", data)
	}
	if engine.lastReq.FilePath != "src/main.go" || engine.lastReq.Feature != "explain_file" {
		t.Fatalf("unexpected engine request: %+v", engine.lastReq)
	}
}

func TestArchitectureExtractsDiagram(t *testing.T) {
	engine := &fakeAnswerer{response: "intro\n```mermaid\ngraph TD\nA --> B\n```"}
	srv := newTestServer(t, &fakeIngestor{}, engine, ingestedRegistry())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/feature/architecture", `{"repoUrl":"https://github.com/o/r"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	diagram := data["mermaidDiagram"].(string)
	if !strings.HasPrefix(diagram, "```mermaid\n") || !strings.Contains(diagram, "A --> B") {
		t.Fatalf("diagram not extracted: %q", diagram)
	}
}

func TestArchitectureRejectsOutputWithoutDiagram(t *testing.T) {
	engine := &fakeAnswerer{response: "sorry, no diagram"}
	srv := newTestServer(t, &fakeIngestor{}, engine, ingestedRegistry())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/feature/architecture", `{"repoUrl":"https://github.com/o/r"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestAskRequiresPrompt(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{}, &fakeAnswerer{}, ingestedRegistry())
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/feature/ask", `{"repoUrl":"https://github.com/o/r"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAskIsNotCacheable(t *testing.T) {
	engine := &fakeAnswerer{response: "the answer"}
	srv := newTestServer(t, &fakeIngestor{}, engine, ingestedRegistry())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/feature/ask",
		`{"repoUrl":"https://github.com/o/r","prompt":"how does auth work?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if engine.lastReq.Cacheable {
		t.Fatal("ask requests must bypass the cache")
	}
	data := decodeData(t, rec)
	if data["answer"] != "the answer" {
		t.Fatalf("unexpected payload: %v", data)
	}
}

func TestErrorKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{rag.Preconditionf("not ingested"), http.StatusBadRequest},
		{rag.NotFoundf("nothing retrieved"), http.StatusNotFound},
		{rag.Consistencyf("drift"), http.StatusConflict},
		{rag.Upstream("model down", nil), http.StatusBadGateway},
	}
	for _, tc := range cases {
		srv := newTestServer(t, &fakeIngestor{}, &fakeAnswerer{err: tc.err}, ingestedRegistry())
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/feature/workflow", `{"repoUrl":"https://github.com/o/r"}`)
		if rec.Code != tc.want {
			t.Fatalf("error %v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{}, &fakeAnswerer{}, ingestedRegistry())
	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
}
