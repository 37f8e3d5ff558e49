// File path: internal/rag/rag.go
package rag

import (
	"context"
	"fmt"

	"github.com/repolens/repolens/internal/cache"
	"github.com/repolens/repolens/internal/common"
	"github.com/repolens/repolens/internal/llm"
	"github.com/repolens/repolens/internal/sqlite"
	"github.com/repolens/repolens/internal/vector"
)

// defaultTopK is the retrieval breadth when a feature does not override it.
const defaultTopK = 8

// Registry exposes the repository registry and chunk store reads the engine
// needs, satisfied by *sqlite.Store.
type Registry interface {
	GetRepo(ctx context.Context, repoURL string) (*sqlite.RepoRecord, error)
	ChunksByIDs(ctx context.Context, ids []string) ([]sqlite.ChunkRow, error)
}

// Request is one feature invocation against an ingested repository.
type Request struct {
	RepoURL string
	// Feature names the invocation for caching and logging.
	Feature string
	// Query is the text embedded for retrieval.
	Query string
	// Target qualifies the cache key (a file path, or empty).
	Target string
	// FilePath scopes retrieval to one file when non-empty.
	FilePath string
	// TopK overrides the retrieval breadth when positive.
	TopK int
	// Cacheable gates the response cache for this invocation.
	Cacheable bool
	// PromptBuilder assembles the final prompt from the labeled chunks.
	PromptBuilder func(chunks []string) string
}

// Engine answers feature requests by retrieving relevant chunks and prompting
// the model with them.
type Engine struct {
	provider llm.Provider
	index    vector.Index
	store    Registry
	cache    *cache.ResponseCache
}

// NewEngine constructs the answering engine. The cache may be nil, which
// disables response caching entirely.
func NewEngine(provider llm.Provider, index vector.Index, store Registry, responseCache *cache.ResponseCache) *Engine {
	return &Engine{provider: provider, index: index, store: store, cache: responseCache}
}

// Answer runs the retrieval pipeline for one request. The repository must be
// in the ingested state; every downstream failure is classified so the
// transport can map it.
func (e *Engine) Answer(ctx context.Context, req Request) (string, error) {
	logger := common.Logger()

	record, err := e.store.GetRepo(ctx, req.RepoURL)
	if err != nil {
		return "", Upstream("read repository registry", err)
	}
	if record == nil || record.Status != sqlite.StatusIngested {
		return "", Preconditionf("repository not ingested; submit it for ingestion first")
	}

	useCache := req.Cacheable && e.cache != nil
	if useCache {
		if response, ok := e.cache.Get(ctx, req.Feature, req.RepoURL, req.Target); ok {
			logger.Info("rag: cache hit", "feature", req.Feature, "repo", req.RepoURL)
			return response, nil
		}
	}

	queryEmbedding, err := e.provider.EmbedQuery(ctx, req.Query)
	if err != nil {
		return "", Upstream("embed query", err)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	logger.Debug("rag: querying index", "feature", req.Feature, "topK", topK, "file", req.FilePath)
	matches, err := e.index.Query(ctx, queryEmbedding, req.RepoURL, topK, req.FilePath)
	if err != nil {
		return "", Upstream("query vector index", err)
	}
	if len(matches) == 0 {
		return "", NotFoundf("no relevant chunks found; the repository may need re-ingestion")
	}

	ids := make([]string, len(matches))
	for i, match := range matches {
		ids[i] = match.ID
	}
	rows, err := e.store.ChunksByIDs(ctx, ids)
	if err != nil {
		return "", Upstream("hydrate chunks", err)
	}
	if len(rows) == 0 {
		return "", Consistencyf("indexed chunks missing from the chunk store; re-ingest the repository")
	}

	// Label and order chunks by descending match score. Ids the store no
	// longer has are dropped rather than failing the whole request.
	byID := make(map[string]sqlite.ChunkRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	var chunkTexts []string
	for _, match := range matches {
		row, ok := byID[match.ID]
		if !ok {
			logger.Warn("rag: dropping drifted chunk", "id", match.ID, "repo", req.RepoURL)
			continue
		}
		chunkTexts = append(chunkTexts,
			fmt.Sprintf("--- File: %s (chunk %d, score: %.3f) ---\n%s",
				row.FilePath, row.ChunkIndex, match.Score, row.Text))
	}
	if len(chunkTexts) == 0 {
		return "", Consistencyf("indexed chunks missing from the chunk store; re-ingest the repository")
	}

	prompt := req.PromptBuilder(chunkTexts)
	logger.Info("rag: calling model", "feature", req.Feature, "chunks", len(chunkTexts))
	response, err := e.provider.Complete(ctx, prompt)
	if err != nil {
		return "", Upstream("generate answer", err)
	}

	if useCache {
		e.cache.Put(ctx, req.Feature, req.RepoURL, req.Target, response)
	}
	return response, nil
}
