// File path: internal/ingest/ingest.go
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/repolens/repolens/internal/chunker"
	"github.com/repolens/repolens/internal/common"
	"github.com/repolens/repolens/internal/github"
	"github.com/repolens/repolens/internal/githuburl"
	"github.com/repolens/repolens/internal/llm"
	"github.com/repolens/repolens/internal/redact"
	"github.com/repolens/repolens/internal/sqlite"
	"github.com/repolens/repolens/internal/vector"
)

// SourceFetcher delivers a repository's eligible source files.
type SourceFetcher interface {
	Fetch(ctx context.Context, owner, name string) (*github.Result, error)
}

// Registry is the registry and chunk persistence the orchestrator drives,
// satisfied by *sqlite.Store.
type Registry interface {
	GetRepo(ctx context.Context, repoURL string) (*sqlite.RepoRecord, error)
	BeginIngestion(ctx context.Context, repoURL, owner, name string) error
	MarkIngested(ctx context.Context, repoURL, defaultBranch string, fileCount, chunkCount int) error
	MarkFailed(ctx context.Context, repoURL string) error
	ReplaceChunks(ctx context.Context, repoURL string, chunks []chunker.Chunk) error
	DeleteChunks(ctx context.Context, repoURL string) error
	ChunkIDs(ctx context.Context, repoURL string) ([]string, error)
}

// Service orchestrates a repository ingestion end to end: fetch, sanitize,
// chunk, embed, index, persist.
type Service struct {
	fetcher  SourceFetcher
	provider llm.Provider
	index    vector.Index
	store    Registry
	cfg      Config
}

// Result summarizes a completed (or short-circuited) ingestion.
type Result struct {
	RepoURL         string `json:"repoUrl"`
	DefaultBranch   string `json:"defaultBranch,omitempty"`
	FileCount       int    `json:"fileCount"`
	ChunkCount      int    `json:"chunkCount"`
	AlreadyIngested bool   `json:"alreadyIngested"`
}

// NewService constructs the ingestion orchestrator.
func NewService(fetcher SourceFetcher, provider llm.Provider, index vector.Index, store Registry, cfg Config) *Service {
	cfg.applyDefaults()
	return &Service{fetcher: fetcher, provider: provider, index: index, store: store, cfg: cfg}
}

// Ingest runs the full pipeline for the repository at repoURL. An already
// ingested repository is a no-op unless force is set; force tears down the
// previous chunks and vectors before rebuilding. On failure after the pending
// transition the repository is marked failed, except on caller cancellation,
// which leaves it pending for a later retry.
func (s *Service) Ingest(ctx context.Context, repoURL string, force bool) (*Result, error) {
	logger := common.Logger()

	owner, name, err := githuburl.Parse(repoURL)
	if err != nil {
		return nil, err
	}
	canonical, err := githuburl.Canonical(repoURL)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetRepo(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == sqlite.StatusIngested && !force {
		logger.Info("ingest: repository already ingested", "repo", canonical)
		return &Result{
			RepoURL:         canonical,
			DefaultBranch:   existing.DefaultBranch,
			FileCount:       existing.FileCount,
			ChunkCount:      existing.ChunkCount,
			AlreadyIngested: true,
		}, nil
	}

	if force && existing != nil {
		if err := s.teardown(ctx, canonical); err != nil {
			return nil, err
		}
	}

	if err := s.store.BeginIngestion(ctx, canonical, owner, name); err != nil {
		return nil, err
	}

	result, err := s.run(ctx, canonical, owner, name)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled mid-flight: leave the repository pending so the
			// caller can retry without a force.
			logger.Warn("ingest: cancelled", "repo", canonical)
			return nil, err
		}
		if markErr := s.store.MarkFailed(context.WithoutCancel(ctx), canonical); markErr != nil {
			logger.Error("ingest: failed to record failure", "repo", canonical, "error", markErr)
		}
		return nil, err
	}
	return result, nil
}

// teardown removes the previous generation of chunks and vectors so a forced
// re-ingestion starts from a clean slate.
func (s *Service) teardown(ctx context.Context, repoURL string) error {
	ids, err := s.store.ChunkIDs(ctx, repoURL)
	if err != nil {
		return fmt.Errorf("list previous chunks: %w", err)
	}
	if len(ids) > 0 {
		if err := s.index.Delete(ctx, ids); err != nil {
			return fmt.Errorf("delete previous vectors: %w", err)
		}
	}
	if err := s.store.DeleteChunks(ctx, repoURL); err != nil {
		return fmt.Errorf("delete previous chunks: %w", err)
	}
	common.Logger().Info("ingest: cleared previous generation", "repo", repoURL, "chunks", len(ids))
	return nil
}

func (s *Service) run(ctx context.Context, repoURL, owner, name string) (*Result, error) {
	logger := common.Logger()

	fetched, err := s.fetcher.Fetch(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("fetch repository: %w", err)
	}
	if len(fetched.Files) == 0 {
		return nil, errors.New("repository has no eligible source files")
	}

	var chunks []chunker.Chunk
	for _, file := range fetched.Files {
		if len(chunks) >= s.cfg.MaxChunks {
			logger.Warn("ingest: chunk ceiling reached, skipping remaining files",
				"repo", repoURL, "ceiling", s.cfg.MaxChunks)
			break
		}
		sanitized := redact.Sanitize(file.Content)
		fileChunks := chunker.ChunkFile(sanitized, file.Path, repoURL)
		for i := range fileChunks {
			fileChunks[i].ID = chunker.ID(owner, name, file.Path, fileChunks[i].Index)
		}
		remaining := s.cfg.MaxChunks - len(chunks)
		if len(fileChunks) > remaining {
			fileChunks = fileChunks[:remaining]
		}
		chunks = append(chunks, fileChunks...)
	}
	if len(chunks) == 0 {
		return nil, errors.New("repository produced no chunks")
	}
	logger.Info("ingest: chunked repository", "repo", repoURL, "files", len(fetched.Files), "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := s.provider.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	records := make([]vector.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = vector.Record{
			ID:     chunk.ID,
			Values: embeddings[i],
			Metadata: vector.Metadata{
				RepoURL:    repoURL,
				FilePath:   chunk.FilePath,
				ChunkIndex: chunk.Index,
			},
		}
	}
	if err := s.index.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	if err := s.store.ReplaceChunks(ctx, repoURL, chunks); err != nil {
		return nil, fmt.Errorf("persist chunks: %w", err)
	}

	if err := s.store.MarkIngested(ctx, repoURL, fetched.DefaultBranch, len(fetched.Files), len(chunks)); err != nil {
		return nil, fmt.Errorf("finalize ingestion: %w", err)
	}

	return &Result{
		RepoURL:       repoURL,
		DefaultBranch: fetched.DefaultBranch,
		FileCount:     len(fetched.Files),
		ChunkCount:    len(chunks),
	}, nil
}
