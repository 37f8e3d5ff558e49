// File path: internal/sqlite/repos.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/repolens/repolens/internal/common"
)

// ErrIngestionInProgress is returned by BeginIngestion when another ingestion
// already holds the pending state for the repository.
var ErrIngestionInProgress = errors.New("ingestion already in progress")

// GetRepo returns the registry row for the repository, or nil when the
// repository has never been registered.
func (s *Store) GetRepo(ctx context.Context, repoURL string) (*RepoRecord, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	var record RepoRecord
	err := s.db.GetContext(ctx, &record,
		`SELECT repo_url, owner, name, default_branch, status, file_count, chunk_count, ingested_at, updated_at
                 FROM repos WHERE repo_url = ?`, repoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repo: %w", err)
	}
	return &record, nil
}

// BeginIngestion transitions the repository to pending, registering it on
// first use. The transition is a single atomic statement so two concurrent
// ingestions of the same repository cannot both proceed; the loser receives
// ErrIngestionInProgress.
func (s *Store) BeginIngestion(ctx context.Context, repoURL, owner, name string) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO repos (repo_url, owner, name, status, updated_at)
                 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
                 ON CONFLICT(repo_url) DO UPDATE SET
                        status = excluded.status,
                        updated_at = CURRENT_TIMESTAMP
                 WHERE repos.status <> ?`,
		repoURL, owner, name, StatusPending, StatusPending)
	if err != nil {
		return fmt.Errorf("begin ingestion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("begin ingestion: %w", err)
	}
	if affected == 0 {
		return ErrIngestionInProgress
	}
	common.Logger().Info("registry: ingestion started", "repo", repoURL)
	return nil
}

// MarkIngested finalizes a successful ingestion, recording the counts and the
// completion timestamp.
func (s *Store) MarkIngested(ctx context.Context, repoURL, defaultBranch string, fileCount, chunkCount int) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE repos SET status = ?, default_branch = ?, file_count = ?, chunk_count = ?,
                        ingested_at = ?, updated_at = CURRENT_TIMESTAMP
                 WHERE repo_url = ?`,
		StatusIngested, defaultBranch, fileCount, chunkCount, time.Now().UTC(), repoURL)
	if err != nil {
		return fmt.Errorf("mark ingested: %w", err)
	}
	common.Logger().Info("registry: ingestion complete", "repo", repoURL, "files", fileCount, "chunks", chunkCount)
	return nil
}

// MarkFailed records a failed ingestion so a later attempt can retry.
func (s *Store) MarkFailed(ctx context.Context, repoURL string) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE repos SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE repo_url = ?`,
		StatusFailed, repoURL)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	common.Logger().Warn("registry: ingestion failed", "repo", repoURL)
	return nil
}
