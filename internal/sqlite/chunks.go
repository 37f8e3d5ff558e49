// File path: internal/sqlite/chunks.go
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/repolens/repolens/internal/chunker"
	"github.com/repolens/repolens/internal/common"
)

// ReplaceChunks swaps the repository's stored chunks for the provided set in
// one transaction, so readers never observe a partially written repository.
func (s *Store) ReplaceChunks(ctx context.Context, repoURL string, chunks []chunker.Chunk) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE repo_url = ?`, repoURL); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear chunks: %w", err)
	}
	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO chunks (id, repo_url, file_path, chunk_index, start_char, end_char, token_count, text)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, repoURL, chunk.FilePath, chunk.Index,
			chunk.StartChar, chunk.EndChar, chunk.TokenCount, chunk.Text); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace chunks: %w", err)
	}
	common.Logger().Debug("chunks: replaced repository chunks", "repo", repoURL, "count", len(chunks))
	return nil
}

// DeleteChunks removes every stored chunk for the repository.
func (s *Store) DeleteChunks(ctx context.Context, repoURL string) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE repo_url = ?`, repoURL); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// ChunkIDs lists the ids of every stored chunk for the repository, used to
// tear down the matching vector records before a re-ingestion.
func (s *Store) ChunkIDs(ctx context.Context, repoURL string) ([]string, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	var ids []string
	if err := s.db.SelectContext(ctx, &ids,
		`SELECT id FROM chunks WHERE repo_url = ? ORDER BY file_path, chunk_index`, repoURL); err != nil {
		return nil, fmt.Errorf("list chunk ids: %w", err)
	}
	return ids, nil
}

// ChunksByIDs fetches the chunks with the given ids. Ids with no stored row
// are silently absent from the result; callers re-order and reconcile.
func (s *Store) ChunksByIDs(ctx context.Context, ids []string) ([]ChunkRow, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, repo_url, file_path, chunk_index, start_char, end_char, token_count, text, created_at
                 FROM chunks WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build chunk query: %w", err)
	}
	var rows []ChunkRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}
	return rows, nil
}

// HasFile reports whether the repository has at least one stored chunk for
// the given file path.
func (s *Store) HasFile(ctx context.Context, repoURL, filePath string) (bool, error) {
	if err := s.ensureReady(); err != nil {
		return false, err
	}
	var count int
	if err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(1) FROM chunks WHERE repo_url = ? AND file_path = ?`, repoURL, filePath); err != nil {
		return false, fmt.Errorf("check file: %w", err)
	}
	return count > 0, nil
}
