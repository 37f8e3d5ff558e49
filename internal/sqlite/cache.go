// File path: internal/sqlite/cache.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/repolens/repolens/internal/common"
)

// CacheGet returns the cached response for the key when present and not yet
// expired. Expired entries are deleted lazily on read.
func (s *Store) CacheGet(ctx context.Context, key string) (string, bool, error) {
	if err := s.ensureReady(); err != nil {
		return "", false, err
	}
	var row cacheRow
	err := s.db.GetContext(ctx, &row,
		`SELECT cache_key, feature, repo_url, target, response, created_at, expires_at
                 FROM cache WHERE cache_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	if !row.ExpiresAt.After(time.Now().UTC()) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE cache_key = ?`, key); err != nil {
			common.Logger().Warn("cache: failed to evict expired entry", "key", key, "error", err)
		}
		return "", false, nil
	}
	return row.Response, true, nil
}

// CacheSet stores a response under the key, overwriting any existing entry.
func (s *Store) CacheSet(ctx context.Context, key, feature, repoURL, target, response string, expiresAt time.Time) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache (cache_key, feature, repo_url, target, response, expires_at)
                 VALUES (?, ?, ?, ?, ?, ?)
                 ON CONFLICT(cache_key) DO UPDATE SET
                        feature = excluded.feature,
                        repo_url = excluded.repo_url,
                        target = excluded.target,
                        response = excluded.response,
                        created_at = CURRENT_TIMESTAMP,
                        expires_at = excluded.expires_at`,
		key, feature, repoURL, target, response, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// CachePurgeExpired removes every expired cache entry and returns the count.
func (s *Store) CachePurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return removed, nil
}
