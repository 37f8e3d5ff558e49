// File path: internal/sqlite/types.go
package sqlite

import (
	"database/sql"
	"time"
)

// Ingestion lifecycle states for a registered repository. A repository that
// has never been submitted simply has no row.
const (
	StatusPending  = "pending"
	StatusIngested = "ingested"
	StatusFailed   = "failed"
)

// RepoRecord is one row of the repository registry, keyed by the canonical
// repository URL.
type RepoRecord struct {
	RepoURL       string       `db:"repo_url"`
	Owner         string       `db:"owner"`
	Name          string       `db:"name"`
	DefaultBranch string       `db:"default_branch"`
	Status        string       `db:"status"`
	FileCount     int          `db:"file_count"`
	ChunkCount    int          `db:"chunk_count"`
	IngestedAt    sql.NullTime `db:"ingested_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

// ChunkRow is one stored chunk, the durable side of a vector record. The id
// matches the id written to the vector index.
type ChunkRow struct {
	ID         string    `db:"id"`
	RepoURL    string    `db:"repo_url"`
	FilePath   string    `db:"file_path"`
	ChunkIndex int       `db:"chunk_index"`
	StartChar  int       `db:"start_char"`
	EndChar    int       `db:"end_char"`
	TokenCount int       `db:"token_count"`
	Text       string    `db:"text"`
	CreatedAt  time.Time `db:"created_at"`
}

type cacheRow struct {
	CacheKey  string    `db:"cache_key"`
	Feature   string    `db:"feature"`
	RepoURL   string    `db:"repo_url"`
	Target    string    `db:"target"`
	Response  string    `db:"response"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}
