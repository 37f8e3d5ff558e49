// File path: internal/cache/cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/repolens/repolens/internal/common"
)

// promptVersion tags cache keys with the prompt generation so reworded
// prompts never serve answers built for the old wording.
const promptVersion = "v1"

// defaultTTL is how long a generated answer stays servable.
const defaultTTL = 24 * time.Hour

// Backend is the durable store behind the response cache. A Get on a missing
// or expired key reports ok=false without error.
type Backend interface {
	CacheGet(ctx context.Context, key string) (string, bool, error)
	CacheSet(ctx context.Context, key, feature, repoURL, target, response string, expiresAt time.Time) error
}

// ResponseCache memoizes generated answers keyed by feature, repository,
// target and prompt version. Backend failures degrade to cache misses so a
// broken cache never blocks answering.
type ResponseCache struct {
	backend Backend
	ttl     time.Duration
}

// New constructs a ResponseCache with the default TTL.
func New(backend Backend) *ResponseCache {
	return &ResponseCache{backend: backend, ttl: defaultTTL}
}

// NewWithTTL constructs a ResponseCache with an explicit TTL.
func NewWithTTL(backend Backend, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ResponseCache{backend: backend, ttl: ttl}
}

// Key derives the deterministic cache key for a feature invocation. Target is
// the feature-specific qualifier (a file path, or empty).
func Key(feature, repoURL, target string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s:%s", feature, repoURL, target, promptVersion)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for the invocation, if any. Backend errors
// are logged and reported as misses.
func (c *ResponseCache) Get(ctx context.Context, feature, repoURL, target string) (string, bool) {
	if c == nil || c.backend == nil {
		return "", false
	}
	response, ok, err := c.backend.CacheGet(ctx, Key(feature, repoURL, target))
	if err != nil {
		common.Logger().Warn("cache: read failed, treating as miss", "feature", feature, "repo", repoURL, "error", err)
		return "", false
	}
	if ok {
		common.Logger().Debug("cache: hit", "feature", feature, "repo", repoURL, "target", target)
	}
	return response, ok
}

// Put stores a generated response. Write failures are logged and swallowed;
// the caller already has the answer in hand.
func (c *ResponseCache) Put(ctx context.Context, feature, repoURL, target, response string) {
	if c == nil || c.backend == nil {
		return
	}
	expiresAt := time.Now().Add(c.ttl)
	if err := c.backend.CacheSet(ctx, Key(feature, repoURL, target), feature, repoURL, target, response, expiresAt); err != nil {
		common.Logger().Warn("cache: write failed", "feature", feature, "repo", repoURL, "error", err)
	}
}
