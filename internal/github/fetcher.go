// File path: internal/github/fetcher.go
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gogithub "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/repolens/repolens/internal/common"
)

// Source file extensions eligible for ingestion.
var allowedExtensions = []string{".js", ".ts", ".jsx", ".tsx", ".go", ".py", ".java", ".rb", ".rs", ".md"}

// ErrRepoNotFound indicates the repository does not exist or is not visible
// to the configured credentials.
var ErrRepoNotFound = errors.New("repository not found")

// ErrRateLimited indicates GitHub rejected the request because the rate
// limit is exhausted.
var ErrRateLimited = errors.New("github rate limit exceeded")

// File is one fetched source file.
type File struct {
	Path    string
	Content string
}

// Result is the outcome of fetching a repository's eligible source files.
// Files preserve the repository tree order.
type Result struct {
	DefaultBranch string
	Files         []File
}

// Fetcher downloads eligible source files from GitHub's REST API.
type Fetcher struct {
	client  *gogithub.Client
	limiter *rate.Limiter
	cfg     Config
}

// NewFetcher constructs a Fetcher. With a token configured, requests are
// authenticated; without one they are anonymous.
func NewFetcher(cfg Config) *Fetcher {
	cfg.applyDefaults()
	httpClient := http.DefaultClient
	if cfg.Token != "" {
		httpClient = oauth2.NewClient(context.Background(),
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}
	return &Fetcher{
		client:  gogithub.NewClient(httpClient),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		cfg:     cfg,
	}
}

// NewFetcherFromEnv constructs a Fetcher from environment configuration.
func NewFetcherFromEnv() (*Fetcher, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewFetcher(cfg), nil
}

func isAllowedFile(path string) bool {
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Fetch resolves the default branch, walks the tree and downloads every
// eligible file. Files over the size limit or failing to download are skipped
// with a warning; the list is truncated at the file ceiling.
func (f *Fetcher) Fetch(ctx context.Context, owner, name string) (*Result, error) {
	logger := common.Logger()

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	repo, _, err := f.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, mapAPIError(err)
	}
	branch := repo.GetDefaultBranch()

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	tree, _, err := f.client.Git.GetTree(ctx, owner, name, branch, true)
	if err != nil {
		return nil, mapAPIError(err)
	}

	var paths []string
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" && isAllowedFile(entry.GetPath()) {
			paths = append(paths, entry.GetPath())
		}
	}
	if len(paths) > f.cfg.MaxFiles {
		logger.Warn("github: truncating eligible files", "eligible", len(paths), "limit", f.cfg.MaxFiles)
		paths = paths[:f.cfg.MaxFiles]
	}
	logger.Info("github: fetching files", "repo", owner+"/"+name, "branch", branch, "files", len(paths))

	// Download in parallel but keep tree order by writing into fixed slots.
	slots := make([]*File, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.cfg.Concurrency)
	for i, path := range paths {
		group.Go(func() error {
			if err := f.limiter.Wait(groupCtx); err != nil {
				return err
			}
			content, err := f.fileContent(groupCtx, owner, name, path)
			if err != nil {
				if errors.Is(err, ErrRateLimited) || groupCtx.Err() != nil {
					return err
				}
				logger.Warn("github: skipping file", "path", path, "error", err)
				return nil
			}
			if len(content) > f.cfg.MaxFileSizeBytes {
				logger.Warn("github: skipping oversized file", "path", path, "bytes", len(content))
				return nil
			}
			slots[i] = &File{Path: path, Content: content}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &Result{DefaultBranch: branch}
	for _, slot := range slots {
		if slot != nil {
			result.Files = append(result.Files, *slot)
		}
	}
	return result, nil
}

func (f *Fetcher) fileContent(ctx context.Context, owner, name, path string) (string, error) {
	fileContent, _, _, err := f.client.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		return "", mapAPIError(err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("path %s is not a file", path)
	}
	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return content, nil
}

func mapAPIError(err error) error {
	var rateErr *gogithub.RateLimitError
	if errors.As(err, &rateErr) {
		return ErrRateLimited
	}
	var respErr *gogithub.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return ErrRepoNotFound
		case http.StatusForbidden, http.StatusTooManyRequests:
			return ErrRateLimited
		}
	}
	return err
}
