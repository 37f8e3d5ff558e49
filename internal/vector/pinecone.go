// File path: internal/vector/pinecone.go
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/repolens/repolens/internal/common"
)

// upsertBatchSize bounds one data-plane request, matching the index service's
// per-call limit. Deletes use the same bound.
const upsertBatchSize = 100

// Index is the nearest-neighbor search store. Upsert overwrites by id, Query
// returns matches ordered by descending similarity score, Delete removes ids
// in batches (a zero-length set is a no-op). An empty Query result is a valid
// outcome, not an error.
type Index interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, repoURL string, topK int, filePath string) ([]Match, error)
	Delete(ctx context.Context, ids []string) error
}

// Record is the embedding of one chunk plus the metadata needed to filter a
// query without a second lookup. ID equals the chunk's identifier.
type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

type Metadata struct {
	RepoURL    string `json:"repoUrl"`
	FilePath   string `json:"filePath"`
	ChunkIndex int    `json:"chunkIndex"`
}

// Match is one ranked query result. Score is relative similarity (higher is
// more relevant); its scale is index-defined and must not be read as a
// probability.
type Match struct {
	ID         string
	Score      float32
	FilePath   string
	ChunkIndex int
}

// Client talks to a Pinecone-style vector index data plane over REST.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport

	baseURL   string
	apiKey    string
	namespace string
}

// NewFromEnv constructs a client from environment configuration.
func NewFromEnv() (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// New constructs a client using the provided configuration.
func New(cfg Config) *Client {
	logger := common.Logger()
	logger.Info("vector: initializing index client", "host", cfg.IndexHost, "namespace", cfg.Namespace, "timeout", cfg.Timeout)
	transport := &http.Transport{
		MaxIdleConns:        cfg.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: cfg.HTTPMaxIdlePerHost,
		IdleConnTimeout:     cfg.HTTPIdleConnTimeout,
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		transport:  transport,
		baseURL:    strings.TrimRight(cfg.IndexHost, "/"),
		apiKey:     cfg.APIKey,
		namespace:  cfg.Namespace,
	}
}

// Upsert writes records in batches of at most upsertBatchSize, overwriting by
// id. A failed batch aborts the call and is surfaced to the caller.
func (c *Client) Upsert(ctx context.Context, records []Record) error {
	logger := common.Logger()
	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		payload := map[string]interface{}{
			"vectors": records[start:end],
		}
		if c.namespace != "" {
			payload["namespace"] = c.namespace
		}
		if err := c.doRequest(ctx, c.baseURL+"/vectors/upsert", payload, nil); err != nil {
			logger.Error("vector: upsert batch failed", "batch", start/upsertBatchSize+1, "error", err)
			return fmt.Errorf("upsert batch %d: %w", start/upsertBatchSize+1, err)
		}
		logger.Debug("vector: upserted batch", "batch", start/upsertBatchSize+1, "records", end-start)
	}
	return nil
}

// Query runs a filtered topK search. Results are scoped server-side to the
// given repository, and optionally to a single file.
func (c *Client) Query(ctx context.Context, vector []float32, repoURL string, topK int, filePath string) ([]Match, error) {
	if topK <= 0 {
		topK = 8
	}
	filter := map[string]interface{}{
		"repoUrl": map[string]interface{}{"$eq": repoURL},
	}
	if filePath != "" {
		filter["filePath"] = map[string]interface{}{"$eq": filePath}
	}
	payload := map[string]interface{}{
		"vector":          vector,
		"topK":            topK,
		"filter":          filter,
		"includeMetadata": true,
	}
	if c.namespace != "" {
		payload["namespace"] = c.namespace
	}
	var resp struct {
		Matches []struct {
			ID       string  `json:"id"`
			Score    float32 `json:"score"`
			Metadata struct {
				FilePath   string  `json:"filePath"`
				ChunkIndex float64 `json:"chunkIndex"`
			} `json:"metadata"`
		} `json:"matches"`
	}
	if err := c.doRequest(ctx, c.baseURL+"/query", payload, &resp); err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if len(resp.Matches) == 0 {
		common.Logger().Warn("vector: query returned no matches", "repo", repoURL, "file", filePath)
		return nil, nil
	}
	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, Match{
			ID:         m.ID,
			Score:      m.Score,
			FilePath:   m.Metadata.FilePath,
			ChunkIndex: int(m.Metadata.ChunkIndex),
		})
	}
	return matches, nil
}

// Delete removes the given ids in batches. Deleting nothing is a no-op.
func (c *Client) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		common.Logger().Debug("vector: no ids to delete")
		return nil
	}
	for start := 0; start < len(ids); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		payload := map[string]interface{}{
			"ids": ids[start:end],
		}
		if c.namespace != "" {
			payload["namespace"] = c.namespace
		}
		if err := c.doRequest(ctx, c.baseURL+"/vectors/delete", payload, nil); err != nil {
			return fmt.Errorf("delete batch %d: %w", start/upsertBatchSize+1, err)
		}
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	if c == nil {
		return errors.New("vector client not configured")
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("index %s failed: %s: %s", endpoint, resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Close releases pooled transport resources.
func (c *Client) Close() error {
	if c != nil && c.transport != nil {
		c.transport.CloseIdleConnections()
	}
	return nil
}

var _ Index = (*Client)(nil)
