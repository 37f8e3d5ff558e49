// File path: internal/vector/config.go
package vector

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	IndexHost string
	APIKey    string
	Namespace string

	Timeout time.Duration

	HTTPMaxIdleConns    int
	HTTPMaxIdlePerHost  int
	HTTPIdleConnTimeout time.Duration
}

// LoadConfig reads the vector index configuration from the environment.
// PINECONE_INDEX_HOST is the index's data-plane URL and is required; the
// remaining settings have defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		IndexHost: strings.TrimSpace(os.Getenv("PINECONE_INDEX_HOST")),
		APIKey:    strings.TrimSpace(os.Getenv("PINECONE_API_KEY")),
		Namespace: strings.TrimSpace(os.Getenv("PINECONE_NAMESPACE")),
	}
	if cfg.IndexHost == "" {
		return Config{}, errors.New("PINECONE_INDEX_HOST not set")
	}
	if timeout := strings.TrimSpace(os.Getenv("PINECONE_TIMEOUT")); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, errors.New("invalid PINECONE_TIMEOUT: " + err.Error())
		}
		cfg.Timeout = parsed
	}
	if maxIdle := strings.TrimSpace(os.Getenv("PINECONE_HTTP_MAX_IDLE_CONNS")); maxIdle != "" {
		value, err := strconv.Atoi(maxIdle)
		if err != nil {
			return Config{}, errors.New("invalid PINECONE_HTTP_MAX_IDLE_CONNS: " + err.Error())
		}
		cfg.HTTPMaxIdleConns = value
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.IndexHost = strings.TrimRight(c.IndexHost, "/")
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.HTTPMaxIdleConns <= 0 {
		c.HTTPMaxIdleConns = 32
	}
	if c.HTTPMaxIdlePerHost <= 0 {
		c.HTTPMaxIdlePerHost = 8
	}
	if c.HTTPIdleConnTimeout <= 0 {
		c.HTTPIdleConnTimeout = 90 * time.Second
	}
}
