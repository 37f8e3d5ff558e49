// File path: internal/github/config.go
package github

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Token string

	MaxFiles         int
	MaxFileSizeBytes int
	Concurrency      int
	RequestsPerSec   float64
}

// LoadConfig reads fetcher settings from the environment. Everything has a
// default; the token is optional but unauthenticated requests hit GitHub's
// low anonymous rate limit quickly.
func LoadConfig() (Config, error) {
	cfg := Config{
		Token: strings.TrimSpace(os.Getenv("GITHUB_TOKEN")),
	}
	if maxFiles := strings.TrimSpace(os.Getenv("GITHUB_MAX_FILES")); maxFiles != "" {
		value, err := strconv.Atoi(maxFiles)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxFiles = value
	}
	if maxSize := strings.TrimSpace(os.Getenv("GITHUB_MAX_FILE_SIZE")); maxSize != "" {
		value, err := strconv.Atoi(maxSize)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxFileSizeBytes = value
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxFiles <= 0 {
		c.MaxFiles = 50
	}
	if c.MaxFileSizeBytes <= 0 {
		c.MaxFileSizeBytes = 500 * 1024
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	if c.RequestsPerSec <= 0 {
		c.RequestsPerSec = 10
	}
}
