// File path: internal/ingest/config.go
package ingest

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// MaxChunks caps the total chunks ingested for one repository. Files
	// past the ceiling are not chunked at all.
	MaxChunks int
}

// LoadConfig reads ingestion settings from the environment.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if maxChunks := strings.TrimSpace(os.Getenv("INGEST_MAX_CHUNKS")); maxChunks != "" {
		value, err := strconv.Atoi(maxChunks)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxChunks = value
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxChunks <= 0 {
		c.MaxChunks = 2000
	}
}
