// File path: internal/sqlite/config.go
package sqlite

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Path            string
	BusyTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfig reads SQLite settings from the environment with sensible
// defaults for a single-process server.
func LoadConfig() (Config, error) {
	cfg := Config{
		Path: strings.TrimSpace(os.Getenv("REPOLENS_DB_PATH")),
	}
	if timeout := strings.TrimSpace(os.Getenv("REPOLENS_DB_BUSY_TIMEOUT")); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, err
		}
		cfg.BusyTimeout = parsed
	}
	if conns := strings.TrimSpace(os.Getenv("REPOLENS_DB_MAX_OPEN_CONNS")); conns != "" {
		value, err := strconv.Atoi(conns)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxOpenConns = value
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Path) == "" {
		c.Path = "repolens.db"
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 8
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 4
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = 10 * time.Minute
	}
}
