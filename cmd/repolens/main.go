// File path: cmd/repolens/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/repolens/repolens/internal/api"
	"github.com/repolens/repolens/internal/cache"
	"github.com/repolens/repolens/internal/common"
	"github.com/repolens/repolens/internal/github"
	"github.com/repolens/repolens/internal/ingest"
	"github.com/repolens/repolens/internal/llm"
	"github.com/repolens/repolens/internal/rag"
	"github.com/repolens/repolens/internal/sqlite"
	"github.com/repolens/repolens/internal/vector"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("repolens: .env file not loaded", "error", err)
	} else {
		logger.Info("repolens: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", defaultDBPath(), "path to the SQLite database")
	cacheTTL := flag.String("cache-ttl", "", "response cache TTL (e.g. 12h, empty for default)")
	flag.Parse()

	logger.Info("repolens: startup initiated", "addr", *addr, "db", *dbPath)

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		logger.Error("repolens: sqlite open failed", "error", err)
		fmt.Println("sqlite error:", err)
		os.Exit(1)
	}
	defer store.Close()

	index, err := vector.NewFromEnv()
	if err != nil {
		logger.Error("repolens: vector index configuration failed", "error", err)
		fmt.Println("vector index error:", err)
		os.Exit(1)
	}
	defer index.Close()

	provider := llm.NewProvider()
	logger.Info("repolens: llm provider ready", "provider", provider.Name())

	fetcher, err := github.NewFetcherFromEnv()
	if err != nil {
		logger.Error("repolens: fetcher configuration failed", "error", err)
		fmt.Println("fetcher config error:", err)
		os.Exit(1)
	}

	ingestCfg, err := ingest.LoadConfig()
	if err != nil {
		logger.Error("repolens: ingest configuration failed", "error", err)
		fmt.Println("ingest config error:", err)
		os.Exit(1)
	}
	ingestor := ingest.NewService(fetcher, provider, index, store, ingestCfg)

	responseCache := cache.New(store)
	if trimmed := strings.TrimSpace(*cacheTTL); trimmed != "" {
		ttl, err := time.ParseDuration(trimmed)
		if err != nil {
			logger.Error("repolens: invalid cache ttl", "value", trimmed, "error", err)
			fmt.Println("cache ttl error:", err)
			os.Exit(1)
		}
		responseCache = cache.NewWithTTL(store, ttl)
	}

	engine := rag.NewEngine(provider, index, store, responseCache)

	server, err := api.NewServer(ingestor, engine, store)
	if err != nil {
		logger.Error("repolens: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("repolens: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)

	httpServer := &http.Server{Addr: *addr, Handler: server}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Error("repolens: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	case <-ctx.Done():
		logger.Info("repolens: shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("repolens: shutdown failed", "error", err)
		}
	}
}

func defaultDBPath() string {
	return filepath.Join("data", "repolens.db")
}
