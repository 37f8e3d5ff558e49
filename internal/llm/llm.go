// File path: internal/llm/llm.go
package llm

import (
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/repolens/repolens/internal/common"
	"github.com/repolens/repolens/internal/llm/providers"
)

// Provider produces embeddings and completions. EmbedDocuments and EmbedQuery
// must use the same model so that document and query vectors share one vector
// space; a mismatch makes similarity search meaningless.
type Provider = providers.Provider

// NewProvider selects a provider from the environment. With OPENAI_API_KEY set
// it returns the OpenAI-backed provider (optionally pointed at an
// OpenAI-compatible endpoint via OPENAI_BASE_URL); otherwise it falls back to
// the deterministic local provider, which is only useful for development and
// tests.
func NewProvider() Provider {
	logger := common.Logger()
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		logger.Warn("llm: OPENAI_API_KEY not set; falling back to local provider")
		return providers.NewLocalProvider()
	}
	cfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); base != "" {
		logger.Info("llm: using custom OpenAI-compatible endpoint", "endpoint", base)
		cfg.BaseURL = base
	}
	client := openai.NewClientWithConfig(cfg)
	logger.Info("llm: OpenAI provider selected")
	return providers.NewOpenAIProvider(client)
}
