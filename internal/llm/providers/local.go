// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

type Provider interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

const localDimension = 256

// LocalProvider is a deterministic, offline stand-in used when no API key is
// configured. Its embeddings are token-hash projections, good enough for
// wiring and tests but not for real retrieval quality.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashEmbed(text)
	}
	return vectors, nil
}

func (l *LocalProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return hashEmbed(text), nil
}

func (l *LocalProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("empty prompt")
	}
	return "[local-stub] no language model configured; set OPENAI_API_KEY", nil
}

func (l *LocalProvider) Name() string {
	return "local"
}

func hashEmbed(text string) []float32 {
	vec := make([]float32, localDimension)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(field))
		vec[h.Sum32()%localDimension]++
	}
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		inv := float32(1.0 / math.Sqrt(float64(norm)))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
