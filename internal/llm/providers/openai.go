// File path: internal/llm/providers/openai.go
package providers

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/repolens/repolens/internal/common"
)

// embedBatchSize is the maximum number of inputs sent in one embedding
// request, matching the remote service's batch limit.
const embedBatchSize = 96

const (
	completionTemperature = 0.3
	completionMaxTokens   = 2000
)

type OpenAIProvider struct {
	client     *openai.Client
	chatModel  string
	embedModel string
}

func NewOpenAIProvider(client *openai.Client) *OpenAIProvider {
	chatModel := os.Getenv("OPENAI_CHAT_MODEL")
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	embedModel := os.Getenv("OPENAI_EMBED_MODEL")
	if embedModel == "" {
		embedModel = string(openai.SmallEmbedding3)
	}
	logger := common.Logger()
	logger.Info("llm: OpenAI provider configured", "chat_model", chatModel, "embed_model", embedModel)
	return &OpenAIProvider{client: client, chatModel: chatModel, embedModel: embedModel}
}

// EmbedDocuments embeds texts in batches, preserving input order. A failed
// batch aborts the whole call; retrying is the caller's responsibility.
func (o *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if o.client == nil {
		return nil, fmt.Errorf("nil openai client")
	}
	logger := common.Logger()
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		logger.Debug("llm: embedding batch", "batch", start/embedBatchSize+1, "items", end-start)
		resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(o.embedModel),
			Input: texts[start:end],
		})
		if err != nil {
			logger.Error("llm: embedding batch failed", "batch", start/embedBatchSize+1, "error", err)
			return nil, fmt.Errorf("embed batch %d: %w", start/embedBatchSize+1, err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embed batch %d: expected %d vectors, got %d", start/embedBatchSize+1, end-start, len(resp.Data))
		}
		for _, data := range resp.Data {
			vectors = append(vectors, data.Embedding)
		}
	}
	return vectors, nil
}

// EmbedQuery embeds a single retrieval-time query using the same model as
// EmbedDocuments.
func (o *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if o.client == nil {
		return nil, fmt.Errorf("nil openai client")
	}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(o.embedModel),
		Input: []string{text},
	})
	if err != nil {
		common.Logger().Error("llm: query embedding failed", "error", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed query: empty response")
	}
	return resp.Data[0].Embedding, nil
}

// Complete sends a single-turn prompt to the chat model with a fixed
// temperature and output budget.
func (o *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if o.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	logger := common.Logger()
	logger.Debug("llm: sending completion request", "model", o.chatModel)
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		logger.Error("llm: completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}
