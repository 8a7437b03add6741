package retrieval

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Embedder turns texts into vectors. Implementations must return one vector
// per input text, in input order.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GeminiEmbedder embeds through the Gemini API.
type GeminiEmbedder struct {
	client   *genai.Client
	model    string
	taskType string
	logger   *zap.Logger
}

func NewGeminiEmbedder(client *genai.Client, model string, logger *zap.Logger) *GeminiEmbedder {
	if model == "" {
		model = "gemini-embedding-001"
	}
	return &GeminiEmbedder{
		client:   client,
		model:    model,
		taskType: "SEMANTIC_SIMILARITY",
		logger:   logger,
	}
}

func (e *GeminiEmbedder) Name() string {
	return "genai:" + e.model
}

func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.client == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: e.taskType,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embed failed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}

	e.logger.Debug("Gemini embeddings generated", zap.Int("count", len(vectors)), zap.String("model", e.model))
	return vectors, nil
}

// OpenAIEmbedder embeds through an OpenAI-compatible /embeddings endpoint,
// including local Ollama servers when a base URL is given.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIEmbedder(apiKey, baseURL, model string, logger *zap.Logger) *OpenAIEmbedder {
	if apiKey == "" {
		apiKey = "local"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "text-embedding-3-small"
	}

	client := openai.NewClient(opts...)
	return &OpenAIEmbedder{
		client: &client,
		model:  model,
		logger: logger,
	}
}

func (e *OpenAIEmbedder) Name() string {
	return "openai:" + e.model
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		idx := int(item.Index)
		if idx < 0 || idx >= len(texts) {
			return nil, fmt.Errorf("openai embedding index %d out of range", idx)
		}
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		vectors[idx] = vec
	}

	e.logger.Debug("OpenAI embeddings generated", zap.Int("count", len(vectors)), zap.String("model", e.model))
	return vectors, nil
}
