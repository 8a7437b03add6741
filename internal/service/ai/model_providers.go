package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned by a provider that answered without any text.
var ErrEmptyResponse = stderrors.New("empty response from model")

// TextProvider is one generative backend.
type TextProvider interface {
	Name() string
	DefaultModel() string
	Generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error)
	Ping(ctx context.Context) bool
}

type ProviderResult struct {
	Text  string
	Model string
}

// moderationSafetySettings disables Gemini's own harm blocking. The inputs are
// toxic by nature and a blocked candidate would hide them from the classifier.
var moderationSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// GeminiProvider wraps the Gemini client with preset-aware generation logic.
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
	logger       *zap.Logger
}

// NewGeminiClient creates a Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

func NewGeminiProvider(client *genai.Client, defaultModel string, logger *zap.Logger) *GeminiProvider {
	if defaultModel == "" {
		defaultModel = "gemini-2.5-flash"
	}
	return &GeminiProvider{
		client:       client,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (g *GeminiProvider) Name() string {
	return "Gemini"
}

func (g *GeminiProvider) DefaultModel() string {
	return g.defaultModel
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	if g.client == nil {
		return ProviderResult{}, fmt.Errorf("gemini client not initialized")
	}

	modelName := pickModel(opts, g.defaultModel)
	config := resolveConfig(preset, opts)

	g.logger.Debug("Generating with Gemini",
		zap.String("model", modelName),
		zap.String("preset", string(preset)),
	)

	topK := float32(config.TopK)
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &config.Temperature,
		TopP:            &config.TopP,
		TopK:            &topK,
		MaxOutputTokens: int32(config.MaxOutputTokens),
		SafetySettings:  moderationSafetySettings,
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelName, []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}, genConfig)
	if err != nil {
		g.logger.Error("Gemini generation failed", zap.Error(err))
		return ProviderResult{}, err
	}

	text := extractTextFromGeminiResponse(resp)
	if strings.TrimSpace(text) == "" {
		return ProviderResult{Model: modelName}, ErrEmptyResponse
	}

	g.logger.Debug("Gemini response received", zap.Int("length", len(text)))
	return ProviderResult{Text: text, Model: modelName}, nil
}

func (g *GeminiProvider) Ping(ctx context.Context) bool {
	if g.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	g.logger.Debug("Pinging Gemini API...")

	temp := float32(0)
	topP := float32(1)
	topK := float32(1)

	resp, err := g.client.Models.GenerateContent(ctx, g.defaultModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: "ping"}}},
	}, &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		TopK:            &topK,
		MaxOutputTokens: 10,
	})
	if err != nil {
		g.logger.Debug("Gemini ping failed", zap.Error(err))
		return false
	}

	return extractTextFromGeminiResponse(resp) != ""
}

// OpenAIProvider wraps any OpenAI-compatible chat completion endpoint.
// With a base URL it also talks to local servers such as Ollama.
type OpenAIProvider struct {
	client       *openai.Client
	name         string
	defaultModel string
	logger       *zap.Logger
}

// NewOpenAIProvider returns nil when neither an API key nor a base URL is set.
func NewOpenAIProvider(apiKey, baseURL, defaultModel string, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" && baseURL == "" {
		return nil
	}

	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		// 로컬 서버는 키를 검사하지 않지만 헤더는 필요하다
		opts = append(opts, option.WithAPIKey("local"))
	}
	name := "OpenAI"
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
		name = "OpenAICompatible"
	}
	if defaultModel == "" {
		defaultModel = "gpt-4.1-mini"
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:       &client,
		name:         name,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (o *OpenAIProvider) Name() string {
	return o.name
}

func (o *OpenAIProvider) DefaultModel() string {
	return o.defaultModel
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	if o.client == nil {
		return ProviderResult{}, fmt.Errorf("OpenAI client not initialized")
	}

	modelName := pickModel(opts, o.defaultModel)
	config := resolveConfig(preset, opts)

	o.logger.Debug("Generating with OpenAI",
		zap.String("provider", o.name),
		zap.String("model", modelName),
		zap.String("preset", string(preset)),
	)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(int64(config.MaxOutputTokens)),
	}

	// reasoning 계열 모델은 sampling 파라미터를 거부한다
	if !isReasoningModel(modelName) {
		params.Temperature = openai.Float(float64(config.Temperature))
		params.TopP = openai.Float(float64(config.TopP))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		o.logger.Error("OpenAI generation failed", zap.String("provider", o.name), zap.Error(err))
		return ProviderResult{}, err
	}

	if len(resp.Choices) == 0 {
		return ProviderResult{Model: modelName}, ErrEmptyResponse
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return ProviderResult{Model: modelName}, ErrEmptyResponse
	}

	o.logger.Debug("OpenAI response received",
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	return ProviderResult{Text: text, Model: modelName}, nil
}

func (o *OpenAIProvider) Ping(ctx context.Context) bool {
	if o.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o.logger.Debug("Pinging OpenAI API...", zap.String("provider", o.name))

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.defaultModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("ping"),
		},
		MaxCompletionTokens: openai.Int(16),
	}
	if !isReasoningModel(o.defaultModel) {
		params.Temperature = openai.Float(0)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		o.logger.Debug("OpenAI ping failed", zap.Error(err))
		return false
	}

	return len(resp.Choices) > 0
}

func isReasoningModel(model string) bool {
	name := strings.ToLower(model)
	for _, prefix := range []string{"gpt-5", "o1", "o3", "o4"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func pickModel(opts *GenerateOptions, fallback string) string {
	if opts != nil && opts.Model != "" {
		return opts.Model
	}
	return fallback
}

func extractTextFromGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" && !part.Thought {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}
