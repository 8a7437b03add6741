package config

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"LLM_ENABLE_FALLBACK", "EMBEDDING_PROVIDER", "DATASET_SOURCE", "DATASET_PATH",
		"PIPELINE_ENABLE_RETRIEVAL", "PIPELINE_RETRIEVAL_K", "PIPELINE_BATCH_CONCURRENCY",
		"GATEWAY_ROOMS", "GATEWAY_REQUEST_TIMEOUT", "EMBEDDING_CACHE_TTL", "MODEL_SARCASM",
	} {
		t.Setenv(key, "")
	}
}

func requireConfigError(t *testing.T, err error, setting string) {
	t.Helper()
	var cfgErr *errors.ConfigError
	require.True(t, stderrors.As(err, &cfgErr), "expected ConfigError, got %v", err)
	assert.Equal(t, setting, cfgErr.Setting)
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.GeminiModel)
	assert.True(t, cfg.Pipeline.EnableRetrieval)
	assert.True(t, cfg.Pipeline.EnableSarcasm)
	assert.False(t, cfg.Pipeline.EnableTranslation)
	assert.Equal(t, 4, cfg.Pipeline.RetrievalK)
	assert.Equal(t, 1, cfg.Pipeline.BatchConcurrency)
	assert.Equal(t, DatasetCSV, cfg.Dataset.Source)
	assert.Empty(t, cfg.Gateway.Rooms)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("MODEL_SARCASM", "qwen3:8b")
	t.Setenv("GATEWAY_ROOMS", "room-a, ,room-b")
	t.Setenv("GATEWAY_REQUEST_TIMEOUT", "45")
	t.Setenv("EMBEDDING_CACHE_TTL", "2h")

	cfg := FromEnv()
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "qwen3:8b", cfg.LLM.StageModels.Sarcasm)
	assert.Equal(t, []string{"room-a", "room-b"}, cfg.Gateway.Rooms)
	assert.Equal(t, 45*time.Second, cfg.Gateway.RequestTimeout)
	assert.Equal(t, 2*time.Hour, cfg.Embedding.CacheTTL)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()
	requireConfigError(t, cfg.Validate(), "llm.provider")

	cfg.LLM.GeminiAPIKey = "key"
	require.NoError(t, cfg.Validate())

	cfg.Embedding.Provider = ProviderOpenAI
	requireConfigError(t, cfg.Validate(), "embedding.provider")

	cfg.Pipeline.EnableRetrieval = false
	require.NoError(t, cfg.Validate())

	cfg.Pipeline.BatchConcurrency = 0
	requireConfigError(t, cfg.Validate(), "pipeline.batch_concurrency")

	cfg.Pipeline.BatchConcurrency = 1
	cfg.Pipeline.EnableRetrieval = true
	cfg.Embedding.Provider = ProviderGemini
	cfg.Dataset.Source = "parquet"
	requireConfigError(t, cfg.Validate(), "dataset.source")
}

func TestFallbackProvider(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()
	cfg.LLM.GeminiAPIKey = "g"

	assert.Empty(t, cfg.FallbackProvider())

	cfg.LLM.OpenAIAPIKey = "o"
	assert.Equal(t, ProviderOpenAI, cfg.FallbackProvider())

	cfg.LLM.EnableFallback = false
	assert.Empty(t, cfg.FallbackProvider())
}

func TestValidateGateway(t *testing.T) {
	cfg := &Config{}
	requireConfigError(t, cfg.ValidateGateway(), "gateway.base_url")

	cfg.Gateway.BaseURL = "http://bridge"
	cfg.Gateway.WSURL = "ws://bridge/ws"
	assert.NoError(t, cfg.ValidateGateway())
}
