package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DatasetCSV      = "csv"
	DatasetPostgres = "postgres"
)

type Config struct {
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Dataset   DatasetConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Pipeline  PipelineConfig
	Gateway   GatewayConfig
	Logging   LoggingConfig
}

type LLMConfig struct {
	// Provider is the primary backend; the other one becomes the fallback
	// when EnableFallback is set and it is configured.
	Provider       string
	GeminiAPIKey   string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string // Ollama 등 OpenAI 호환 서버
	EnableFallback bool
	PingOnStart    bool
	StageModels    StageModels
}

// StageModels pins individual stages to a model. Empty means provider default.
type StageModels struct {
	Translation    string
	Sarcasm        string
	Classification string
	Explanation    string
}

type EmbeddingConfig struct {
	Provider string
	Model    string
	// CacheTTL applies when Redis is enabled.
	CacheTTL time.Duration
}

type DatasetConfig struct {
	Source string
	Path   string
	Table  string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type PipelineConfig struct {
	EnableRetrieval   bool
	EnableSarcasm     bool
	EnableTranslation bool
	RetrievalK        int
	BatchConcurrency  int
}

type GatewayConfig struct {
	BaseURL        string
	WSURL          string
	Prefix         string
	BotName        string
	Rooms          []string
	MaxConcurrent  int
	RequestTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// Load reads .env (when present) and the environment, then validates.
func Load() (*Config, error) {
	cfg := FromEnvFile()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// FromEnvFile loads .env into the environment, if present, then calls FromEnv.
func FromEnvFile() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without validating it.
func FromEnv() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
			GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
			OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
			EnableFallback: getEnvBool("LLM_ENABLE_FALLBACK", true),
			PingOnStart:    getEnvBool("LLM_PING_ON_START", false),
			StageModels: StageModels{
				Translation:    getEnv("MODEL_TRANSLATION", ""),
				Sarcasm:        getEnv("MODEL_SARCASM", ""),
				Classification: getEnv("MODEL_CLASSIFICATION", ""),
				Explanation:    getEnv("MODEL_EXPLANATION", ""),
			},
		},
		Embedding: EmbeddingConfig{
			Provider: strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderGemini)),
			Model:    getEnv("EMBEDDING_MODEL", ""),
			CacheTTL: getEnvDuration("EMBEDDING_CACHE_TTL", constants.CacheTTL.ExampleEmbedding),
		},
		Dataset: DatasetConfig{
			Source: strings.ToLower(getEnv("DATASET_SOURCE", DatasetCSV)),
			Path:   getEnv("DATASET_PATH", "data/toxicity_examples.csv"),
			Table:  getEnv("DATASET_TABLE", "toxicity_examples"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "moderator"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "moderation"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Pipeline: PipelineConfig{
			EnableRetrieval:   getEnvBool("PIPELINE_ENABLE_RETRIEVAL", true),
			EnableSarcasm:     getEnvBool("PIPELINE_ENABLE_SARCASM", true),
			EnableTranslation: getEnvBool("PIPELINE_ENABLE_TRANSLATION", false),
			RetrievalK:        getEnvInt("PIPELINE_RETRIEVAL_K", constants.RetrievalConfig.DefaultK),
			BatchConcurrency:  getEnvInt("PIPELINE_BATCH_CONCURRENCY", 1),
		},
		Gateway: GatewayConfig{
			BaseURL:        getEnv("GATEWAY_BASE_URL", "http://localhost:3000"),
			WSURL:          getEnv("GATEWAY_WS_URL", "ws://localhost:3000/ws"),
			Prefix:         getEnv("GATEWAY_PREFIX", constants.ListenerConfig.CommandPrefix),
			BotName:        getEnv("GATEWAY_BOT_NAME", ""),
			Rooms:          parseCommaSeparated(getEnv("GATEWAY_ROOMS", "")),
			MaxConcurrent:  getEnvInt("GATEWAY_MAX_CONCURRENT", constants.ListenerConfig.MaxConcurrent),
			RequestTimeout: getEnvDuration("GATEWAY_REQUEST_TIMEOUT", constants.ListenerConfig.RequestTimeout),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
			File:   getEnv("LOG_FILE", ""),
		},
	}
}

// Validate checks what every command needs. Gateway settings are checked
// separately by ValidateGateway.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown LLM_PROVIDER %q", c.LLM.Provider), "llm.provider", nil)
	}
	if !c.providerConfigured(c.LLM.Provider) {
		return errors.NewConfigError(fmt.Sprintf("%s provider selected but no credentials set", c.LLM.Provider), "llm.provider", nil)
	}

	if c.Pipeline.RetrievalK < 0 {
		return errors.NewConfigError("PIPELINE_RETRIEVAL_K must not be negative", "pipeline.retrieval_k", nil)
	}
	if c.Pipeline.BatchConcurrency < 1 {
		return errors.NewConfigError("PIPELINE_BATCH_CONCURRENCY must be at least 1", "pipeline.batch_concurrency", nil)
	}

	if !c.Pipeline.EnableRetrieval {
		return nil
	}

	switch c.Embedding.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown EMBEDDING_PROVIDER %q", c.Embedding.Provider), "embedding.provider", nil)
	}
	if !c.providerConfigured(c.Embedding.Provider) {
		return errors.NewConfigError(fmt.Sprintf("%s embeddings selected but no credentials set", c.Embedding.Provider), "embedding.provider", nil)
	}

	switch c.Dataset.Source {
	case DatasetCSV:
		if strings.TrimSpace(c.Dataset.Path) == "" {
			return errors.NewConfigError("DATASET_PATH is required for csv datasets", "dataset.path", nil)
		}
	case DatasetPostgres:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown DATASET_SOURCE %q", c.Dataset.Source), "dataset.source", nil)
	}
	return nil
}

func (c *Config) ValidateGateway() error {
	if c.Gateway.BaseURL == "" {
		return errors.NewConfigError("GATEWAY_BASE_URL is required", "gateway.base_url", nil)
	}
	if c.Gateway.WSURL == "" {
		return errors.NewConfigError("GATEWAY_WS_URL is required", "gateway.ws_url", nil)
	}
	return nil
}

// FallbackProvider returns the provider used when the primary fails, or ""
// when fallback is off or the other provider has no credentials.
func (c *Config) FallbackProvider() string {
	if !c.LLM.EnableFallback {
		return ""
	}
	other := ProviderOpenAI
	if c.LLM.Provider == ProviderOpenAI {
		other = ProviderGemini
	}
	if !c.providerConfigured(other) {
		return ""
	}
	return other
}

func (c *Config) providerConfigured(provider string) bool {
	switch provider {
	case ProviderGemini:
		return c.LLM.GeminiAPIKey != ""
	case ProviderOpenAI:
		return c.LLM.OpenAIAPIKey != "" || c.LLM.OpenAIBaseURL != ""
	default:
		return false
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
