package app

import (
	"context"
	"fmt"

	"github.com/kapu/toxicity-agent-go/internal/adapter"
	"github.com/kapu/toxicity-agent-go/internal/config"
	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/gateway"
	"github.com/kapu/toxicity-agent-go/internal/moderation"
	"github.com/kapu/toxicity-agent-go/internal/pipeline"
	"github.com/kapu/toxicity-agent-go/internal/prompt"
	"github.com/kapu/toxicity-agent-go/internal/service/ai"
	"github.com/kapu/toxicity-agent-go/internal/service/cache"
	"github.com/kapu/toxicity-agent-go/internal/service/database"
	"github.com/kapu/toxicity-agent-go/internal/service/dataset"
	"github.com/kapu/toxicity-agent-go/internal/service/retrieval"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Container bundles the assembled pipeline and the resources it owns.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Pipeline *pipeline.Pipeline
	Models   *ai.ModelManager
	Store    *retrieval.Store

	closers []func()
}

// Build assembles providers, the example store and the pipeline. All network
// setup (LLM clients, Redis, Postgres, example embedding) happens here so the
// pipeline itself holds no global state.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	var geminiClient *genai.Client
	if cfg.LLM.GeminiAPIKey != "" {
		geminiClient, err = ai.NewGeminiClient(ctx, cfg.LLM.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
	}

	// AI stack
	primary := newTextProvider(cfg.LLM.Provider, cfg, geminiClient, logger)
	var fallback ai.TextProvider
	if name := cfg.FallbackProvider(); name != "" {
		fallback = newTextProvider(name, cfg, geminiClient, logger)
	}

	c.Models, err = ai.NewModelManager(primary, fallback, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}
	if cfg.LLM.PingOnStart {
		if err = c.Models.Ping(ctx); err != nil {
			return nil, err
		}
		logger.Info("LLM backend reachable")
	}

	builder := prompt.NewPromptBuilder()
	stages := pipeline.Stages{
		Translator: ai.NewTranslator(c.Models, builder, logger).WithModel(cfg.LLM.StageModels.Translation),
		Sarcasm:    ai.NewSarcasmDetector(c.Models, builder, logger).WithModel(cfg.LLM.StageModels.Sarcasm),
		Classifier: ai.NewClassifier(c.Models, builder, logger).WithModel(cfg.LLM.StageModels.Classification),
		Responder:  ai.NewResponder(c.Models, builder, logger).WithModel(cfg.LLM.StageModels.Explanation),
	}

	// Example store
	if cfg.Pipeline.EnableRetrieval {
		c.Store, err = c.buildStore(ctx, geminiClient)
		if err != nil {
			return nil, err
		}
		stages.Retriever = c.Store
	}

	c.Pipeline, err = pipeline.New(stages, pipeline.Options{
		EnableRetrieval:   cfg.Pipeline.EnableRetrieval,
		EnableSarcasm:     cfg.Pipeline.EnableSarcasm,
		EnableTranslation: cfg.Pipeline.EnableTranslation,
		RetrievalK:        cfg.Pipeline.RetrievalK,
		BatchConcurrency:  cfg.Pipeline.BatchConcurrency,
	}, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Moderation pipeline ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.Bool("fallback", fallback != nil),
		zap.Bool("retrieval", cfg.Pipeline.EnableRetrieval),
		zap.Bool("sarcasm", cfg.Pipeline.EnableSarcasm),
		zap.Bool("translation", cfg.Pipeline.EnableTranslation),
	)
	return c, nil
}

func (c *Container) buildStore(ctx context.Context, geminiClient *genai.Client) (*retrieval.Store, error) {
	cfg := c.Config

	var embedder retrieval.Embedder
	switch cfg.Embedding.Provider {
	case config.ProviderOpenAI:
		embedder = retrieval.NewOpenAIEmbedder(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIBaseURL, cfg.Embedding.Model, c.Logger)
	default:
		embedder = retrieval.NewGeminiEmbedder(geminiClient, cfg.Embedding.Model, c.Logger)
	}

	if cfg.Redis.Enabled {
		cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", err)
		}
		c.closers = append(c.closers, func() { _ = cacheSvc.Close() })
		embedder = retrieval.NewCachedEmbedder(embedder, cacheSvc, cfg.Embedding.CacheTTL, c.Logger)
	}

	source, err := c.datasetSource()
	if err != nil {
		return nil, err
	}
	examples, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}

	store := retrieval.NewStore(embedder, c.Logger)
	if err := store.Build(ctx, examples); err != nil {
		return nil, err
	}
	return store, nil
}

func (c *Container) datasetSource() (dataset.Source, error) {
	cfg := c.Config
	if cfg.Dataset.Source != config.DatasetPostgres {
		return dataset.NewCSVSource(cfg.Dataset.Path, c.Logger), nil
	}

	postgresSvc, err := OpenPostgres(cfg, c.Logger)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() { _ = postgresSvc.Close() })
	return dataset.NewPostgresSource(postgresSvc, cfg.Dataset.Table, c.Logger)
}

// OpenPostgres connects using the Postgres section of cfg.
func OpenPostgres(cfg *config.Config, logger *zap.Logger) (*database.PostgresService, error) {
	return database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, logger)
}

// NewListener wires the chat gateway to the pipeline. The returned websocket
// is what Listener.Run consumes.
func (c *Container) NewListener() (*moderation.Listener, *gateway.WebSocket, error) {
	if c == nil || c.Pipeline == nil {
		return nil, nil, fmt.Errorf("pipeline not initialized")
	}
	if err := c.Config.ValidateGateway(); err != nil {
		return nil, nil, err
	}

	gw := c.Config.Gateway
	client := gateway.NewClient(gw.BaseURL, 0, c.Logger)
	ws := gateway.NewWebSocket(gw.WSURL,
		constants.WebSocketConfig.MaxReconnectAttempts,
		constants.WebSocketConfig.ReconnectDelay,
		c.Logger,
	)

	listener := moderation.NewListener(
		c.Pipeline,
		client,
		adapter.NewMessageAdapter(gw.Prefix),
		adapter.NewResponseFormatter(gw.Prefix),
		moderation.ListenerConfig{
			BotName:        gw.BotName,
			Rooms:          gw.Rooms,
			MaxConcurrent:  gw.MaxConcurrent,
			RequestTimeout: gw.RequestTimeout,
		},
		c.Logger,
	)
	ws.SetFilter(listener.Filter())
	return listener, ws, nil
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func newTextProvider(name string, cfg *config.Config, geminiClient *genai.Client, logger *zap.Logger) ai.TextProvider {
	switch name {
	case config.ProviderOpenAI:
		if p := ai.NewOpenAIProvider(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIBaseURL, cfg.LLM.OpenAIModel, logger); p != nil {
			return p
		}
	case config.ProviderGemini:
		if geminiClient != nil {
			return ai.NewGeminiProvider(geminiClient, cfg.LLM.GeminiModel, logger)
		}
	}
	return nil
}
