package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return NewCacheServiceWithClient(client, logger), nil
}

// NewCacheServiceWithClient wraps an existing client without pinging it.
func NewCacheServiceWithClient(client *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		client: client,
		logger: logger,
	}
}

// Get decodes the JSON value stored at key into dest. found is false on a miss.
func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return false, errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return true, nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

// MGet returns the raw values for keys in order; missing keys yield "" and
// ok=false at the same index.
func (c *CacheService) MGet(ctx context.Context, keys []string) ([]string, []bool, error) {
	if len(keys) == 0 {
		return nil, nil, nil
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Error("Cache mget failed", zap.Int("count", len(keys)), zap.Error(err))
		return nil, nil, errors.NewCacheError("mget failed", "mget", fmt.Sprintf("%d keys", len(keys)), err)
	}

	out := make([]string, len(keys))
	found := make([]bool, len(keys))
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[i] = s
			found[i] = true
		}
	}
	return out, found, nil
}

// SetMany stores JSON values in a single pipeline.
func (c *CacheService) SetMany(ctx context.Context, entries map[string]any, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for key, value := range entries {
		jsonData, err := json.Marshal(value)
		if err != nil {
			return errors.NewCacheError("marshal failed", "set", key, err)
		}
		pipe.Set(ctx, key, jsonData, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Error("Cache pipeline set failed", zap.Int("count", len(entries)), zap.Error(err))
		return errors.NewCacheError("pipeline set failed", "set", fmt.Sprintf("%d keys", len(entries)), err)
	}
	return nil
}

func (c *CacheService) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

func (c *CacheService) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		c.logger.Error("Cache keys search failed", zap.String("pattern", pattern), zap.Error(err))
		return []string{}, errors.NewCacheError("keys search failed", "keys", pattern, err)
	}
	return keys, nil
}

func (c *CacheService) DelMany(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	deleted, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Error("Cache delete many failed", zap.Int("count", len(keys)), zap.Error(err))
		return 0, errors.NewCacheError("delete many failed", "del", fmt.Sprintf("%d keys", len(keys)), err)
	}

	return deleted, nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}
