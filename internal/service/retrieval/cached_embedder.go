package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// VectorCache is the subset of cache.CacheService used for embeddings.
type VectorCache interface {
	MGet(ctx context.Context, keys []string) ([]string, []bool, error)
	SetMany(ctx context.Context, entries map[string]any, ttl time.Duration) error
}

// CachedEmbedder stores vectors in Redis keyed by embedder name and a content
// hash, so restarts do not re-embed the whole example set. Cache failures are
// logged and bypassed.
type CachedEmbedder struct {
	inner  Embedder
	cache  VectorCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedEmbedder(inner Embedder, cache VectorCache, ttl time.Duration, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedEmbedder) Name() string {
	return c.inner.Name()
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = c.key(text)
	}

	vectors := make([][]float32, len(texts))
	var missing []int

	values, found, err := c.cache.MGet(ctx, keys)
	if err != nil {
		c.logger.Warn("Embedding cache read failed, embedding all texts", zap.Error(err))
		found = make([]bool, len(texts))
	}
	for i := range texts {
		if found[i] {
			var vec []float32
			if err := json.Unmarshal([]byte(values[i]), &vec); err == nil && len(vec) > 0 {
				vectors[i] = vec
				continue
			}
		}
		missing = append(missing, i)
	}

	if len(missing) == 0 {
		c.logger.Debug("Embedding cache hit", zap.Int("count", len(texts)))
		return vectors, nil
	}

	pending := make([]string, len(missing))
	for j, idx := range missing {
		pending[j] = texts[idx]
	}
	fresh, err := c.inner.Embed(ctx, pending)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]any, len(missing))
	for j, idx := range missing {
		vectors[idx] = fresh[j]
		entries[keys[idx]] = fresh[j]
	}
	if err := c.cache.SetMany(ctx, entries, c.ttl); err != nil {
		c.logger.Warn("Embedding cache write failed", zap.Error(err))
	}

	c.logger.Debug("Embedding cache partially hit",
		zap.Int("hits", len(texts)-len(missing)),
		zap.Int("misses", len(missing)),
	)
	return vectors, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "toxicity:embedding:" + c.inner.Name() + ":" + hex.EncodeToString(sum[:])
}
