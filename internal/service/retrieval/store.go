package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"go.uber.org/zap"
)

// ErrIndexNotBuilt is returned by Retrieve before Build succeeded.
var ErrIndexNotBuilt = errors.NewConfigError("example index not built", "retrieval.index", nil)

// Store is an in-memory nearest-neighbour index over labeled examples. It is
// built once and read-only afterwards, so Retrieve is safe for concurrent use.
type Store struct {
	embedder  Embedder
	logger    *zap.Logger
	batchSize int

	mu       sync.RWMutex
	built    bool
	examples []domain.LabeledExample
	vectors  [][]float32
}

func NewStore(embedder Embedder, logger *zap.Logger) *Store {
	return &Store{
		embedder:  embedder,
		logger:    logger,
		batchSize: constants.RetrievalConfig.EmbedBatchSize,
	}
}

// Build embeds every example and replaces the index. An empty example set is
// a valid, empty index.
func (s *Store) Build(ctx context.Context, examples []domain.LabeledExample) error {
	vectors := make([][]float32, 0, len(examples))
	for start := 0; start < len(examples); start += s.batchSize {
		end := min(start+s.batchSize, len(examples))

		texts := make([]string, 0, end-start)
		for _, ex := range examples[start:end] {
			texts = append(texts, ex.Content)
		}

		batch, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return errors.NewServiceError("failed to embed examples", s.embedder.Name(), "embed", err)
		}
		if len(batch) != len(texts) {
			return errors.NewServiceError(
				fmt.Sprintf("embedder returned %d vectors for %d examples", len(batch), len(texts)),
				s.embedder.Name(), "embed", nil)
		}
		for _, vec := range batch {
			vectors = append(vectors, normalize(vec))
		}
	}

	copied := make([]domain.LabeledExample, len(examples))
	copy(copied, examples)

	s.mu.Lock()
	s.examples = copied
	s.vectors = vectors
	s.built = true
	s.mu.Unlock()

	s.logger.Info("Example index built",
		zap.Int("examples", len(copied)),
		zap.String("embedder", s.embedder.Name()),
	)
	return nil
}

// Len returns the number of indexed examples.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.examples)
}

type scored struct {
	index int
	score float64
}

// Retrieve returns up to k examples nearest to text by cosine similarity.
// Equal scores keep load order, so the result is deterministic.
func (s *Store) Retrieve(ctx context.Context, text string, k int) ([]domain.LabeledExample, error) {
	if s == nil {
		return nil, ErrIndexNotBuilt
	}

	s.mu.RLock()
	built, examples, vectors := s.built, s.examples, s.vectors
	s.mu.RUnlock()

	if !built {
		return nil, ErrIndexNotBuilt
	}
	if k <= 0 || len(examples) == 0 {
		return []domain.LabeledExample{}, nil
	}

	query, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, errors.NewServiceError("failed to embed query", s.embedder.Name(), "embed", err)
	}
	if len(query) != 1 {
		return nil, errors.NewServiceError("embedder returned no query vector", s.embedder.Name(), "embed", nil)
	}
	q := normalize(query[0])

	results := make([]scored, len(vectors))
	for i, vec := range vectors {
		if len(vec) != len(q) {
			return nil, errors.NewConfigError(
				fmt.Sprintf("embedding dimension mismatch: index %d, query %d", len(vec), len(q)),
				"embedding.model", nil)
		}
		results[i] = scored{index: i, score: dot(q, vec)}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].score > results[b].score
	})

	if k > len(results) {
		k = len(results)
	}
	out := make([]domain.LabeledExample, k)
	for i := 0; i < k; i++ {
		out[i] = examples[results[i].index]
	}
	return out, nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	norm := math.Sqrt(sum)
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
