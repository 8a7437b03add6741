package pipeline

import (
	"context"

	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// BatchAnalyze analyzes texts with at most Options.BatchConcurrency in flight.
// Results keep input order. The first error cancels the remaining items and
// is returned without partial results.
func (p *Pipeline) BatchAnalyze(ctx context.Context, texts []string) ([]*domain.AnalysisResult, error) {
	results := make([]*domain.AnalysisResult, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	workers := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(p.opts.BatchConcurrency)

	for idx, text := range texts {
		workers.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := p.Analyze(ctx, text)
			if err != nil {
				p.logger.Error("Batch item failed", zap.Int("index", idx), zap.Error(err))
				return err
			}
			results[idx] = result
			return nil
		})
	}

	if err := workers.Wait(); err != nil {
		return nil, err
	}

	summary := domain.SummarizeBatch(results)
	p.logger.Info("Batch analyzed",
		zap.Int("total", summary.Total),
		zap.Int("toxic", summary.Counts[domain.LabelToxic]),
		zap.Int("neutral", summary.Counts[domain.LabelNeutral]),
		zap.Int("good", summary.Counts[domain.LabelGood]),
		zap.Int("sarcastic", summary.Sarcasm),
	)
	return results, nil
}
