package pipeline

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var batchInputs = []string{
	"Oh great, another flat tire.",
	"I respectfully disagree with your point.",
	"FUCK OFF YOU PIECE OF SHIT",
	"This is amazing work! Thank you!",
}

func TestBatchAnalyzePreservesOrder(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		opts := DefaultOptions()
		opts.BatchConcurrency = concurrency
		p := newTestPipeline(t, newScriptedBackend(), defaultRetriever(), opts)

		results, err := p.BatchAnalyze(context.Background(), batchInputs)
		require.NoError(t, err)
		require.Len(t, results, len(batchInputs))

		for i, r := range results {
			assert.Equal(t, batchInputs[i], r.Input)
		}
		assert.Equal(t, domain.LabelNeutral, results[0].Classification)
		assert.Equal(t, domain.LabelToxic, results[2].Classification)
		assert.Equal(t, domain.LabelGood, results[3].Classification)

		summary := domain.SummarizeBatch(results)
		assert.Equal(t, 4, summary.Total)
		assert.Equal(t, 2, summary.Counts[domain.LabelNeutral])
		assert.Equal(t, 1, summary.Sarcasm)
	}
}

func TestBatchAnalyzeEmpty(t *testing.T) {
	p := newTestPipeline(t, newScriptedBackend(), defaultRetriever(), DefaultOptions())

	results, err := p.BatchAnalyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBatchAnalyzeStopsOnFirstError(t *testing.T) {
	backend := newScriptedBackend()
	backend.failOn = "FUCK OFF"
	p := newTestPipeline(t, backend, defaultRetriever(), DefaultOptions())

	results, err := p.BatchAnalyze(context.Background(), batchInputs)
	assert.Nil(t, results)

	var svcErr *errors.ServiceError
	require.True(t, stderrors.As(err, &svcErr))

	// sequential: the item after the failure never reaches the backend
	assert.NotContains(t, backend.classified, "This is amazing work! Thank you!")
}
