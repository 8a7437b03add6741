package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeBatch(t *testing.T) {
	results := []*AnalysisResult{
		{Classification: LabelToxic},
		{Classification: LabelGood},
		nil,
		{Classification: LabelToxic, Sarcasm: SarcasmResult{Verdict: SarcasmSarcastic}},
	}

	summary := SummarizeBatch(results)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Counts[LabelToxic])
	assert.Equal(t, 0, summary.Counts[LabelNeutral])
	assert.Equal(t, 1, summary.Counts[LabelGood])
	assert.Equal(t, 1, summary.Sarcasm)
}

func TestParsedSources(t *testing.T) {
	assert.False(t, Structured(1).IsFallback())
	assert.True(t, Loose(1).IsFallback())
	assert.Equal(t, ParseDefault, Default("x").Source)
}

func TestLabeledExampleAuthorMessage(t *testing.T) {
	assert.False(t, LabeledExample{AuthorMessage: AuthorMessageNone}.HasAuthorMessage())
	assert.False(t, LabeledExample{}.HasAuthorMessage())
	assert.True(t, LabeledExample{AuthorMessage: "Please rephrase."}.HasAuthorMessage())
}
