package dataset

import (
	"context"
	"strings"

	"github.com/kapu/toxicity-agent-go/internal/domain"
	"go.uber.org/zap"
)

// Column names of the labeled example dataset.
const (
	ColumnClassification = "classification"
	ColumnContent        = "content"
	ColumnExplanation    = "explanation"
	ColumnAuthorMessage  = "message_to_author"
)

var requiredColumns = []string{ColumnClassification, ColumnContent, ColumnExplanation}

// Source loads the labeled examples the retrieval index is built from.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]domain.LabeledExample, error)
}

// rowBuilder turns raw column values into examples and counts what it skips.
type rowBuilder struct {
	source  string
	logger  *zap.Logger
	skipped int
}

func (b *rowBuilder) build(row int, classification, content, explanation, authorMessage string) (domain.LabeledExample, bool) {
	label, ok := domain.ParseLabel(classification)
	if !ok {
		b.skipped++
		b.logger.Warn("Skipping example with unknown classification",
			zap.String("source", b.source),
			zap.Int("row", row),
			zap.String("classification", classification),
		)
		return domain.LabeledExample{}, false
	}

	cleaned := CleanContent(content)
	if cleaned == "" {
		b.skipped++
		b.logger.Warn("Skipping example with empty content", zap.String("source", b.source), zap.Int("row", row))
		return domain.LabeledExample{}, false
	}

	message := strings.TrimSpace(authorMessage)
	if message == "" {
		message = domain.AuthorMessageNone
	}

	return domain.LabeledExample{
		Content:        cleaned,
		Classification: label,
		Explanation:    strings.TrimSpace(explanation),
		AuthorMessage:  message,
	}, true
}

func (b *rowBuilder) logSummary(examples []domain.LabeledExample) {
	counts := make(map[domain.Label]int, len(domain.Labels))
	for _, ex := range examples {
		counts[ex.Classification]++
	}
	b.logger.Info("Labeled examples loaded",
		zap.String("source", b.source),
		zap.Int("examples", len(examples)),
		zap.Int("skipped", b.skipped),
		zap.Int("toxic", counts[domain.LabelToxic]),
		zap.Int("neutral", counts[domain.LabelNeutral]),
		zap.Int("good", counts[domain.LabelGood]),
	)
}
