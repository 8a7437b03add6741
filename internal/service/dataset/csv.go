package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"go.uber.org/zap"
)

// CSVSource reads labeled examples from a CSV file with a header row.
type CSVSource struct {
	path   string
	logger *zap.Logger
}

func NewCSVSource(path string, logger *zap.Logger) *CSVSource {
	return &CSVSource{path: path, logger: logger}
}

func (s *CSVSource) Name() string {
	return "csv:" + s.path
}

func (s *CSVSource) Load(ctx context.Context) ([]domain.LabeledExample, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.NewDatasetError("failed to open dataset", s.path, "", err)
	}
	defer f.Close()

	return ReadCSV(ctx, f, s.path, s.logger)
}

// ReadCSV parses examples from r. A missing required column is fatal; rows
// with an unknown classification are skipped.
func ReadCSV(ctx context.Context, r io.Reader, source string, logger *zap.Logger) ([]domain.LabeledExample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewDatasetError("dataset is empty", source, "", nil)
	}
	if err != nil {
		return nil, errors.NewDatasetError("failed to read dataset header", source, "", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		// BOM이 붙은 첫 컬럼 처리
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.NewDatasetError("missing required column", source, col, nil)
		}
	}
	messageIdx, hasMessage := index[ColumnAuthorMessage]

	builder := &rowBuilder{source: source, logger: logger}
	var examples []domain.LabeledExample
	for row := 2; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewDatasetError("failed to read dataset row", source, "", err)
		}

		field := func(i int) string {
			if i < len(record) {
				return record[i]
			}
			return ""
		}
		message := ""
		if hasMessage {
			message = field(messageIdx)
		}

		example, ok := builder.build(row,
			field(index[ColumnClassification]),
			field(index[ColumnContent]),
			field(index[ColumnExplanation]),
			message,
		)
		if ok {
			examples = append(examples, example)
		}
	}

	builder.logSummary(examples)
	return examples, nil
}
