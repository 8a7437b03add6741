package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/service/database"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"go.uber.org/zap"
)

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresSource reads labeled examples from a table.
type PostgresSource struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

func NewPostgresSource(postgres *database.PostgresService, table string, logger *zap.Logger) (*PostgresSource, error) {
	if table == "" {
		table = "toxicity_examples"
	}
	if !tableNameRegex.MatchString(table) {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid dataset table name %q", table), "dataset.table", nil)
	}
	return &PostgresSource{
		db:     postgres.GetDB(),
		table:  table,
		logger: logger,
	}, nil
}

func (s *PostgresSource) Name() string {
	return "postgres:" + s.table
}

func (s *PostgresSource) Load(ctx context.Context) ([]domain.LabeledExample, error) {
	query := fmt.Sprintf(`
		SELECT classification, content, explanation, COALESCE(message_to_author, '')
		FROM %s
		ORDER BY id
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewDatasetError("failed to query examples", s.Name(), "", err)
	}
	defer rows.Close()

	builder := &rowBuilder{source: s.Name(), logger: s.logger}
	var examples []domain.LabeledExample
	for row := 1; rows.Next(); row++ {
		var (
			classification string
			content        string
			explanation    sql.NullString
			message        string
		)
		if err := rows.Scan(&classification, &content, &explanation, &message); err != nil {
			return nil, errors.NewDatasetError("failed to scan example", s.Name(), "", err)
		}
		if example, ok := builder.build(row, classification, content, explanation.String, message); ok {
			examples = append(examples, example)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatasetError("failed to iterate examples", s.Name(), "", err)
	}

	builder.logSummary(examples)
	return examples, nil
}

// EnsureSchema creates the examples table when it does not exist.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id                SERIAL PRIMARY KEY,
			classification    TEXT NOT NULL CHECK (classification IN ('TOXIC', 'NEUTRAL', 'GOOD')),
			content           TEXT NOT NULL UNIQUE,
			explanation       TEXT,
			message_to_author TEXT,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.NewDatasetError("failed to create examples table", s.Name(), "", err)
	}
	return nil
}

// Insert stores examples in one transaction, skipping content that already
// exists. It returns the number of rows inserted.
func (s *PostgresSource) Insert(ctx context.Context, examples []domain.LabeledExample) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewDatasetError("failed to begin transaction", s.Name(), "", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (classification, content, explanation, message_to_author)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (content) DO NOTHING
	`, s.table))
	if err != nil {
		return 0, errors.NewDatasetError("failed to prepare insert", s.Name(), "", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, ex := range examples {
		res, err := stmt.ExecContext(ctx, ex.Classification.String(), ex.Content, ex.Explanation, ex.AuthorMessage)
		if err != nil {
			return 0, errors.NewDatasetError("failed to insert example", s.Name(), "", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewDatasetError("failed to commit examples", s.Name(), "", err)
	}

	s.logger.Info("Examples inserted", zap.String("table", s.table), zap.Int("inserted", inserted), zap.Int("total", len(examples)))
	return inserted, nil
}
