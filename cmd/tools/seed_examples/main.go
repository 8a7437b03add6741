package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kapu/toxicity-agent-go/internal/app"
	"github.com/kapu/toxicity-agent-go/internal/config"
	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/service/dataset"
	"github.com/kapu/toxicity-agent-go/internal/util"
	"go.uber.org/zap"
)

// CLI flags
var (
	csvPath   = flag.String("csv", "data/toxicity_examples.csv", "labeled examples CSV")
	table     = flag.String("table", "", "target table (default DATASET_TABLE)")
	minLength = flag.Int("min-length", 3, "drop examples shorter than this many characters")
	dryRun    = flag.Bool("dry-run", false, "parse and report without touching the database")
	verbose   = flag.Bool("verbose", false, "debug logging")
)

func main() {
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := util.NewLogger(level, "console", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Error("Seeding failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg := config.FromEnvFile()
	if *table != "" {
		cfg.Dataset.Table = *table
	}

	examples, err := dataset.NewCSVSource(*csvPath, logger).Load(ctx)
	if err != nil {
		return err
	}

	prepared := prepareExamples(examples, *minLength)
	logger.Info("Examples prepared",
		zap.Int("loaded", len(examples)),
		zap.Int("kept", len(prepared)),
		zap.Int("dropped", len(examples)-len(prepared)),
	)

	if *dryRun {
		summary := make(map[domain.Label]int)
		for _, ex := range prepared {
			summary[ex.Classification]++
		}
		for _, label := range domain.Labels {
			fmt.Printf("%-8s %d\n", label, summary[label])
		}
		return nil
	}

	postgresSvc, err := app.OpenPostgres(cfg, logger)
	if err != nil {
		return err
	}
	defer postgresSvc.Close()

	source, err := dataset.NewPostgresSource(postgresSvc, cfg.Dataset.Table, logger)
	if err != nil {
		return err
	}
	if err := source.EnsureSchema(ctx); err != nil {
		return err
	}

	inserted, err := source.Insert(ctx, prepared)
	if err != nil {
		return err
	}

	logger.Info("Seeding complete",
		zap.String("table", cfg.Dataset.Table),
		zap.Int("inserted", inserted),
		zap.Int("already_present", len(prepared)-inserted),
	)
	return nil
}

// prepareExamples drops short rows and duplicate content, keeping the first
// occurrence. Comparison ignores case and surrounding whitespace.
func prepareExamples(examples []domain.LabeledExample, minLength int) []domain.LabeledExample {
	seen := make(map[string]struct{}, len(examples))
	result := make([]domain.LabeledExample, 0, len(examples))

	for _, ex := range examples {
		content := strings.TrimSpace(ex.Content)
		if utf8.RuneCountInString(content) < minLength {
			continue
		}
		key := strings.ToLower(content)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ex.Content = content
		result = append(result, ex)
	}
	return result
}
