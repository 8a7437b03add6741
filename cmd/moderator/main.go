package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/toxicity-agent-go/internal/app"
	"github.com/kapu/toxicity-agent-go/internal/config"
	"github.com/kapu/toxicity-agent-go/internal/util"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const buildTimeout = 5 * time.Minute // 예제 임베딩 포함

// Exit codes
const (
	exitOK         = 0
	exitFailure    = 1
	exitConfig     = 2
	exitBackend    = 3
	exitValidation = 4
)

type rootOptions struct {
	format      string
	noRetrieval bool
	noSarcasm   bool
	translate   bool
	k           int
	concurrency int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(exitCode(err))
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "moderator",
		Short:         "Classify text as TOXIC, NEUTRAL or GOOD with sarcasm-aware LLM stages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.format, "format", "json", "output format: json or text")
	flags.BoolVar(&opts.noRetrieval, "no-retrieval", false, "skip similar-example retrieval")
	flags.BoolVar(&opts.noSarcasm, "no-sarcasm", false, "skip the sarcasm stage")
	flags.BoolVar(&opts.translate, "translate", false, "translate non-English input first")
	flags.IntVar(&opts.k, "k", -1, "number of examples to retrieve (default from config)")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "batch concurrency (default from config)")

	root.AddCommand(
		newAnalyzeCommand(opts),
		newBatchCommand(opts),
		newListenCommand(opts),
	)
	return root
}

// setup loads config, applies flag overrides and builds the container.
func setup(ctx context.Context, opts *rootOptions) (*app.Container, *zap.Logger, error) {
	cfg := config.FromEnvFile()
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	buildCtx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()

	container, err := app.Build(buildCtx, cfg, logger)
	if err != nil {
		logger.Error("Failed to assemble moderation pipeline", zap.Error(err))
		_ = logger.Sync()
		return nil, nil, err
	}
	return container, logger, nil
}

func (o *rootOptions) apply(cfg *config.Config) {
	if o.noRetrieval {
		cfg.Pipeline.EnableRetrieval = false
	}
	if o.noSarcasm {
		cfg.Pipeline.EnableSarcasm = false
	}
	if o.translate {
		cfg.Pipeline.EnableTranslation = true
	}
	if o.k >= 0 {
		cfg.Pipeline.RetrievalK = o.k
	}
	if o.concurrency > 0 {
		cfg.Pipeline.BatchConcurrency = o.concurrency
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var (
		cfgErr *errors.ConfigError
		dsErr  *errors.DatasetError
		svcErr *errors.ServiceError
		valErr *errors.ValidationError
	)
	switch {
	case stderrors.As(err, &cfgErr), stderrors.As(err, &dsErr):
		return exitConfig
	case stderrors.As(err, &svcErr):
		return exitBackend
	case stderrors.As(err, &valErr):
		return exitValidation
	default:
		return exitFailure
	}
}
