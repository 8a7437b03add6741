package pipeline

import (
	"context"
	"fmt"

	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/service/ai"
	"github.com/kapu/toxicity-agent-go/internal/util"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"go.uber.org/zap"
)

// Stage names recorded in AnalysisResult.Stages.
const (
	StageTranslation    = "translation"
	StageSarcasm        = "sarcasm"
	StageClassification = "classification"
	StageExplanation    = "explanation"
)

type Retriever interface {
	Retrieve(ctx context.Context, text string, k int) ([]domain.LabeledExample, error)
}

type Translator interface {
	Translate(ctx context.Context, text string) (domain.Parsed[domain.TranslationResult], *ai.GenerateMetadata, error)
}

type SarcasmDetector interface {
	Detect(ctx context.Context, text string, examples []domain.LabeledExample) (domain.Parsed[domain.SarcasmResult], *ai.GenerateMetadata, error)
}

type Classifier interface {
	Classify(ctx context.Context, text string, sarcasm domain.SarcasmResult, examples []domain.LabeledExample) (domain.Parsed[domain.Classification], *ai.GenerateMetadata, error)
}

type Responder interface {
	Respond(ctx context.Context, text string, classification domain.Classification, sarcasm domain.SarcasmResult) (domain.Parsed[domain.Response], *ai.GenerateMetadata, error)
}

// ReleaseHook runs after every Analyze call, successful or not. Local model
// servers use it to free memory between requests.
type ReleaseHook func(ctx context.Context)

// Stages groups the stage implementations. Retriever, Translator and Sarcasm
// may be nil when the matching option is off.
type Stages struct {
	Retriever  Retriever
	Translator Translator
	Sarcasm    SarcasmDetector
	Classifier Classifier
	Responder  Responder
}

// Pipeline runs one text through the moderation stages. It keeps no state
// between calls and is safe for concurrent use.
type Pipeline struct {
	stages  Stages
	opts    Options
	release ReleaseHook
	logger  *zap.Logger
}

func New(stages Stages, opts Options, logger *zap.Logger) (*Pipeline, error) {
	opts = opts.normalized()

	switch {
	case stages.Classifier == nil:
		return nil, errors.NewConfigError("classification stage is required", "pipeline.classifier", nil)
	case stages.Responder == nil:
		return nil, errors.NewConfigError("explanation stage is required", "pipeline.responder", nil)
	case opts.EnableRetrieval && stages.Retriever == nil:
		return nil, errors.NewConfigError("retrieval enabled without an example store", "pipeline.enable_retrieval", nil)
	case opts.EnableSarcasm && stages.Sarcasm == nil:
		return nil, errors.NewConfigError("sarcasm enabled without a detector", "pipeline.enable_sarcasm", nil)
	case opts.EnableTranslation && stages.Translator == nil:
		return nil, errors.NewConfigError("translation enabled without a translator", "pipeline.enable_translation", nil)
	}

	return &Pipeline{
		stages: stages,
		opts:   opts,
		logger: logger,
	}, nil
}

// WithReleaseHook sets the hook called after each analysis.
func (p *Pipeline) WithReleaseHook(hook ReleaseHook) *Pipeline {
	p.release = hook
	return p
}

func (p *Pipeline) Options() Options {
	return p.opts
}

// Analyze classifies one text. Only backend and configuration failures are
// returned; malformed model output always resolves to a result.
func (p *Pipeline) Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	if p.release != nil {
		defer p.release(ctx)
	}

	result := &domain.AnalysisResult{
		Input:             text,
		RetrievedExamples: []domain.LabeledExample{},
	}
	working := text

	if p.opts.EnableTranslation {
		translation, meta, err := p.stages.Translator.Translate(ctx, text)
		if err != nil {
			return nil, err
		}
		result.Translation = &translation.Value
		result.Stages = append(result.Stages, stageMetadata(StageTranslation, meta, translation.Source))
		if !translation.Value.IsEnglish {
			working = translation.Value.Translated
		}
	}

	if p.opts.EnableRetrieval {
		examples, err := p.stages.Retriever.Retrieve(ctx, working, p.opts.RetrievalK)
		if err != nil {
			return nil, fmt.Errorf("retrieve examples: %w", err)
		}
		result.RetrievedExamples = examples
	}

	sarcasm := domain.NoSarcasm(working)
	if p.opts.EnableSarcasm {
		detected, meta, err := p.stages.Sarcasm.Detect(ctx, working, result.RetrievedExamples)
		if err != nil {
			return nil, err
		}
		sarcasm = detected.Value
		result.Stages = append(result.Stages, stageMetadata(StageSarcasm, meta, detected.Source))
	}
	result.Sarcasm = sarcasm

	classification, meta, err := p.stages.Classifier.Classify(ctx, working, sarcasm, result.RetrievedExamples)
	if err != nil {
		return nil, err
	}
	result.Classification = classification.Value.Label
	result.SubLabel = classification.Value.SubLabel
	result.Stages = append(result.Stages, stageMetadata(StageClassification, meta, classification.Source))

	response, meta, err := p.stages.Responder.Respond(ctx, working, classification.Value, sarcasm)
	if err != nil {
		return nil, err
	}
	result.Explanation = response.Value.Explanation
	result.AuthorMessage = response.Value.AuthorMessage
	result.Stages = append(result.Stages, stageMetadata(StageExplanation, meta, response.Source))

	p.logger.Info("Content analyzed",
		zap.String("input", util.TruncateString(text, constants.StringLimits.LogPreview)),
		zap.String("classification", result.Classification.String()),
		zap.String("sub_label", result.SubLabel),
		zap.String("sarcasm", sarcasm.Verdict.String()),
		zap.Int("examples", len(result.RetrievedExamples)),
	)

	return result, nil
}

func stageMetadata(stage string, meta *ai.GenerateMetadata, source domain.ParseSource) domain.StageMetadata {
	md := domain.StageMetadata{Stage: stage, ParseSource: source}
	if meta != nil {
		md.Provider = meta.Provider
		md.Model = meta.Model
		md.UsedFallback = meta.UsedFallback
	}
	return md
}
