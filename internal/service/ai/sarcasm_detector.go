package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/prompt"
	"github.com/kapu/toxicity-agent-go/internal/util"
	"go.uber.org/zap"
)

const (
	fieldIsSarcastic = "IS_SARCASTIC"
	fieldToxicity    = "TOXICITY"
	fieldTrueMeaning = "TRUE_MEANING"
)

// SarcasmDetector decides whether a text is sarcastic and what it really means.
type SarcasmDetector struct {
	invoker       Completer
	promptBuilder *prompt.PromptBuilder
	logger        *zap.Logger

	preset      ModelPreset
	model       string
	maxExamples int
	shortTokens int
}

func NewSarcasmDetector(invoker Completer, builder *prompt.PromptBuilder, logger *zap.Logger) *SarcasmDetector {
	return &SarcasmDetector{
		invoker:       invoker,
		promptBuilder: builder,
		logger:        logger,
		preset:        PresetDetection,
		maxExamples:   constants.SarcasmConfig.MaxExamples,
		shortTokens:   constants.SarcasmConfig.ShortTextTokens,
	}
}

// WithModel pins the stage to a model instead of the provider default.
func (d *SarcasmDetector) WithModel(model string) *SarcasmDetector {
	d.model = model
	return d
}

// Detect runs the sarcasm stage. Only backend failures are returned as errors;
// malformed output resolves to a safe default.
func (d *SarcasmDetector) Detect(ctx context.Context, text string, examples []domain.LabeledExample) (domain.Parsed[domain.SarcasmResult], *GenerateMetadata, error) {
	sanitized := sanitizeInput(text)

	data := prompt.SarcasmData{
		Text:            sanitized,
		IsShort:         util.CountTokens(sanitized) <= d.shortTokens,
		ShortTokenLimit: d.shortTokens,
		Examples:        prompt.ExampleLines(examples, d.maxExamples),
	}
	promptText, err := d.promptBuilder.Render(prompt.TemplateSarcasm, data)
	if err != nil {
		d.logger.Error("Failed to render sarcasm template, using fallback", zap.Error(err))
		promptText = prompt.FallbackSarcasm(data)
	}

	raw, metadata, err := d.invoker.Complete(ctx, promptText, d.preset, modelOptions(d.model))
	if err != nil {
		d.logger.Error("Sarcasm detection failed", zap.Error(err))
		return domain.Parsed[domain.SarcasmResult]{}, nil, fmt.Errorf("detect sarcasm: %w", err)
	}

	parsed := ParseSarcasmResponse(raw, text)
	logFields := []zap.Field{
		zap.String("verdict", parsed.Value.Verdict.String()),
		zap.String("toxicity_hint", parsed.Value.ToxicityHint.String()),
		zap.String("source", string(parsed.Source)),
		zap.Bool("short_text", data.IsShort),
	}
	if metadata != nil {
		logFields = append(logFields,
			zap.String("provider", metadata.Provider),
			zap.Bool("used_fallback", metadata.UsedFallback),
		)
	}
	if parsed.IsFallback() {
		d.logger.Warn("Sarcasm response did not follow the format",
			append(logFields, zap.String("response_preview", util.TruncateString(raw, constants.StringLimits.LogPreview)))...)
	} else {
		d.logger.Debug("Sarcasm detected", logFields...)
	}

	return parsed, metadata, nil
}

// ParseSarcasmResponse is total: every input yields a valid result. original is
// the analysed text and becomes the true meaning unless the verdict is sarcastic.
func ParseSarcasmResponse(raw, original string) domain.Parsed[domain.SarcasmResult] {
	fields := scanFields(StripReasoning(raw), []string{fieldIsSarcastic, fieldToxicity, fieldTrueMeaning}, fieldTrueMeaning)

	result := domain.NoSarcasm(original)
	if len(fields) == 0 {
		return domain.Default(result)
	}

	verdict, verdictOK := domain.NormalizeSarcasmVerdict(fields[fieldIsSarcastic])
	result.Verdict = verdict

	toxicityOK := false
	if value, ok := fields[fieldToxicity]; ok {
		if tokens := strings.Fields(value); len(tokens) > 0 {
			result.ToxicityHint, toxicityOK = domain.ParseLabel(tokens[0])
		}
	}

	if verdict == domain.SarcasmSarcastic {
		if meaning := unquote(fields[fieldTrueMeaning]); meaning != "" {
			result.TrueMeaning = meaning
		}
	}

	if verdictOK && toxicityOK {
		return domain.Structured(result)
	}
	return domain.Loose(result)
}
