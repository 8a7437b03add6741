package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/prompt"
	"github.com/kapu/toxicity-agent-go/internal/util"
	"go.uber.org/zap"
)

var (
	// "<LABEL> - <SUB LABEL>" with markdown or a "Classification:" prefix around it.
	// The sub-label is whole upper-case words; later words need two letters so
	// prose such as "I think" or "A plain fact" after it is not absorbed.
	structuredLabelRegex = regexp.MustCompile(
		`^[^A-Za-z]*(?:(?i:classification|label|answer|result)[\s*_]*:[\s*_]*)?` +
			`((?i:TOXIC|NEUTRAL|GOOD))[\s*_"'\]\)]*[-–—][\s*_"'\[\(]*` +
			`([A-Z][A-Z0-9&/']*\b(?:[ _][A-Z][A-Z0-9&/']+\b)*)`)
	upperLabelRegex = regexp.MustCompile(`\b(TOXIC|NEUTRAL|GOOD)\b`)
	anyLabelRegex   = regexp.MustCompile(`(?i)\b(toxic|neutral|good)\b`)
)

// Classifier assigns TOXIC / NEUTRAL / GOOD with a reason sub-label.
type Classifier struct {
	invoker       Completer
	promptBuilder *prompt.PromptBuilder
	logger        *zap.Logger

	preset      ModelPreset
	model       string
	maxExamples int
}

func NewClassifier(invoker Completer, builder *prompt.PromptBuilder, logger *zap.Logger) *Classifier {
	return &Classifier{
		invoker:       invoker,
		promptBuilder: builder,
		logger:        logger,
		preset:        PresetClassification,
	}
}

// WithModel pins the stage to a model instead of the provider default.
func (c *Classifier) WithModel(model string) *Classifier {
	c.model = model
	return c
}

// Classify sends the literal text, or the true meaning when the text was
// confirmed sarcastic. Ambiguous sarcasm is classified as written with a note.
func (c *Classifier) Classify(ctx context.Context, text string, sarcasm domain.SarcasmResult, examples []domain.LabeledExample) (domain.Parsed[domain.Classification], *GenerateMetadata, error) {
	target := sarcasm.TextToClassify(text)

	data := prompt.ClassifierData{
		Text:         sanitizeInput(target),
		OriginalText: sanitizeInput(text),
		IsSarcastic:  sarcasm.IsSarcastic(),
		IsAmbiguous:  sarcasm.IsAmbiguous(),
		Examples:     prompt.ExampleLines(examples, c.maxExamples),
	}
	promptText, err := c.promptBuilder.Render(prompt.TemplateClassifier, data)
	if err != nil {
		c.logger.Error("Failed to render classifier template, using fallback", zap.Error(err))
		promptText = prompt.FallbackClassifier(data)
	}

	raw, metadata, err := c.invoker.Complete(ctx, promptText, c.preset, modelOptions(c.model))
	if err != nil {
		c.logger.Error("Classification failed", zap.Error(err))
		return domain.Parsed[domain.Classification]{}, nil, fmt.Errorf("classify: %w", err)
	}

	parsed := ParseClassification(raw)
	logFields := []zap.Field{
		zap.String("label", parsed.Value.Label.String()),
		zap.String("sub_label", parsed.Value.SubLabel),
		zap.String("source", string(parsed.Source)),
		zap.Bool("used_true_meaning", target != text),
	}
	if parsed.IsFallback() {
		c.logger.Warn("Classifier response did not follow the format",
			append(logFields, zap.String("response_preview", util.TruncateString(raw, constants.StringLimits.LogPreview)))...)
	} else {
		c.logger.Debug("Text classified", logFields...)
	}

	return parsed, metadata, nil
}

// ParseClassification never fails. The first "LABEL - SUB LABEL" line wins;
// otherwise the first label word anywhere gives LABEL/UNKNOWN; otherwise
// NEUTRAL/UNKNOWN.
func ParseClassification(raw string) domain.Parsed[domain.Classification] {
	text := StripReasoning(raw)

	for _, line := range strings.Split(text, "\n") {
		m := structuredLabelRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		label, ok := domain.ParseLabel(m[1])
		if !ok {
			continue
		}
		return domain.Structured(domain.Classification{
			Label:    label,
			SubLabel: normalizeSubLabel(m[2]),
		})
	}

	// 대문자 토큰을 우선하고, 없으면 대소문자 무시
	for _, re := range []*regexp.Regexp{upperLabelRegex, anyLabelRegex} {
		if m := re.FindStringSubmatch(text); m != nil {
			label, _ := domain.ParseLabel(m[1])
			return domain.Loose(domain.Classification{Label: label, SubLabel: domain.SubLabelUnknown})
		}
	}

	return domain.Default(domain.Classification{
		Label:    domain.LabelNeutral,
		SubLabel: domain.SubLabelUnknown,
	})
}

func normalizeSubLabel(raw string) string {
	sub := strings.Join(strings.Fields(strings.ReplaceAll(raw, "_", " ")), " ")
	sub = strings.TrimRight(sub, "&/' ")
	if sub == "" {
		return domain.SubLabelUnknown
	}
	return sub
}
