package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/prompt"
	"go.uber.org/zap"
)

const (
	fieldDetectedLanguage = "DETECTED_LANGUAGE"
	fieldIsEnglish        = "IS_ENGLISH"
	fieldTranslated       = "TRANSLATED"
)

// Translator detects the input language and produces an English rendering
// before the other stages run.
type Translator struct {
	invoker       Completer
	promptBuilder *prompt.PromptBuilder
	logger        *zap.Logger
	preset        ModelPreset
	model         string
}

func NewTranslator(invoker Completer, builder *prompt.PromptBuilder, logger *zap.Logger) *Translator {
	return &Translator{
		invoker:       invoker,
		promptBuilder: builder,
		logger:        logger,
		preset:        PresetPrecise,
	}
}

// WithModel pins the stage to a model instead of the provider default.
func (t *Translator) WithModel(model string) *Translator {
	t.model = model
	return t
}

func (t *Translator) Translate(ctx context.Context, text string) (domain.Parsed[domain.TranslationResult], *GenerateMetadata, error) {
	data := prompt.TranslatorData{Text: sanitizeInput(text)}
	promptText, err := t.promptBuilder.Render(prompt.TemplateTranslator, data)
	if err != nil {
		t.logger.Error("Failed to render translator template, using fallback", zap.Error(err))
		promptText = prompt.FallbackTranslator(data)
	}

	raw, metadata, err := t.invoker.Complete(ctx, promptText, t.preset, modelOptions(t.model))
	if err != nil {
		t.logger.Error("Translation failed", zap.Error(err))
		return domain.Parsed[domain.TranslationResult]{}, nil, fmt.Errorf("translate: %w", err)
	}

	parsed := ParseTranslation(raw, text)
	t.logger.Debug("Language detected",
		zap.String("language", parsed.Value.DetectedLanguage),
		zap.Bool("is_english", parsed.Value.IsEnglish),
		zap.String("source", string(parsed.Source)),
	)
	return parsed, metadata, nil
}

// ParseTranslation falls back to "English" with the original text untouched.
func ParseTranslation(raw, original string) domain.Parsed[domain.TranslationResult] {
	fields := scanFields(StripReasoning(raw), []string{fieldDetectedLanguage, fieldIsEnglish, fieldTranslated}, fieldTranslated)

	result := domain.TranslationResult{
		DetectedLanguage: "English",
		IsEnglish:        true,
		Translated:       original,
	}
	if len(fields) == 0 {
		return domain.Default(result)
	}

	complete := true
	if lang := unquote(fields[fieldDetectedLanguage]); lang != "" {
		result.DetectedLanguage = lang
	} else {
		complete = false
	}

	switch strings.ToUpper(strings.Trim(fields[fieldIsEnglish], " .*[]")) {
	case "YES", "TRUE", "Y":
		result.IsEnglish = true
	case "NO", "FALSE", "N":
		result.IsEnglish = false
	default:
		result.IsEnglish = strings.EqualFold(result.DetectedLanguage, "english")
		complete = false
	}

	if !result.IsEnglish {
		if translated := unquote(fields[fieldTranslated]); translated != "" {
			result.Translated = translated
		} else {
			complete = false
		}
	}

	if complete {
		return domain.Structured(result)
	}
	return domain.Loose(result)
}
