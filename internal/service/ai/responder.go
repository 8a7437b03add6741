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
	explanationMarkerRegex   = regexp.MustCompile(`(?i)[*_#]*\s*explanation\s*[*_]*\s*:[*_]*`)
	authorMessageMarkerRegex = regexp.MustCompile(`(?i)[*_#]*\s*message\s+to\s+(?:the\s+)?author\s*[*_]*\s*:[*_]*`)
)

// Responder writes the human-readable explanation and, for TOXIC text, a
// message to the author.
type Responder struct {
	invoker       Completer
	promptBuilder *prompt.PromptBuilder
	logger        *zap.Logger

	preset ModelPreset
	model  string
}

func NewResponder(invoker Completer, builder *prompt.PromptBuilder, logger *zap.Logger) *Responder {
	return &Responder{
		invoker:       invoker,
		promptBuilder: builder,
		logger:        logger,
		preset:        PresetExplanation,
	}
}

// WithModel pins the stage to a model instead of the provider default.
func (r *Responder) WithModel(model string) *Responder {
	r.model = model
	return r
}

func (r *Responder) Respond(ctx context.Context, text string, classification domain.Classification, sarcasm domain.SarcasmResult) (domain.Parsed[domain.Response], *GenerateMetadata, error) {
	data := prompt.ResponderData{
		Text:        sanitizeInput(text),
		Label:       classification.Label.String(),
		SubLabel:    classification.SubLabel,
		IsToxic:     classification.Label == domain.LabelToxic,
		IsSarcastic: sarcasm.IsSarcastic(),
		IsAmbiguous: sarcasm.IsAmbiguous(),
		TrueMeaning: sanitizeInput(sarcasm.TrueMeaning),
	}
	promptText, err := r.promptBuilder.Render(prompt.TemplateResponder, data)
	if err != nil {
		r.logger.Error("Failed to render responder template, using fallback", zap.Error(err))
		promptText = prompt.FallbackResponder(data)
	}

	raw, metadata, err := r.invoker.Complete(ctx, promptText, r.preset, modelOptions(r.model))
	if err != nil {
		r.logger.Error("Explanation generation failed", zap.Error(err))
		return domain.Parsed[domain.Response]{}, nil, fmt.Errorf("explain: %w", err)
	}

	parsed := ParseResponse(raw, classification)
	if parsed.IsFallback() {
		r.logger.Warn("Responder response did not follow the format",
			zap.String("source", string(parsed.Source)),
			zap.String("response_preview", util.TruncateString(raw, constants.StringLimits.LogPreview)),
		)
	}

	return parsed, metadata, nil
}

// ParseResponse extracts the explanation and author message. Non-TOXIC labels
// always get "N/A" as the author message; TOXIC always gets a real one.
func ParseResponse(raw string, classification domain.Classification) domain.Parsed[domain.Response] {
	text := StripReasoning(raw)

	explanation := ""
	authorMessage := ""
	source := domain.ParseStructured

	explanationLoc := explanationMarkerRegex.FindStringIndex(text)
	authorLoc := authorMessageMarkerRegex.FindStringIndex(text)

	// 두 마커의 순서는 모델마다 다르다
	if authorLoc != nil {
		authorMessage = cleanSection(sectionAfter(text, authorLoc, explanationLoc))
	}

	if explanationLoc != nil {
		explanation = cleanSection(sectionAfter(text, explanationLoc, authorLoc))
	} else {
		body := text
		if authorLoc != nil {
			body = text[:authorLoc[0]]
		}
		explanation = cleanSection(body)
		source = domain.ParseLoose
	}

	if explanation == "" {
		explanation = fmt.Sprintf("This content was classified as %s.", classification.Label)
		source = domain.ParseDefault
	}

	if classification.Label != domain.LabelToxic {
		authorMessage = domain.AuthorMessageNone
	} else if authorMessage == "" || strings.EqualFold(authorMessage, domain.AuthorMessageNone) {
		authorMessage = defaultAuthorMessage(classification)
		if source == domain.ParseStructured {
			source = domain.ParseLoose
		}
	}

	return domain.Parsed[domain.Response]{
		Value: domain.Response{
			Explanation:   explanation,
			AuthorMessage: authorMessage,
		},
		Source: source,
	}
}

func defaultAuthorMessage(classification domain.Classification) string {
	reason := "harmful"
	if sub := classification.SubLabel; sub != "" && sub != domain.SubLabelUnknown {
		reason = strings.ToLower(sub)
	}
	return fmt.Sprintf("Your comment was flagged as %s. Please rephrase it respectfully so the discussion stays constructive.", reason)
}

// sectionAfter returns the text following marker, up to other when other
// starts later in the text.
func sectionAfter(text string, marker, other []int) string {
	end := len(text)
	if other != nil && other[0] >= marker[1] {
		end = other[0]
	}
	return text[marker[1]:end]
}

func cleanSection(s string) string {
	return strings.Trim(strings.Join(strings.Fields(s), " "), "*_ ")
}
