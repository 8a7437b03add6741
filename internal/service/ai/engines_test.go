package ai

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/prompt"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingCompleter struct {
	reply   string
	err     error
	prompts []string
	presets []ModelPreset
}

func (r *recordingCompleter) Complete(_ context.Context, promptText string, preset ModelPreset, _ *GenerateOptions) (string, *GenerateMetadata, error) {
	r.prompts = append(r.prompts, promptText)
	r.presets = append(r.presets, preset)
	if r.err != nil {
		return "", nil, r.err
	}
	return r.reply, &GenerateMetadata{Provider: "fake", Model: "fake-1"}, nil
}

func (r *recordingCompleter) lastPrompt() string {
	if len(r.prompts) == 0 {
		return ""
	}
	return r.prompts[len(r.prompts)-1]
}

var sampleExamples = []domain.LabeledExample{
	{Content: "You are an idiot", Classification: domain.LabelToxic, Explanation: "insult", AuthorMessage: "Please be kind."},
	{Content: "Thanks for the help!", Classification: domain.LabelGood, Explanation: "gratitude", AuthorMessage: domain.AuthorMessageNone},
}

func TestSarcasmDetectorShortTextGuidance(t *testing.T) {
	completer := &recordingCompleter{reply: "IS_SARCASTIC: YES\nTOXICITY: NEUTRAL\nTRUE_MEANING: This is terrible."}
	detector := NewSarcasmDetector(completer, prompt.NewPromptBuilder(), zap.NewNop())

	parsed, meta, err := detector.Detect(context.Background(), "Oh great, another flat tire.", sampleExamples)
	require.NoError(t, err)
	assert.Equal(t, "fake", meta.Provider)
	assert.True(t, parsed.Value.IsSarcastic())
	assert.Equal(t, "This is terrible.", parsed.Value.TrueMeaning)

	sent := completer.lastPrompt()
	assert.Contains(t, sent, "short text")
	assert.Contains(t, sent, "You are an idiot")
	assert.Equal(t, PresetDetection, completer.presets[0])
}

func TestSarcasmDetectorLongTextGuidance(t *testing.T) {
	completer := &recordingCompleter{reply: "IS_SARCASTIC: NO\nTOXICITY: NEUTRAL\nTRUE_MEANING: same"}
	detector := NewSarcasmDetector(completer, prompt.NewPromptBuilder(), zap.NewNop())

	long := "I spent the whole weekend fixing the build and then the release was cancelled on Monday morning without any warning at all"
	parsed, _, err := detector.Detect(context.Background(), long, nil)
	require.NoError(t, err)
	assert.Equal(t, long, parsed.Value.TrueMeaning)
	assert.Contains(t, completer.lastPrompt(), "longer text")
}

func TestSarcasmDetectorPropagatesBackendError(t *testing.T) {
	backendErr := errors.NewServiceError("down", "fake", "complete", nil)
	detector := NewSarcasmDetector(&recordingCompleter{err: backendErr}, prompt.NewPromptBuilder(), zap.NewNop())

	_, _, err := detector.Detect(context.Background(), "hello", nil)
	var svcErr *errors.ServiceError
	require.True(t, stderrors.As(err, &svcErr))
}

func TestClassifierUsesTrueMeaningForSarcasm(t *testing.T) {
	completer := &recordingCompleter{reply: "NEUTRAL - COMPLAINT"}
	classifier := NewClassifier(completer, prompt.NewPromptBuilder(), zap.NewNop())

	sarcasm := domain.SarcasmResult{
		Verdict:      domain.SarcasmSarcastic,
		ToxicityHint: domain.LabelNeutral,
		TrueMeaning:  "This is terrible.",
	}
	parsed, _, err := classifier.Classify(context.Background(), "Oh great, another flat tire.", sarcasm, sampleExamples)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelNeutral, parsed.Value.Label)
	assert.Equal(t, "COMPLAINT", parsed.Value.SubLabel)

	sent := completer.lastPrompt()
	assert.Contains(t, sent, "TEXT TO CLASSIFY:\n\"\"\"This is terrible.\"\"\"")
	assert.Contains(t, sent, "Original wording: \"\"\"Oh great, another flat tire.\"\"\"")
	assert.Equal(t, PresetClassification, completer.presets[0])
}

func TestClassifierAmbiguousUsesLiteralText(t *testing.T) {
	completer := &recordingCompleter{reply: "GOOD - PRAISE"}
	classifier := NewClassifier(completer, prompt.NewPromptBuilder(), zap.NewNop())

	sarcasm := domain.SarcasmResult{
		Verdict:      domain.SarcasmAmbiguous,
		ToxicityHint: domain.LabelToxic,
		TrueMeaning:  "Bob did badly.",
	}
	_, _, err := classifier.Classify(context.Background(), "I really loved how Bob handled that meeting.", sarcasm, nil)
	require.NoError(t, err)

	sent := completer.lastPrompt()
	assert.Contains(t, sent, "\"\"\"I really loved how Bob handled that meeting.\"\"\"")
	assert.NotContains(t, sent, "Bob did badly.")
	assert.Contains(t, sent, "MAY be sarcastic")
}

func TestClassifierMalformedOutputIsNotAnError(t *testing.T) {
	classifier := NewClassifier(&recordingCompleter{reply: "¯\\_(ツ)_/¯"}, prompt.NewPromptBuilder(), zap.NewNop())

	parsed, _, err := classifier.Classify(context.Background(), "whatever", domain.NoSarcasm("whatever"), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelNeutral, parsed.Value.Label)
	assert.Equal(t, domain.SubLabelUnknown, parsed.Value.SubLabel)
	assert.Equal(t, domain.ParseDefault, parsed.Source)
}

func TestResponderAsksForAuthorMessageOnlyWhenToxic(t *testing.T) {
	completer := &recordingCompleter{reply: "Explanation: Aggressive profanity.\nMessage to Author: Please rephrase."}
	responder := NewResponder(completer, prompt.NewPromptBuilder(), zap.NewNop())

	toxic := domain.Classification{Label: domain.LabelToxic, SubLabel: "PROFANITY"}
	parsed, _, err := responder.Respond(context.Background(), "FUCK OFF", toxic, domain.NoSarcasm("FUCK OFF"))
	require.NoError(t, err)
	assert.Equal(t, "Please rephrase.", parsed.Value.AuthorMessage)
	assert.Contains(t, completer.lastPrompt(), "Message to Author:")

	good := domain.Classification{Label: domain.LabelGood, SubLabel: "PRAISE"}
	parsed, _, err = responder.Respond(context.Background(), "Great work!", good, domain.NoSarcasm("Great work!"))
	require.NoError(t, err)
	assert.Equal(t, domain.AuthorMessageNone, parsed.Value.AuthorMessage)
	assert.NotContains(t, completer.lastPrompt(), "Message to Author:")
	assert.Equal(t, PresetExplanation, completer.presets[1])
}

func TestResponderIncludesSarcasmContext(t *testing.T) {
	completer := &recordingCompleter{reply: "Explanation: Complaint."}
	responder := NewResponder(completer, prompt.NewPromptBuilder(), zap.NewNop())

	sarcasm := domain.SarcasmResult{Verdict: domain.SarcasmSarcastic, ToxicityHint: domain.LabelNeutral, TrueMeaning: "This is terrible."}
	_, _, err := responder.Respond(context.Background(), "Oh great, another flat tire.",
		domain.Classification{Label: domain.LabelNeutral, SubLabel: "COMPLAINT"}, sarcasm)
	require.NoError(t, err)
	assert.Contains(t, completer.lastPrompt(), `Its true meaning is: "This is terrible."`)
}

func TestTranslatorReturnsEnglishRendering(t *testing.T) {
	completer := &recordingCompleter{reply: "DETECTED_LANGUAGE: Korean\nIS_ENGLISH: NO\nTRANSLATED: You are the best"}
	translator := NewTranslator(completer, prompt.NewPromptBuilder(), zap.NewNop())

	parsed, _, err := translator.Translate(context.Background(), "너 최고야")
	require.NoError(t, err)
	assert.False(t, parsed.Value.IsEnglish)
	assert.Equal(t, "You are the best", parsed.Value.Translated)
	assert.Equal(t, PresetPrecise, completer.presets[0])
}
