package ai

import (
	"testing"

	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseSarcasmResponse(t *testing.T) {
	const original = "Oh great, another flat tire."

	tests := []struct {
		name        string
		raw         string
		verdict     domain.SarcasmVerdict
		hint        domain.Label
		trueMeaning string
		source      domain.ParseSource
	}{
		{
			name:        "well formed sarcastic",
			raw:         "IS_SARCASTIC: YES\nTOXICITY: NEUTRAL\nTRUE_MEANING: This is terrible.",
			verdict:     domain.SarcasmSarcastic,
			hint:        domain.LabelNeutral,
			trueMeaning: "This is terrible.",
			source:      domain.ParseStructured,
		},
		{
			name:        "markdown and reasoning",
			raw:         "<think>The speaker is clearly annoyed.</think>\n**IS_SARCASTIC:** Yes\n**TOXICITY:** [TOXIC] (based on true meaning)\n**TRUE_MEANING:** \"I hate this.\"",
			verdict:     domain.SarcasmSarcastic,
			hint:        domain.LabelToxic,
			trueMeaning: "I hate this.",
			source:      domain.ParseStructured,
		},
		{
			name:        "ambiguous keeps original meaning",
			raw:         "IS_SARCASTIC: UNKNOWN\nTOXICITY: GOOD\nTRUE_MEANING: Bob did a terrible job.",
			verdict:     domain.SarcasmAmbiguous,
			hint:        domain.LabelGood,
			trueMeaning: original,
			source:      domain.ParseStructured,
		},
		{
			name:        "not sarcastic ignores model meaning",
			raw:         "is sarcastic: no\ntoxicity: neutral\ntrue meaning: something else",
			verdict:     domain.SarcasmNo,
			hint:        domain.LabelNeutral,
			trueMeaning: original,
			source:      domain.ParseStructured,
		},
		{
			name:        "missing toxicity defaults to neutral",
			raw:         "IS_SARCASTIC: YES\nTRUE_MEANING: This is terrible.",
			verdict:     domain.SarcasmSarcastic,
			hint:        domain.LabelNeutral,
			trueMeaning: "This is terrible.",
			source:      domain.ParseLoose,
		},
		{
			name:        "sarcastic with empty meaning keeps original",
			raw:         "IS_SARCASTIC: TRUE\nTOXICITY: TOXIC\nTRUE_MEANING:",
			verdict:     domain.SarcasmSarcastic,
			hint:        domain.LabelToxic,
			trueMeaning: original,
			source:      domain.ParseStructured,
		},
		{
			name:        "multiline meaning",
			raw:         "IS_SARCASTIC: YES\nTOXICITY: NEUTRAL\nTRUE_MEANING:\nThis is terrible,\nI am annoyed.\n\nExtra commentary.",
			verdict:     domain.SarcasmSarcastic,
			hint:        domain.LabelNeutral,
			trueMeaning: "This is terrible, I am annoyed.",
			source:      domain.ParseStructured,
		},
		{
			name:        "unrecognised verdict is no",
			raw:         "IS_SARCASTIC: perhaps?\nTOXICITY: NEUTRAL",
			verdict:     domain.SarcasmNo,
			hint:        domain.LabelNeutral,
			trueMeaning: original,
			source:      domain.ParseLoose,
		},
		{
			name:        "garbage",
			raw:         "I cannot help with that.",
			verdict:     domain.SarcasmNo,
			hint:        domain.LabelNeutral,
			trueMeaning: original,
			source:      domain.ParseDefault,
		},
		{
			name:        "empty",
			raw:         "",
			verdict:     domain.SarcasmNo,
			hint:        domain.LabelNeutral,
			trueMeaning: original,
			source:      domain.ParseDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSarcasmResponse(tt.raw, original)
			assert.Equal(t, tt.verdict, got.Value.Verdict)
			assert.Equal(t, tt.hint, got.Value.ToxicityHint)
			assert.Equal(t, tt.trueMeaning, got.Value.TrueMeaning)
			assert.Equal(t, tt.source, got.Source)
			assert.NotEmpty(t, got.Value.TrueMeaning)
			assert.True(t, got.Value.ToxicityHint.IsValid())
		})
	}
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		label    domain.Label
		subLabel string
		source   domain.ParseSource
	}{
		{"exact", "TOXIC - HATE SPEECH", domain.LabelToxic, "HATE SPEECH", domain.ParseStructured},
		{"no spaces", "NEUTRAL-DISAGREEMENT", domain.LabelNeutral, "DISAGREEMENT", domain.ParseStructured},
		{"markdown bold", "**GOOD - SUPPORTIVE**", domain.LabelGood, "SUPPORTIVE", domain.ParseStructured},
		{"prefixed", "Classification: toxic - PERSONAL ATTACK.", domain.LabelToxic, "PERSONAL ATTACK", domain.ParseStructured},
		{"en dash", "NEUTRAL – FACTUAL STATEMENTS", domain.LabelNeutral, "FACTUAL STATEMENTS", domain.ParseStructured},
		{"trailing prose", "GOOD - PRAISE because the author thanks them", domain.LabelGood, "PRAISE", domain.ParseStructured},
		{"prose after two-word sub-label", "TOXIC - HATE SPEECH The comment attacks a group.", domain.LabelToxic, "HATE SPEECH", domain.ParseStructured},
		{"single letter word after sub-label", "GOOD - SUPPORTIVE I think it helps.", domain.LabelGood, "SUPPORTIVE", domain.ParseStructured},
		{"article after sub-label", "NEUTRAL - FACTUAL STATEMENTS A plain fact.", domain.LabelNeutral, "FACTUAL STATEMENTS", domain.ParseStructured},
		{"first match wins", "Here is my answer:\nNEUTRAL - QUESTION\nTOXIC - INSULT", domain.LabelNeutral, "QUESTION", domain.ParseStructured},
		{"reasoning mentions other label", "<think>Could be TOXIC - INSULT? No.</think>\nGOOD - GRATITUDE", domain.LabelGood, "GRATITUDE", domain.ParseStructured},
		{"bare label", "TOXIC", domain.LabelToxic, domain.SubLabelUnknown, domain.ParseLoose},
		{"label in prose", "I would say this is clearly NEUTRAL overall.", domain.LabelNeutral, domain.SubLabelUnknown, domain.ParseLoose},
		{"upper case wins over prose word", "It is a good question but TOXIC in tone", domain.LabelToxic, domain.SubLabelUnknown, domain.ParseLoose},
		{"lower case only", "this looks toxic to me", domain.LabelToxic, domain.SubLabelUnknown, domain.ParseLoose},
		{"lower case sub-label", "Toxic - hate speech", domain.LabelToxic, domain.SubLabelUnknown, domain.ParseLoose},
		{"garbage", "asdf qwer", domain.LabelNeutral, domain.SubLabelUnknown, domain.ParseDefault},
		{"empty", "", domain.LabelNeutral, domain.SubLabelUnknown, domain.ParseDefault},
		{"whole word only", "NONTOXIC GOODNESS", domain.LabelNeutral, domain.SubLabelUnknown, domain.ParseDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseClassification(tt.raw)
			assert.Equal(t, tt.label, got.Value.Label)
			assert.Equal(t, tt.subLabel, got.Value.SubLabel)
			assert.Equal(t, tt.source, got.Source)
		})
	}
}

func TestParseResponse(t *testing.T) {
	toxic := domain.Classification{Label: domain.LabelToxic, SubLabel: "INSULT"}
	neutral := domain.Classification{Label: domain.LabelNeutral, SubLabel: "DISAGREEMENT"}

	t.Run("toxic with both markers", func(t *testing.T) {
		got := ParseResponse("Explanation: The text insults the reader.\nMessage to Author: Please keep it civil.", toxic)
		assert.Equal(t, "The text insults the reader.", got.Value.Explanation)
		assert.Equal(t, "Please keep it civil.", got.Value.AuthorMessage)
		assert.Equal(t, domain.ParseStructured, got.Source)
	})

	t.Run("markdown markers", func(t *testing.T) {
		got := ParseResponse("**Explanation:** Uses slurs.\n\n**Message to Author:** Stop.", toxic)
		assert.Equal(t, "Uses slurs.", got.Value.Explanation)
		assert.Equal(t, "Stop.", got.Value.AuthorMessage)
	})

	t.Run("non toxic forces N/A", func(t *testing.T) {
		got := ParseResponse("Explanation: Calm disagreement.\nMessage to Author: Be nicer.", neutral)
		assert.Equal(t, "Calm disagreement.", got.Value.Explanation)
		assert.Equal(t, domain.AuthorMessageNone, got.Value.AuthorMessage)
	})

	t.Run("author message before explanation", func(t *testing.T) {
		got := ParseResponse("Message to Author: Please stop insulting people.\nExplanation: The text contains direct insults.", toxic)
		assert.Equal(t, "The text contains direct insults.", got.Value.Explanation)
		assert.Equal(t, "Please stop insulting people.", got.Value.AuthorMessage)
		assert.Equal(t, domain.ParseStructured, got.Source)
	})

	t.Run("author message only keeps preceding text as explanation", func(t *testing.T) {
		got := ParseResponse("Direct insults.\nMessage to Author: Please stop.", toxic)
		assert.Equal(t, "Direct insults.", got.Value.Explanation)
		assert.Equal(t, "Please stop.", got.Value.AuthorMessage)
		assert.Equal(t, domain.ParseLoose, got.Source)
	})

	t.Run("missing marker uses whole response", func(t *testing.T) {
		got := ParseResponse("<think>hmm</think>\nThe author disagrees politely.", neutral)
		assert.Equal(t, "The author disagrees politely.", got.Value.Explanation)
		assert.Equal(t, domain.ParseLoose, got.Source)
	})

	t.Run("empty response gets default explanation", func(t *testing.T) {
		got := ParseResponse("", neutral)
		assert.Equal(t, "This content was classified as NEUTRAL.", got.Value.Explanation)
		assert.Equal(t, domain.AuthorMessageNone, got.Value.AuthorMessage)
		assert.Equal(t, domain.ParseDefault, got.Source)
	})

	t.Run("toxic without message gets default", func(t *testing.T) {
		got := ParseResponse("Explanation: Aggressive profanity.\nMessage to Author: N/A", toxic)
		assert.NotEqual(t, domain.AuthorMessageNone, got.Value.AuthorMessage)
		assert.Contains(t, got.Value.AuthorMessage, "insult")
		assert.Equal(t, domain.ParseLoose, got.Source)
	})

	t.Run("toxic unknown sub-label", func(t *testing.T) {
		got := ParseResponse("", domain.Classification{Label: domain.LabelToxic, SubLabel: domain.SubLabelUnknown})
		assert.Equal(t, "This content was classified as TOXIC.", got.Value.Explanation)
		assert.Contains(t, got.Value.AuthorMessage, "harmful")
	})
}

func TestParseTranslation(t *testing.T) {
	const original = "너 정말 최고야"

	got := ParseTranslation("DETECTED_LANGUAGE: Korean\nIS_ENGLISH: NO\nTRANSLATED: You are really the best", original)
	assert.Equal(t, domain.ParseStructured, got.Source)
	assert.Equal(t, "Korean", got.Value.DetectedLanguage)
	assert.False(t, got.Value.IsEnglish)
	assert.Equal(t, "You are really the best", got.Value.Translated)

	got = ParseTranslation("DETECTED_LANGUAGE: English\nIS_ENGLISH: YES\nTRANSLATED: changed", "hello there")
	assert.True(t, got.Value.IsEnglish)
	assert.Equal(t, "hello there", got.Value.Translated)

	got = ParseTranslation("<think>\nDETECTED_LANGUAGE: Korean\n</think>\nno idea", original)
	assert.Equal(t, domain.ParseDefault, got.Source)
	assert.Equal(t, "English", got.Value.DetectedLanguage)
	assert.Equal(t, original, got.Value.Translated)

	got = ParseTranslation("DETECTED_LANGUAGE: Spanish\nTRANSLATED:", "hola")
	assert.Equal(t, domain.ParseLoose, got.Source)
	assert.False(t, got.Value.IsEnglish)
	assert.Equal(t, "hola", got.Value.Translated)
}
