package adapter

import (
	"testing"

	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/gateway"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestParseMessage(t *testing.T) {
	adapter := NewMessageAdapter("!")

	tests := []struct {
		name string
		msg  *gateway.Message
		kind MessageKind
		text string
	}{
		{"nil", nil, KindIgnore, ""},
		{"blank", &gateway.Message{Msg: "  \x01 "}, KindIgnore, ""},
		{"plain chat", &gateway.Message{Msg: "you are all idiots"}, KindModerate, "you are all idiots"},
		{"check command", &gateway.Message{Msg: "!check Oh great, another flat tire."}, KindCheck, "Oh great, another flat tire."},
		{"korean check", &gateway.Message{Msg: "!분석\n너 최고야"}, KindCheck, "너 최고야"},
		{"check without text", &gateway.Message{Msg: "!check"}, KindIgnore, ""},
		{"help", &gateway.Message{Msg: "!HELP"}, KindHelp, ""},
		{"unknown command", &gateway.Message{Msg: "!live"}, KindIgnore, ""},
		{"json body wins", &gateway.Message{Msg: "x", JSON: &gateway.MessageJSON{Message: "!check hi"}}, KindCheck, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := adapter.ParseMessage(tt.msg)
			assert.Equal(t, tt.kind, parsed.Kind)
			assert.Equal(t, tt.text, parsed.Text)
		})
	}
}

func TestParseMessageKeepsRoomAndSender(t *testing.T) {
	parsed := NewMessageAdapter("").ParseMessage(&gateway.Message{Msg: "hello", Room: "r1", Sender: strPtr("bob")})
	assert.Equal(t, "r1", parsed.Room)
	assert.Equal(t, "bob", parsed.Sender)
}

func TestFormatAnalysis(t *testing.T) {
	f := NewResponseFormatter("!")
	out := f.FormatAnalysis(&domain.AnalysisResult{
		Input:          "FUCK OFF YOU PIECE OF SHIT",
		Classification: domain.LabelToxic,
		SubLabel:       domain.SubLabelUnknown,
		Explanation:    "Aggressive profanity.",
		AuthorMessage:  "Please keep it civil.",
		Sarcasm:        domain.NoSarcasm("FUCK OFF YOU PIECE OF SHIT"),
	})

	assert.Contains(t, out, "🚫 TOXIC\n")
	assert.NotContains(t, out, "UNKNOWN")
	assert.Contains(t, out, "Aggressive profanity.")
	assert.Contains(t, out, "💬 Please keep it civil.")
}

func TestFormatAnalysisSarcasm(t *testing.T) {
	f := NewResponseFormatter("!")
	out := f.FormatAnalysis(&domain.AnalysisResult{
		Input:          "Oh great, another flat tire.",
		Classification: domain.LabelNeutral,
		SubLabel:       "COMPLAINT",
		Explanation:    "A complaint.",
		AuthorMessage:  domain.AuthorMessageNone,
		Sarcasm: domain.SarcasmResult{
			Verdict:     domain.SarcasmSarcastic,
			TrueMeaning: "This is terrible.",
		},
	})

	assert.Contains(t, out, "NEUTRAL - COMPLAINT")
	assert.Contains(t, out, `Sarcasm detected: "This is terrible."`)
	assert.NotContains(t, out, "💬")
	assert.NotContains(t, out, "N/A")
}

func TestFormatAuthorNotice(t *testing.T) {
	f := NewResponseFormatter("!")
	toxic := &domain.AnalysisResult{AuthorMessage: "Please rephrase."}

	assert.Equal(t, "@bob ⚠️ Please rephrase.", f.FormatAuthorNotice("bob", toxic))
	assert.Equal(t, "⚠️ Please rephrase.", f.FormatAuthorNotice("", toxic))
	assert.Empty(t, f.FormatAuthorNotice("bob", &domain.AnalysisResult{AuthorMessage: domain.AuthorMessageNone}))
}

func TestFormatBatchSummaryAndHelp(t *testing.T) {
	f := NewResponseFormatter("/")
	summary := domain.SummarizeBatch([]*domain.AnalysisResult{
		{Classification: domain.LabelToxic},
		{Classification: domain.LabelGood},
	})

	out := f.FormatBatchSummary(summary)
	assert.Contains(t, out, "2 texts analysed")
	assert.Contains(t, out, "TOXIC     1")

	assert.Contains(t, f.FormatHelp(), "/check <text>")
}
