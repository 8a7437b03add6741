package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no block", "  NEUTRAL - DISAGREEMENT \n", "NEUTRAL - DISAGREEMENT"},
		{"think block", "<think>\nThe user says TOXIC things? No.\n</think>\nGOOD - PRAISE", "GOOD - PRAISE"},
		{"upper case marker", "<THINK>hmm</THINK>TOXIC - INSULT", "TOXIC - INSULT"},
		{"closing only", "reasoning without opener</think>\nNEUTRAL - STATEMENT", "NEUTRAL - STATEMENT"},
		{"unterminated", "<think>IS_SARCASTIC: YES", "IS_SARCASTIC: YES"},
		{"multiple blocks keep last answer", "<think>a</think>x<think>b</think>\nTOXIC - THREAT", "TOXIC - THREAT"},
		{"code fence", "```\nIS_SARCASTIC: NO\n```", "IS_SARCASTIC: NO"},
		{"empty after block", "<think>only thinking</think>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripReasoning(tt.raw))
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello world tab", sanitizeInput("hello\nworld\ttab\x00"))
	assert.Equal(t, "", sanitizeInput("   "))
}
