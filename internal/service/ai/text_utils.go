package ai

import (
	"strings"
	"unicode"

	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/util"
)

// sanitizeInput removes control characters and bounds the length of text that
// is embedded in a prompt. Newlines and tabs survive as plain spaces.
func sanitizeInput(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, input)

	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return util.TruncateString(cleaned, constants.AIInputLimits.MaxQueryLength)
}
