package ai

import (
	"regexp"
	"strings"
)

var (
	reasoningCloseRegex = regexp.MustCompile(`(?i)</(?:think|thinking|reasoning)>`)
	reasoningOpenRegex  = regexp.MustCompile(`(?i)<(?:think|thinking|reasoning)>`)
	codeFenceRegex      = regexp.MustCompile("(?m)^```[a-zA-Z]*[ \t]*$")
)

// StripReasoning drops a model's thinking block and returns only the answer
// that follows it. Everything up to the last closing marker is discarded. An
// unterminated block loses its opening marker only, so labeled lines written
// inside it can still be found by the loose parsers.
func StripReasoning(raw string) string {
	text := raw
	if locs := reasoningCloseRegex.FindAllStringIndex(text, -1); len(locs) > 0 {
		text = text[locs[len(locs)-1][1]:]
	} else {
		text = reasoningOpenRegex.ReplaceAllString(text, "")
	}
	text = codeFenceRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
