package prompt

import (
	"fmt"
	"strings"

	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/util"
)

// ExampleLine is a retrieved example as shown inside a prompt.
type ExampleLine struct {
	Index       int
	Text        string
	Label       string
	Explanation string
}

type SarcasmData struct {
	Text            string
	IsShort         bool
	ShortTokenLimit int
	Examples        []ExampleLine
}

type ClassifierData struct {
	Text         string
	OriginalText string
	IsSarcastic  bool
	IsAmbiguous  bool
	Examples     []ExampleLine
}

type ResponderData struct {
	Text        string
	Label       string
	SubLabel    string
	IsToxic     bool
	IsSarcastic bool
	IsAmbiguous bool
	TrueMeaning string
}

type TranslatorData struct {
	Text string
}

// ExampleLines converts retrieved examples into prompt lines, truncating long
// content. limit <= 0 keeps all examples.
func ExampleLines(examples []domain.LabeledExample, limit int) []ExampleLine {
	if limit > 0 && len(examples) > limit {
		examples = examples[:limit]
	}
	lines := make([]ExampleLine, 0, len(examples))
	for i, ex := range examples {
		lines = append(lines, ExampleLine{
			Index:       i + 1,
			Text:        util.TruncateString(flatten(ex.Content), constants.RetrievalConfig.ExamplePreviewLen),
			Label:       ex.Classification.String(),
			Explanation: util.TruncateString(flatten(ex.Explanation), constants.RetrievalConfig.ExamplePreviewLen),
		})
	}
	return lines
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func renderExampleBlock(examples []ExampleLine) string {
	if len(examples) == 0 {
		return "  (none)\n"
	}
	var b strings.Builder
	for _, ex := range examples {
		fmt.Fprintf(&b, "  Example %d:\n    Text: %s\n    Label: %s\n\n", ex.Index, ex.Text, ex.Label)
	}
	return b.String()
}
