package adapter

import (
	"fmt"
	"strings"

	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/util"
)

var labelIcons = map[domain.Label]string{
	domain.LabelToxic:   "🚫",
	domain.LabelNeutral: "➖",
	domain.LabelGood:    "✅",
}

type analysisView struct {
	Icon          string
	Label         string
	SubLabel      string
	Preview       string
	Sarcastic     bool
	Ambiguous     bool
	TrueMeaning   string
	Explanation   string
	AuthorMessage string
}

type authorNoticeView struct {
	Sender        string
	AuthorMessage string
}

type batchSummaryView struct {
	Total     int
	Toxic     int
	Neutral   int
	Good      int
	Sarcastic int
}

// ResponseFormatter renders analysis results as chat replies and CLI text.
type ResponseFormatter struct {
	prefix string
}

func NewResponseFormatter(prefix string) *ResponseFormatter {
	if strings.TrimSpace(prefix) == "" {
		prefix = "!"
	}
	return &ResponseFormatter{prefix: prefix}
}

// FormatAnalysis renders the full result of one text.
func (f *ResponseFormatter) FormatAnalysis(result *domain.AnalysisResult) string {
	if result == nil {
		return f.FormatError("분석 결과가 없습니다.")
	}

	view := analysisView{
		Icon:        labelIcons[result.Classification],
		Label:       result.Classification.String(),
		Preview:     util.TruncateString(result.Input, constants.StringLimits.ReplyPreview),
		Sarcastic:   result.Sarcasm.IsSarcastic(),
		Ambiguous:   result.Sarcasm.IsAmbiguous(),
		TrueMeaning: result.Sarcasm.TrueMeaning,
		Explanation: result.Explanation,
	}
	if result.SubLabel != domain.SubLabelUnknown {
		view.SubLabel = result.SubLabel
	}
	if result.AuthorMessage != domain.AuthorMessageNone {
		view.AuthorMessage = result.AuthorMessage
	}

	rendered, err := executeFormatterTemplate("analysis", view)
	if err != nil {
		return fmt.Sprintf("%s %s - %s\n%s", view.Icon, view.Label, result.SubLabel, result.Explanation)
	}
	return rendered
}

// FormatAuthorNotice is the short reply posted under a toxic chat message.
func (f *ResponseFormatter) FormatAuthorNotice(sender string, result *domain.AnalysisResult) string {
	if result == nil || result.AuthorMessage == "" || result.AuthorMessage == domain.AuthorMessageNone {
		return ""
	}

	view := authorNoticeView{Sender: sender, AuthorMessage: result.AuthorMessage}
	rendered, err := executeFormatterTemplate("author_notice", view)
	if err != nil {
		return "⚠️ " + result.AuthorMessage
	}
	return rendered
}

func (f *ResponseFormatter) FormatBatchSummary(summary domain.BatchSummary) string {
	view := batchSummaryView{
		Total:     summary.Total,
		Toxic:     summary.Counts[domain.LabelToxic],
		Neutral:   summary.Counts[domain.LabelNeutral],
		Good:      summary.Counts[domain.LabelGood],
		Sarcastic: summary.Sarcasm,
	}
	rendered, err := executeFormatterTemplate("batch_summary", view)
	if err != nil {
		return fmt.Sprintf("%d texts analysed", summary.Total)
	}
	return rendered
}

func (f *ResponseFormatter) FormatHelp() string {
	rendered, err := executeFormatterTemplate("help", struct{ Prefix string }{f.prefix})
	if err != nil {
		return fmt.Sprintf("%scheck <text>", f.prefix)
	}
	return rendered
}

func (f *ResponseFormatter) FormatError(message string) string {
	return fmt.Sprintf("❌ %s", message)
}
