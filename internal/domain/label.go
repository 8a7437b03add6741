package domain

import (
	"regexp"
	"strings"
)

// Label is the primary moderation category.
type Label string

const (
	LabelToxic   Label = "TOXIC"
	LabelNeutral Label = "NEUTRAL"
	LabelGood    Label = "GOOD"
)

// SubLabelUnknown is used whenever the model did not supply a reason category.
const SubLabelUnknown = "UNKNOWN"

// AuthorMessageNone marks an absent author-facing message.
const AuthorMessageNone = "N/A"

var Labels = []Label{LabelToxic, LabelNeutral, LabelGood}

var labelTrimPattern = regexp.MustCompile(`^[^A-Za-z]+|[^A-Za-z]+$`)

func (l Label) String() string {
	return string(l)
}

func (l Label) IsValid() bool {
	switch l {
	case LabelToxic, LabelNeutral, LabelGood:
		return true
	default:
		return false
	}
}

// ParseLabel maps raw model text such as "[toxic]" or "Good." to a label.
// ok is false when the text is not exactly one of the three labels.
func ParseLabel(raw string) (Label, bool) {
	cleaned := strings.ToUpper(labelTrimPattern.ReplaceAllString(strings.TrimSpace(raw), ""))
	label := Label(cleaned)
	if label.IsValid() {
		return label, true
	}
	return LabelNeutral, false
}

// LabelOrDefault returns the parsed label, or fallback when raw is not a label.
func LabelOrDefault(raw string, fallback Label) Label {
	if label, ok := ParseLabel(raw); ok {
		return label
	}
	return fallback
}
