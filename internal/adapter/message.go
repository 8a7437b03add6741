package adapter

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/gateway"
	"github.com/kapu/toxicity-agent-go/internal/util"
)

var controlCharsPattern = regexp.MustCompile(`[\x00-\x08\x0B-\x1F\x7F]`)

// MessageKind tells the listener what to do with a chat message.
type MessageKind string

const (
	// KindModerate is ordinary chat: analyse silently, reply only when toxic.
	KindModerate MessageKind = "moderate"
	// KindCheck is an explicit "!check <text>" request: always reply.
	KindCheck MessageKind = "check"
	KindHelp  MessageKind = "help"
	// KindIgnore covers empty messages and unknown commands.
	KindIgnore MessageKind = "ignore"
)

// ParsedMessage is a chat message reduced to what the listener needs.
type ParsedMessage struct {
	Kind   MessageKind
	Room   string
	Sender string
	Text   string
}

// MessageAdapter converts chat bridge messages to moderation requests.
type MessageAdapter struct {
	prefix string
}

func NewMessageAdapter(prefix string) *MessageAdapter {
	if strings.TrimSpace(prefix) == "" {
		prefix = "!"
	}
	return &MessageAdapter{prefix: prefix}
}

func (ma *MessageAdapter) ParseMessage(message *gateway.Message) *ParsedMessage {
	parsed := &ParsedMessage{Kind: KindIgnore}
	if message == nil {
		return parsed
	}
	parsed.Room = message.Room
	parsed.Sender = message.SenderName()

	text := ma.sanitize(message.Text())
	if text == "" {
		return parsed
	}

	if !strings.HasPrefix(text, ma.prefix) {
		parsed.Kind = KindModerate
		parsed.Text = text
		return parsed
	}

	commandText := strings.TrimSpace(text[len(ma.prefix):])
	command, rest := commandText, ""
	if idx := strings.IndexFunc(commandText, unicode.IsSpace); idx >= 0 {
		command, rest = commandText[:idx], strings.TrimSpace(commandText[idx:])
	}

	switch {
	case ma.isCheckCommand(command):
		if rest != "" {
			parsed.Kind = KindCheck
			parsed.Text = rest
		}
	case ma.isHelpCommand(command):
		parsed.Kind = KindHelp
	}
	return parsed
}

func (ma *MessageAdapter) Prefix() string {
	return ma.prefix
}

func (ma *MessageAdapter) isCheckCommand(cmd string) bool {
	return slices.Contains([]string{"check", "분석", "검사"}, strings.ToLower(cmd))
}

func (ma *MessageAdapter) isHelpCommand(cmd string) bool {
	return slices.Contains([]string{"help", "도움말"}, strings.ToLower(cmd))
}

func (ma *MessageAdapter) sanitize(input string) string {
	cleaned := controlCharsPattern.ReplaceAllString(input, "")
	cleaned = strings.TrimSpace(cleaned)
	return util.TruncateString(cleaned, constants.AIInputLimits.MaxQueryLength)
}
