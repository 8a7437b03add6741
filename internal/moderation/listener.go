package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/kapu/toxicity-agent-go/internal/adapter"
	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/internal/gateway"
	"github.com/kapu/toxicity-agent-go/internal/util"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

type Analyzer interface {
	Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error)
}

type Sender interface {
	SendMessage(ctx context.Context, room, message string) error
}

type MessageSource interface {
	Connect(ctx context.Context) error
	OnMessage(callback gateway.MessageCallback) func()
	OnStateChange(callback gateway.StateCallback) func()
	Disconnect() error
}

type ListenerConfig struct {
	// BotName is skipped so the bot never moderates its own replies.
	BotName string
	// Rooms restricts moderation to these rooms. Empty means all rooms.
	Rooms          []string
	MaxConcurrent  int
	RequestTimeout time.Duration
}

// Listener moderates live chat. Ordinary messages are analysed silently and
// answered with the author message when classified TOXIC; "!check" requests
// always get the full analysis back.
type Listener struct {
	analyzer  Analyzer
	sender    Sender
	messages  *adapter.MessageAdapter
	formatter *adapter.ResponseFormatter
	cfg       ListenerConfig
	accept    gateway.EventFilter
	logger    *zap.Logger
}

func NewListener(
	analyzer Analyzer,
	sender Sender,
	messages *adapter.MessageAdapter,
	formatter *adapter.ResponseFormatter,
	cfg ListenerConfig,
	logger *zap.Logger,
) *Listener {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = constants.ListenerConfig.RequestTimeout
	}

	return &Listener{
		analyzer:  analyzer,
		sender:    sender,
		messages:  messages,
		formatter: formatter,
		cfg:       cfg,
		accept:    gateway.AllOf(gateway.ExcludeSenders(cfg.BotName), gateway.FromRooms(cfg.Rooms...)),
		logger:    logger,
	}
}

// Filter returns the chat event filter for the configured bot and rooms, for
// installing on the gateway so skipped events never reach the worker pool.
func (l *Listener) Filter() gateway.EventFilter {
	return l.accept
}

// Run connects the source and handles messages until ctx is cancelled or the
// source gives up reconnecting. Handlers run on a bounded pool; a full pool
// blocks the read loop.
func (l *Listener) Run(ctx context.Context, source MessageSource) error {
	workers := pool.New().WithMaxGoroutines(l.cfg.MaxConcurrent)

	gaveUp := make(chan struct{})
	var gaveUpOnce sync.Once
	unsubscribeState := source.OnStateChange(func(state gateway.WebSocketState) {
		if state != gateway.WSStateFailed {
			return
		}
		l.logger.Error("Chat gateway gave up reconnecting")
		gaveUpOnce.Do(func() { close(gaveUp) })
	})
	defer unsubscribeState()

	unsubscribe := source.OnMessage(func(message *gateway.Message) {
		if ctx.Err() != nil {
			return
		}
		workers.Go(func() {
			if _, err := l.HandleMessage(ctx, message); err != nil {
				l.logger.Warn("Message not moderated", zap.Error(err))
			}
		})
	})
	defer unsubscribe()

	if err := source.Connect(ctx); err != nil {
		return errors.NewServiceError("failed to connect chat gateway", "gateway", "connect", err)
	}
	l.logger.Info("Moderation listener started",
		zap.Int("max_concurrent", l.cfg.MaxConcurrent),
		zap.Int("rooms", len(l.cfg.Rooms)),
	)

	var runErr error
	select {
	case <-ctx.Done():
	case <-gaveUp:
		runErr = errors.NewServiceError("chat gateway connection lost", "gateway", "reconnect", nil)
	}

	if err := source.Disconnect(); err != nil {
		l.logger.Warn("Failed to disconnect chat gateway", zap.Error(err))
	}
	workers.Wait()
	l.logger.Info("Moderation listener stopped")
	return runErr
}

// HandleMessage analyses one chat message and sends the reply, if any.
// It returns the analysis, or nil when the message was not analysed.
func (l *Listener) HandleMessage(ctx context.Context, message *gateway.Message) (*domain.AnalysisResult, error) {
	if !l.accept(message) {
		return nil, nil
	}
	parsed := l.messages.ParseMessage(message)

	switch parsed.Kind {
	case adapter.KindHelp:
		return nil, l.reply(ctx, parsed.Room, l.formatter.FormatHelp())
	case adapter.KindIgnore:
		return nil, errors.NewValidationError("message has no text to analyse", "message", parsed.Room)
	}

	analyzeCtx, cancel := context.WithTimeout(ctx, l.cfg.RequestTimeout)
	defer cancel()

	result, err := l.analyzer.Analyze(analyzeCtx, parsed.Text)
	if err != nil {
		if parsed.Kind == adapter.KindCheck {
			_ = l.reply(ctx, parsed.Room, l.formatter.FormatError("분석에 실패했습니다. 잠시 후 다시 시도해주세요."))
		}
		return nil, err
	}

	l.logger.Info("Chat message moderated",
		zap.String("room", parsed.Room),
		zap.String("sender", parsed.Sender),
		zap.String("kind", string(parsed.Kind)),
		zap.String("classification", result.Classification.String()),
		zap.String("preview", util.TruncateString(parsed.Text, constants.StringLimits.LogPreview)),
	)

	switch {
	case parsed.Kind == adapter.KindCheck:
		return result, l.reply(ctx, parsed.Room, l.formatter.FormatAnalysis(result))
	case result.Classification == domain.LabelToxic:
		notice := l.formatter.FormatAuthorNotice(parsed.Sender, result)
		if notice == "" {
			return result, nil
		}
		return result, l.reply(ctx, parsed.Room, notice)
	}
	return result, nil
}

func (l *Listener) reply(ctx context.Context, room, text string) error {
	return l.sender.SendMessage(ctx, room, text)
}
