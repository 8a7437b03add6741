package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/util"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"go.uber.org/zap"
)

// Completer is the narrow view of the generative backend used by the stages.
type Completer interface {
	Complete(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error)
}

// ModelManager sends prompts to the primary provider and, on failure, to the
// fallback provider. Service failures are tracked by a circuit breaker.
type ModelManager struct {
	primary        TextProvider
	fallback       TextProvider
	logger         *zap.Logger
	circuitBreaker *util.CircuitBreaker
}

func NewModelManager(primary, fallback TextProvider, logger *zap.Logger) (*ModelManager, error) {
	if isNilProvider(primary) {
		if isNilProvider(fallback) {
			return nil, errors.NewConfigError("no generative backend configured", "llm.provider", nil)
		}
		primary, fallback = fallback, nil
	}
	if isNilProvider(fallback) {
		fallback = nil
		logger.Info("LLM fallback disabled", zap.String("primary", primary.Name()))
	} else {
		logger.Info("LLM fallback enabled",
			zap.String("primary", primary.Name()),
			zap.String("fallback", fallback.Name()),
			zap.String("fallback_model", fallback.DefaultModel()),
		)
	}

	mm := &ModelManager{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
	mm.circuitBreaker = util.NewCircuitBreaker(
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		mm.healthCheckPing,
		logger,
	)
	return mm, nil
}

// Complete returns the raw text of one completion. An empty answer from every
// provider is not an error; the caller's parser applies its defaults.
func (mm *ModelManager) Complete(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.GetStatus()
		nextRetry := "unknown"
		if status.NextRetryTime != nil {
			nextRetry = status.NextRetryTime.Format(time.RFC3339)
		}

		mm.logger.Error("LLM unavailable (Circuit OPEN)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
			zap.String("next_retry", nextRetry),
		)
		return "", nil, errors.NewServiceError(
			fmt.Sprintf("generative backend unavailable until %s", nextRetry),
			mm.primary.Name(), "complete", nil,
		)
	}

	result, primaryErr := mm.primary.Generate(ctx, prompt, preset, opts)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return result.Text, &GenerateMetadata{Provider: mm.primary.Name(), Model: result.Model}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", nil, errors.NewServiceError("completion cancelled", mm.primary.Name(), "complete", ctxErr)
	}

	if mm.fallback == nil {
		return mm.finish(result, primaryErr, nil, mm.primary.Name())
	}

	mm.logger.Warn("Primary LLM failed, trying fallback",
		zap.String("primary", mm.primary.Name()),
		zap.String("fallback", mm.fallback.Name()),
		zap.Error(primaryErr),
	)

	fbResult, fallbackErr := mm.fallback.Generate(ctx, prompt, preset, opts)
	if fallbackErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return fbResult.Text, &GenerateMetadata{
			Provider:     mm.fallback.Name(),
			Model:        fbResult.Model,
			UsedFallback: true,
		}, nil
	}

	if stderrors.Is(primaryErr, ErrEmptyResponse) || stderrors.Is(fallbackErr, ErrEmptyResponse) {
		// 한쪽은 응답했으므로 빈 텍스트로 진행
		mm.recordIfServiceFailure(primaryErr, fallbackErr)
		mm.logger.Warn("LLM returned an empty response",
			zap.NamedError("primary_error", primaryErr),
			zap.NamedError("fallback_error", fallbackErr),
		)
		return "", &GenerateMetadata{Provider: mm.fallback.Name(), Model: fbResult.Model, UsedFallback: true}, nil
	}

	return mm.finish(fbResult, primaryErr, fallbackErr, mm.fallback.Name())
}

func (mm *ModelManager) finish(result ProviderResult, primaryErr, fallbackErr error, provider string) (string, *GenerateMetadata, error) {
	if fallbackErr == nil && stderrors.Is(primaryErr, ErrEmptyResponse) {
		mm.circuitBreaker.RecordSuccess()
		mm.logger.Warn("LLM returned an empty response", zap.String("provider", provider))
		return "", &GenerateMetadata{Provider: provider, Model: result.Model}, nil
	}

	mm.recordIfServiceFailure(primaryErr, fallbackErr)

	cause := primaryErr
	if fallbackErr != nil {
		cause = stderrors.Join(primaryErr, fallbackErr)
	}
	return "", nil, errors.NewServiceError("generative backend call failed", provider, "complete", cause)
}

func (mm *ModelManager) recordIfServiceFailure(errs ...error) {
	failed := false
	rateLimited := false
	for _, err := range errs {
		if isServiceFailure(err) {
			failed = true
		}
		if isRateLimitError(err) {
			rateLimited = true
		}
	}
	if !failed {
		return
	}
	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if rateLimited {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	mm.circuitBreaker.RecordFailure(timeout)
}

// Ping verifies that at least one provider answers.
func (mm *ModelManager) Ping(ctx context.Context) error {
	if mm.primary.Ping(ctx) {
		return nil
	}
	if mm.fallback != nil && mm.fallback.Ping(ctx) {
		mm.logger.Warn("Primary LLM unreachable, fallback answered", zap.String("primary", mm.primary.Name()))
		return nil
	}
	return errors.NewServiceError("no generative backend answered ping", mm.primary.Name(), "ping", nil)
}

func (mm *ModelManager) healthCheckPing() bool {
	mm.logger.Info("Health Check: Testing LLM providers...")

	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	primaryOK := mm.primary.Ping(ctx)
	fallbackOK := false
	if mm.fallback != nil {
		fallbackOK = mm.fallback.Ping(ctx)
	}

	isHealthy := primaryOK || fallbackOK
	mm.logger.Info("Health Check: Result",
		zap.Bool("primary", primaryOK),
		zap.Bool("fallback", fallbackOK),
		zap.Bool("healthy", isHealthy),
	)
	return isHealthy
}

func (mm *ModelManager) GetCircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.GetStatus()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}

var (
	statusCodeRegex  = regexp.MustCompile(`\b(5\d{2})\b`)
	geminiCodeRegex  = regexp.MustCompile(`"code":\s*(\d{3})`)
	leadingCodeRegex = regexp.MustCompile(`^(\d{3})\s`)
)

func isServiceFailure(err error) bool {
	if err == nil || stderrors.Is(err, ErrEmptyResponse) {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") || strings.Contains(msg, "connection refused") {
		return true
	}
	if isRateLimitError(err) {
		return true
	}
	if statusCodeRegex.MatchString(msg) {
		return true
	}
	if code, ok := extractStatusCode(msg); ok {
		return code >= 500 && code < 600
	}
	return false
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}
	if code, ok := extractStatusCode(msg); ok {
		return code == 429
	}
	return false
}

func extractStatusCode(msg string) (int, bool) {
	for _, re := range []*regexp.Regexp{geminiCodeRegex, leadingCodeRegex} {
		if matches := re.FindStringSubmatch(msg); len(matches) > 1 {
			if code, err := strconv.Atoi(matches[1]); err == nil {
				return code, true
			}
		}
	}
	return 0, false
}

func isNilProvider(p TextProvider) bool {
	if p == nil {
		return true
	}
	switch v := p.(type) {
	case *GeminiProvider:
		return v == nil
	case *OpenAIProvider:
		return v == nil
	}
	return false
}
