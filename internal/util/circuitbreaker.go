package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"    // 정상 작동
	CircuitStateOpen     CircuitState = "OPEN"      // 백엔드 차단
	CircuitStateHalfOpen CircuitState = "HALF_OPEN" // 복구 시도 중
)

func (s CircuitState) String() string {
	return string(s)
}

// HealthCheckFunction reports whether the guarded backend answers again.
type HealthCheckFunction func() bool

// CircuitBreaker guards the generative backend. After failureThreshold
// consecutive service failures it opens; it moves to HALF_OPEN either when the
// health check passes or, without a health check, once the retry time passes.
type CircuitBreaker struct {
	mu                  sync.Mutex
	state               CircuitState
	failureCount        int
	failureThreshold    int
	resetTimeout        time.Duration
	healthCheckInterval time.Duration
	nextRetryTime       time.Time
	nextHealthCheckTime time.Time
	isHealthChecking    bool
	healthCheckFn       HealthCheckFunction
	now                 func() time.Time
	logger              *zap.Logger
}

func NewCircuitBreaker(
	failureThreshold int,
	resetTimeout time.Duration,
	healthCheckInterval time.Duration,
	healthCheckFn HealthCheckFunction,
	logger *zap.Logger,
) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		state:               CircuitStateClosed,
		failureThreshold:    failureThreshold,
		resetTimeout:        resetTimeout,
		healthCheckInterval: healthCheckInterval,
		healthCheckFn:       healthCheckFn,
		now:                 time.Now,
		logger:              logger,
	}
}

// WithClock replaces the time source. Used by tests.
func (cb *CircuitBreaker) WithClock(now func() time.Time) *CircuitBreaker {
	cb.mu.Lock()
	cb.now = now
	cb.mu.Unlock()
	return cb
}

// GetState returns the current state, starting recovery when an open circuit is due.
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitStateOpen {
		return cb.state
	}

	now := cb.now()
	switch {
	case cb.healthCheckFn != nil:
		if now.After(cb.nextHealthCheckTime) && !cb.isHealthChecking {
			cb.isHealthChecking = true
			go cb.runHealthCheck()
		}
	case now.After(cb.nextRetryTime):
		cb.transitionTo(CircuitStateHalfOpen)
	}

	return cb.state
}

func (cb *CircuitBreaker) CanExecute() bool {
	return cb.GetState() != CircuitStateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch {
	case cb.state == CircuitStateHalfOpen:
		cb.logger.Info("Circuit Breaker: backend recovered")
		cb.failureCount = 0
		cb.transitionTo(CircuitStateClosed)
	case cb.failureCount > 0:
		cb.logger.Debug("Circuit Breaker: resetting failure count", zap.Int("was", cb.failureCount))
		cb.failureCount = 0
	}
}

// RecordFailure counts a service failure. customTimeout overrides the reset
// timeout when positive (rate limits wait longer).
func (cb *CircuitBreaker) RecordFailure(customTimeout time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	timeout := cb.resetTimeout
	if customTimeout > 0 {
		timeout = customTimeout
	}

	cb.logger.Warn("Circuit Breaker: failure recorded",
		zap.Int("count", cb.failureCount),
		zap.Int("threshold", cb.failureThreshold),
		zap.Duration("timeout", timeout),
	)

	if cb.state != CircuitStateHalfOpen && cb.failureCount < cb.failureThreshold {
		return
	}

	now := cb.now()
	cb.nextRetryTime = now.Add(timeout)
	if cb.healthCheckFn != nil {
		cb.nextHealthCheckTime = now.Add(cb.healthCheckInterval)
	}
	cb.transitionTo(CircuitStateOpen)
}

func (cb *CircuitBreaker) runHealthCheck() {
	cb.logger.Info("Circuit Breaker: running health check")
	healthy := cb.healthCheckFn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.isHealthChecking = false
	if cb.state != CircuitStateOpen {
		return
	}
	if healthy {
		cb.transitionTo(CircuitStateHalfOpen)
		return
	}
	cb.logger.Warn("Circuit Breaker: health check failed")
	cb.nextHealthCheckTime = cb.now().Add(cb.healthCheckInterval)
}

// transitionTo must be called with cb.mu held.
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState

	nextRetry := "n/a"
	if newState == CircuitStateOpen {
		nextRetry = cb.nextRetryTime.Format(time.RFC3339)
	}

	cb.logger.Info("Circuit Breaker: state transition",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
		zap.String("next_retry", nextRetry),
	)
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.logger.Info("Circuit Breaker: manual reset")
	cb.state = CircuitStateClosed
	cb.failureCount = 0
	cb.nextRetryTime = time.Time{}
}

func (cb *CircuitBreaker) GetStatus() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := CircuitBreakerStatus{
		State:        cb.state,
		FailureCount: cb.failureCount,
	}
	if cb.state == CircuitStateOpen {
		next := cb.nextRetryTime
		status.NextRetryTime = &next
	}
	return status
}

type CircuitBreakerStatus struct {
	State         CircuitState
	FailureCount  int
	NextRetryTime *time.Time
}
