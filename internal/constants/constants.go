package constants

import "time"

var AIInputLimits = struct {
	MaxQueryLength int
}{
	MaxQueryLength: 4000,
}

var SarcasmConfig = struct {
	ShortTextTokens int
	MaxExamples     int
}{
	ShortTextTokens: 16, // 16 tokens 이하는 어휘 단서 위주로 판단
	MaxExamples:     3,
}

var RetrievalConfig = struct {
	DefaultK          int
	ExamplePreviewLen int
	EmbedBatchSize    int
}{
	DefaultK:          4,
	ExamplePreviewLen: 120,
	EmbedBatchSize:    64,
}

var CacheTTL = struct {
	ExampleEmbedding time.Duration
}{
	ExampleEmbedding: 7 * 24 * time.Hour,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:        30 * time.Second, // 기본 재시도 대기 시간
	RateLimitTimeout:    10 * time.Minute, // 429 전용 타임아웃
	HealthCheckInterval: 1 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
}

var ListenerConfig = struct {
	RequestTimeout time.Duration
	MaxConcurrent  int
	CommandPrefix  string
}{
	RequestTimeout: 90 * time.Second, // 4단계 LLM 호출 기준
	MaxConcurrent:  2,
	CommandPrefix:  "!",
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var StringLimits = struct {
	LogPreview   int
	ReplyPreview int
}{
	LogPreview:   100,
	ReplyPreview: 72,
}
