package errors

import "fmt"

// Error codes
const (
	CodeModerationError = "MODERATION_ERROR"
	CodeConfig          = "CONFIG_ERROR"
	CodeDataset         = "DATASET_ERROR"
	CodeService         = "SERVICE_ERROR"
	CodeValidation      = "VALIDATION_ERROR"
	CodeCache           = "CACHE_ERROR"
	CodeAPIError        = "API_ERROR"
)

type ModerationError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *ModerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ModerationError) Unwrap() error {
	return e.Cause
}

func NewModerationError(message, code string, statusCode int, context map[string]any) *ModerationError {
	return &ModerationError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *ModerationError) WithCause(cause error) *ModerationError {
	e.Cause = cause
	return e
}

// ConfigError is fatal: the pipeline cannot run until the configuration is fixed.
type ConfigError struct {
	*ModerationError
	Setting string
}

func NewConfigError(message, setting string, cause error) *ConfigError {
	return &ConfigError{
		ModerationError: &ModerationError{
			Message:    message,
			Code:       CodeConfig,
			StatusCode: 500,
			Context: map[string]any{
				"setting": setting,
			},
			Cause: cause,
		},
		Setting: setting,
	}
}

type DatasetError struct {
	*ModerationError
	Source string
	Column string
}

func NewDatasetError(message, source, column string, cause error) *DatasetError {
	return &DatasetError{
		ModerationError: &ModerationError{
			Message:    message,
			Code:       CodeDataset,
			StatusCode: 500,
			Context: map[string]any{
				"source": source,
				"column": column,
			},
			Cause: cause,
		},
		Source: source,
		Column: column,
	}
}

type ServiceError struct {
	*ModerationError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		ModerationError: &ModerationError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 503,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

type ValidationError struct {
	*ModerationError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		ModerationError: &ModerationError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*ModerationError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		ModerationError: &ModerationError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type APIError struct {
	*ModerationError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		ModerationError: &ModerationError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}
