// Package errors provides the standardized error taxonomy of the Human1 SDK.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeOracle             ErrorCode = "ORACLE_ERROR"
	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeUnexpectedFormat   ErrorCode = "UNEXPECTED_FORMAT"
	ErrCodeQueryExecution     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeUnsafeSQL          ErrorCode = "UNSAFE_SQL"
	ErrCodeEnvironment        ErrorCode = "ENVIRONMENT_ERROR"
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeInvalidApplication ErrorCode = "INVALID_APPLICATION"
	ErrCodeAuthentication     ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause so errors.Is works through a StandardError.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable request validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOracleError wraps a failure of the LLM oracle.
func NewOracleError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOracle,
		Message:   "Oracle request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError(err error) *StandardError {
	details := "LLM call exceeded timeout"
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM request timeout",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUnexpectedFormatError reports oracle output that cannot be read as a table.
func NewUnexpectedFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnexpectedFormat,
		Message:   "Unexpected response format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecution,
		Message:   "Database query execution error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUnsafeSQLError rejects generated SQL that is not a single read-only statement.
func NewUnsafeSQLError(statement string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsafeSQL,
		Message:   "Generated SQL is not a read-only query",
		Details:   statement,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnvironmentError reports required configuration missing at startup.
func NewEnvironmentError(missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnvironment,
		Message:   "Missing required environment variables",
		Details:   strings.Join(missing, ", "),
		Retryable: false,
		Metadata:  map[string]interface{}{"missing": missing},
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnection,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvalidApplicationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidApplication,
		Message:   "Invalid application handle",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthentication,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification
// ==========================

func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidation:
		return "VALIDATION"
	case ErrCodeOracle, ErrCodeLLMTimeout, ErrCodeUnexpectedFormat:
		return "AI"
	case ErrCodeQueryExecution, ErrCodeUnsafeSQL, ErrCodeDatabaseConnection:
		return "DATABASE"
	case ErrCodeEnvironment:
		return "CONFIGURATION"
	case ErrCodeInvalidApplication:
		return "SDK"
	case ErrCodeAuthentication:
		return "AUTH"
	default:
		return "OTHER"
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeOracle, ErrCodeLLMTimeout, ErrCodeQueryExecution, ErrCodeDatabaseConnection:
		return true
	default:
		return false
	}
}
