package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("query is required"), http.StatusBadRequest},
		{"oracle", NewOracleError(stderrors.New("boom")), http.StatusInternalServerError},
		{"unexpected format", NewUnexpectedFormatError("not an array"), http.StatusInternalServerError},
		{"wrapped validation", fmt.Errorf("execute: %w", NewValidationError("x")), http.StatusBadRequest},
		{"auth", NewAuthenticationError("bad token"), http.StatusUnauthorized},
		{"plain", stderrors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "boom", UserMessage(NewOracleError(stderrors.New("boom"))))
	assert.Equal(t, "Unexpected response format", UserMessage(NewUnexpectedFormatError("")))
	assert.Equal(t, "plain", UserMessage(stderrors.New("plain")))
	assert.Equal(t, "", UserMessage(nil))
}

func TestNormalize(t *testing.T) {
	cause := stderrors.New("socket closed")
	stdErr := Normalize(cause)

	require.NotNil(t, stdErr)
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.Equal(t, "socket closed", stdErr.Details)
	assert.True(t, stderrors.Is(stdErr, cause))
	assert.Nil(t, Normalize(nil))

	oracleErr := NewOracleError(cause)
	assert.Same(t, oracleErr, Normalize(fmt.Errorf("wrap: %w", oracleErr)))
	assert.True(t, stderrors.Is(oracleErr, cause))
}

func TestNewEnvironmentError_ListsAllMissing(t *testing.T) {
	err := NewEnvironmentError([]string{"DB_HOST", "OPENAI_API_KEY"})

	assert.Equal(t, ErrCodeEnvironment, err.Code)
	assert.Equal(t, "DB_HOST, OPENAI_API_KEY", err.Details)
	assert.Contains(t, err.Error(), "DB_HOST, OPENAI_API_KEY")
	assert.Equal(t, "CONFIGURATION", GetErrorCategory(err.Code))
}

func TestRetryClassification(t *testing.T) {
	assert.True(t, IsRetryable(NewOracleError(stderrors.New("x"))))
	assert.False(t, IsRetryable(NewValidationError("x")))
	assert.False(t, IsRetryable(stderrors.New("x")))
	assert.True(t, IsRetryableErrorCode(ErrCodeLLMTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeUnsafeSQL))
}

func TestLogFields(t *testing.T) {
	fields := LogFields(NewUnsafeSQLError("DROP TABLE people"))

	assert.Equal(t, "UNSAFE_SQL", fields["errorCode"])
	assert.Equal(t, "DATABASE", fields["errorCategory"])
	assert.Equal(t, false, fields["retryable"])
	assert.Nil(t, LogFields(nil))
}

func TestWithMetadata(t *testing.T) {
	err := NewQueryExecutionFailedError(stderrors.New("syntax error")).
		WithMetadata("stage", "ask").
		WithMetadata("message", "ignored in log fields")

	assert.Equal(t, "ask", err.Metadata["stage"])

	fields := LogFields(err)
	assert.Equal(t, "ask", fields["stage"])
	assert.Equal(t, err.Message, fields["message"])
}

func TestInvalidApplicationError(t *testing.T) {
	err := fmt.Errorf("%w: application is nil", NewInvalidApplicationError(""))

	assert.Equal(t, ErrCodeInvalidApplication, Normalize(err).Code)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.False(t, IsRetryable(err))
}
