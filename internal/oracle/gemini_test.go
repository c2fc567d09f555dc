package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"human1-sdk/internal/common/config"
	"human1-sdk/internal/common/logger"
)

func TestGeminiClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"SELECT name FROM planets"}]}}]}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(context.Background(), config.OracleConfig{
		APIKey:  "g-test",
		BaseURL: server.URL,
	}, logger.NewTestLogger(t))
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), "system", "List planets")
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM planets", got)
}

func TestGeminiClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(context.Background(), config.OracleConfig{
		APIKey:  "g-test",
		BaseURL: server.URL,
	}, logger.NewNoOpLogger())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "system", "List planets")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOracle), "got %v", err)
}
