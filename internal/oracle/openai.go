// internal/oracle/openai.go
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"human1-sdk/internal/common/config"
	"human1-sdk/internal/common/httpclient"
	"human1-sdk/internal/common/logger"
	"human1-sdk/internal/common/metrics"
)

const (
	ProviderOpenAI = "openai"

	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenAIClient talks to the chat completions endpoint of OpenAI or any
// compatible server.
type OpenAIClient struct {
	cfg    config.OracleConfig
	client *httpclient.Client
	logger logger.Logger
}

func NewOpenAIClient(cfg config.OracleConfig, log logger.Logger) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	return &OpenAIClient{
		cfg: cfg,
		// No client timeout: deadlines come from the caller's context.
		client: httpclient.New(0, httpclient.WithMaxRetries(cfg.MaxRetries)),
		logger: log.With(map[string]interface{}{
			"provider": ProviderOpenAI,
			"model":    cfg.Model,
		}),
	}
}

func (c *OpenAIClient) Provider() string { return ProviderOpenAI }

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxCompletionTokens: c.cfg.MaxTokens,
		Temperature:         c.cfg.Temperature,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var resp chatResponse
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	if err := c.client.PostJSON(ctx, url, headers, req, &resp); err != nil {
		if errors.Is(err, httpclient.ErrTimeout) {
			metrics.OracleRequests.WithLabelValues(ProviderOpenAI, "timeout").Inc()
			return "", fmt.Errorf("%w: %v", ErrLLMTimeout, err)
		}
		metrics.OracleRequests.WithLabelValues(ProviderOpenAI, "error").Inc()
		c.logger.Error("chat completion failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("%w: %v", ErrOracle, err)
	}

	if len(resp.Choices) == 0 {
		metrics.OracleRequests.WithLabelValues(ProviderOpenAI, "error").Inc()
		return "", fmt.Errorf("%w: response has no choices", ErrOracle)
	}

	metrics.OracleRequests.WithLabelValues(ProviderOpenAI, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}
