// internal/oracle/gemini.go
package oracle

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"human1-sdk/internal/common/config"
	"human1-sdk/internal/common/logger"
	"human1-sdk/internal/common/metrics"
)

const (
	ProviderGemini = "gemini"

	defaultGeminiModel = "gemini-2.0-flash"
)

type GeminiClient struct {
	client *genai.Client
	model  string
	temp   float32
	logger logger.Logger
}

func NewGeminiClient(ctx context.Context, cfg config.OracleConfig, log logger.Logger) (*GeminiClient, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiClient{
		client: client,
		model:  model,
		temp:   float32(cfg.Temperature),
		logger: log.With(map[string]interface{}{
			"provider": ProviderGemini,
			"model":    model,
		}),
	}, nil
}

func (c *GeminiClient) Provider() string { return ProviderGemini }

func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(c.temp),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			metrics.OracleRequests.WithLabelValues(ProviderGemini, "timeout").Inc()
			return "", fmt.Errorf("%w: %v", ErrLLMTimeout, err)
		}
		metrics.OracleRequests.WithLabelValues(ProviderGemini, "error").Inc()
		c.logger.Error("generate content failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("%w: %v", ErrOracle, err)
	}

	text := resp.Text()
	if text == "" {
		metrics.OracleRequests.WithLabelValues(ProviderGemini, "error").Inc()
		return "", fmt.Errorf("%w: empty response", ErrOracle)
	}

	metrics.OracleRequests.WithLabelValues(ProviderGemini, "success").Inc()
	return text, nil
}
