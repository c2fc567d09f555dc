// internal/oracle/oracle.go
package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"human1-sdk/internal/common/config"
	"human1-sdk/internal/common/database"
	"human1-sdk/internal/common/logger"
)

var (
	ErrOracle         = errors.New("ORACLE_ERROR")
	ErrLLMTimeout     = errors.New("LLM_TIMEOUT")
	ErrUnsafeSQL      = errors.New("UNSAFE_SQL")
	ErrQueryExecution = errors.New("QUERY_EXECUTION_FAILED")
)

// Oracle answers natural-language questions. Ask returns the final answer
// text, which for SQLAgent is a JSON document of result rows.
type Oracle interface {
	Ask(ctx context.Context, question string) (string, error)
	Summarize(ctx context.Context, prompt string) (string, error)
}

// LLM is a single-turn chat completion backend.
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Provider() string
}

// NewLLM builds the backend named by cfg.Provider.
func NewLLM(ctx context.Context, cfg config.OracleConfig, log logger.Logger) (LLM, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAIClient(cfg, log), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}

// New builds the production oracle from configuration.
func New(ctx context.Context, cfg config.OracleConfig, db *database.PostgresClient, cache *database.RedisClient, log logger.Logger) (*SQLAgent, error) {
	llm, err := NewLLM(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	pack, err := LoadPromptPack(cfg.PromptFile)
	if err != nil {
		return nil, err
	}

	var inspector *SchemaInspector
	if cfg.SchemaSource == "live" {
		inspector = NewSchemaInspector(db.GetDB())
	}

	return NewSQLAgent(&AgentConfig{
		MaxRows:  cfg.MaxRows,
		CacheTTL: time.Duration(cfg.CacheTTL) * time.Second,
		Timeout:  config.GetDuration(cfg.Timeout),
	}, AgentDeps{
		LLM:       llm,
		DB:        db,
		Cache:     cache,
		Prompts:   pack,
		Inspector: inspector,
	}, log), nil
}
