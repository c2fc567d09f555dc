// internal/oracle/sqlagent.go
package oracle

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"human1-sdk/internal/common/database"
	"human1-sdk/internal/common/logger"
	"human1-sdk/internal/common/metrics"
)

const cacheKeyPrefix = "human1:sql:"

type AgentConfig struct {
	MaxRows  int           // 0 means no cap
	CacheTTL time.Duration // 0 keeps cached SQL until evicted
	Timeout  time.Duration // per LLM call, 0 means the caller's deadline only
}

type AgentDeps struct {
	LLM       LLM
	DB        *database.PostgresClient
	Cache     *database.RedisClient // optional
	Prompts   *PromptPack
	Inspector *SchemaInspector // optional; replaces the static schema
}

// SQLAgent generates SQL for a question, runs it read-only and answers with
// the rows as JSON: {"rows":[{"col":value,...},...]}.
type SQLAgent struct {
	config *AgentConfig
	deps   AgentDeps
	logger logger.Logger
}

func NewSQLAgent(config *AgentConfig, deps AgentDeps, log logger.Logger) *SQLAgent {
	if deps.Prompts == nil {
		deps.Prompts = DefaultPromptPack()
	}
	return &SQLAgent{
		config: config,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{
			"component": "sql-agent",
			"provider":  deps.LLM.Provider(),
		}),
	}
}

func (a *SQLAgent) Ask(ctx context.Context, question string) (string, error) {
	statement, err := a.GenerateSQL(ctx, question)
	if err != nil {
		return "", err
	}

	payload, rowCount, err := a.run(ctx, statement)
	if err != nil {
		a.logger.Error("query execution failed", map[string]interface{}{
			"sql":   statement,
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}

	a.logger.Info("query executed", map[string]interface{}{
		"rowCount": rowCount,
	})
	return payload, nil
}

func (a *SQLAgent) Summarize(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	text, err := a.deps.LLM.Complete(ctx, a.deps.Prompts.Summary, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateSQL returns the cleaned, read-only SQL for question, from cache
// when available.
func (a *SQLAgent) GenerateSQL(ctx context.Context, question string) (string, error) {
	key := CacheKey(question)
	if cached, ok := a.cacheGet(ctx, key); ok {
		return cached, nil
	}

	schema, err := a.schema(ctx)
	if err != nil {
		return "", err
	}

	llmCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	answer, err := a.deps.LLM.Complete(llmCtx, a.deps.Prompts.SystemPrompt(schema), question)
	if err != nil {
		return "", err
	}

	statement := CleanSQL(answer)
	if statement == "" {
		return "", fmt.Errorf("%w: LLM did not return a SQL query", ErrOracle)
	}
	if err := CheckReadOnly(statement); err != nil {
		a.logger.Warn("rejected generated sql", map[string]interface{}{"sql": statement})
		return "", err
	}

	a.cacheSet(ctx, key, statement)
	return statement, nil
}

func (a *SQLAgent) schema(ctx context.Context) (string, error) {
	if a.deps.Inspector == nil {
		return a.deps.Prompts.Schema, nil
	}
	description, err := a.deps.Inspector.Describe(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}
	return description, nil
}

func (a *SQLAgent) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.Timeout)
}

func (a *SQLAgent) run(ctx context.Context, statement string) (string, int, error) {
	tx, err := a.deps.DB.ReadOnlyTx(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, statement)
	if err != nil {
		return "", 0, err
	}
	defer rows.Close()

	return encodeRows(rows, a.config.MaxRows)
}

// encodeRows writes rows as JSON objects keeping the column order of the
// result set.
func encodeRows(rows *sql.Rows, maxRows int) (string, int, error) {
	columns, err := rows.Columns()
	if err != nil {
		return "", 0, err
	}

	keys := make([][]byte, len(columns))
	for i, col := range columns {
		keys[i], _ = json.Marshal(col)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"rows":[`)

	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if maxRows > 0 && count >= maxRows {
			break
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return "", 0, err
		}
		if count > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for i := range columns {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[i])
			buf.WriteByte(':')
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			encoded, err := json.Marshal(v)
			if err != nil {
				return "", 0, fmt.Errorf("encode column %s: %w", columns[i], err)
			}
			buf.Write(encoded)
		}
		buf.WriteByte('}')
		count++
	}
	if err := rows.Err(); err != nil {
		return "", 0, err
	}

	buf.WriteString(`]}`)
	return buf.String(), count, nil
}

var readOnlyPrefix = regexp.MustCompile(`(?i)^\(*\s*(select|with)\b`)

var dollarTagPattern = regexp.MustCompile(`^\$[A-Za-z_][A-Za-z0-9_]*\$|^\$\$`)

// CheckReadOnly accepts a single SELECT or WITH statement. A trailing
// semicolon is allowed; semicolons inside literals, quoted identifiers and
// comments are not separators.
func CheckReadOnly(statement string) error {
	s := strings.TrimSpace(statement)
	s = strings.TrimSpace(strings.TrimRight(s, "; \t\r\n"))
	if s == "" {
		return fmt.Errorf("%w: empty statement", ErrUnsafeSQL)
	}
	if hasSeparator(s) {
		return fmt.Errorf("%w: multiple statements", ErrUnsafeSQL)
	}
	if !readOnlyPrefix.MatchString(s) {
		return fmt.Errorf("%w: %s", ErrUnsafeSQL, firstWord(s))
	}
	return nil
}

// hasSeparator reports whether s contains a ';' outside string literals,
// quoted identifiers, dollar-quoted bodies and comments. An unterminated
// quote swallows the rest of the statement; the database rejects it later.
func hasSeparator(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ';':
			return true
		case c == '\'' || c == '"':
			// A doubled quote closes and reopens, which needs no special case.
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return false
			}
			i += end + 1
		case c == '-' && strings.HasPrefix(s[i:], "--"):
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				return false
			}
			i += end
		case c == '/' && strings.HasPrefix(s[i:], "/*"):
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return false
			}
			i += end + 3
		case c == '$':
			tag := dollarTagPattern.FindString(s[i:])
			if tag == "" {
				continue
			}
			end := strings.Index(s[i+len(tag):], tag)
			if end < 0 {
				return false
			}
			i += len(tag) + end + len(tag) - 1
		}
	}
	return false
}

func firstWord(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return strings.ToUpper(fields[0])
	}
	return ""
}

// CacheKey is the Redis key holding generated SQL for question.
func CacheKey(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (a *SQLAgent) cacheGet(ctx context.Context, key string) (string, bool) {
	if a.deps.Cache == nil {
		return "", false
	}
	val, found, err := a.deps.Cache.Get(ctx, key)
	if err != nil {
		metrics.SQLCache.WithLabelValues("error").Inc()
		a.logger.Warn("sql cache read failed", map[string]interface{}{"error": err.Error()})
		return "", false
	}
	if !found {
		metrics.SQLCache.WithLabelValues("miss").Inc()
		return "", false
	}
	metrics.SQLCache.WithLabelValues("hit").Inc()
	return val, true
}

func (a *SQLAgent) cacheSet(ctx context.Context, key, statement string) {
	if a.deps.Cache == nil {
		return
	}
	if err := a.deps.Cache.Set(ctx, key, statement, a.config.CacheTTL); err != nil {
		a.logger.Warn("sql cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
