// internal/translator/translator.go
package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "human1-sdk/internal/common/errors"
	"human1-sdk/internal/common/logger"
	"human1-sdk/internal/common/observability"
	"human1-sdk/internal/models"
	"human1-sdk/internal/oracle"
)

const (
	// MaxSummaryInput caps the rendered rows sent for summarization.
	MaxSummaryInput = 1000

	summaryPrompt = "Summarize the following data in two sentences:\n\n"
)

type Translator struct {
	oracle oracle.Oracle
	tracer trace.Tracer
	logger logger.Logger
}

type Option func(*Translator)

func WithTracer(tracer trace.Tracer) Option {
	return func(t *Translator) {
		if tracer != nil {
			t.tracer = tracer
		}
	}
}

func New(o oracle.Oracle, log logger.Logger, opts ...Option) *Translator {
	t := &Translator{
		oracle: o,
		tracer: observability.Tracer("human1/translator"),
		logger: log.WithFields(map[string]interface{}{"component": "translator"}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate asks the oracle and shapes its answer as a table or a paragraph.
// Answers that are not JSON are returned as a paragraph for either format.
func (t *Translator) Translate(ctx context.Context, query string, format models.ResponseFormat) (result *models.ResponseData, err error) {
	if format == "" {
		format = models.DefaultFormat
	}

	ctx, span := t.tracer.Start(ctx, "translator.Translate", trace.WithAttributes(
		attribute.String("human1.format", string(format)),
	))
	defer func() {
		if result != nil {
			span.SetAttributes(attribute.String("human1.result_type", string(result.Type)))
		}
		observability.EndSpan(span, err)
	}()

	answer, err := t.oracle.Ask(ctx, query)
	if err != nil {
		return nil, classify(err, "ask")
	}

	text := oracle.StripFences(answer)
	root, decodeErr := decodeOrdered(text)
	if decodeErr != nil {
		t.logger.Debug("oracle answer is not JSON, returning as text", map[string]interface{}{
			"error": decodeErr.Error(),
		})
		return models.NewParagraph(text), nil
	}

	rows, err := objectRows(root)
	if err != nil {
		return nil, err
	}

	switch format {
	case models.FormatParagraph:
		return t.summarize(ctx, rows)
	case models.FormatTable:
		return toTable(rows), nil
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported response format %q", format))
	}
}

func (t *Translator) summarize(ctx context.Context, rows []*object) (*models.ResponseData, error) {
	text, err := t.oracle.Summarize(ctx, summaryPrompt+renderRows(rows, MaxSummaryInput))
	if err != nil {
		return nil, classify(err, "summarize")
	}
	return models.NewParagraph(strings.TrimSpace(text)), nil
}

// objectRows extracts the first top-level array and checks that it is a
// non-empty array of objects.
func objectRows(root interface{}) ([]*object, error) {
	arr, ok := firstArray(root)
	if !ok {
		return nil, apperrors.NewUnexpectedFormatError("oracle answer contains no array of rows")
	}
	if len(arr) == 0 {
		return nil, apperrors.NewUnexpectedFormatError("query returned no rows")
	}

	rows := make([]*object, len(arr))
	for i, item := range arr {
		obj, ok := item.(*object)
		if !ok {
			return nil, apperrors.NewUnexpectedFormatError(fmt.Sprintf("row %d is not an object", i))
		}
		rows[i] = obj
	}
	return rows, nil
}

// toTable takes columns from the first row; keys missing from later rows
// become null.
func toTable(rows []*object) *models.ResponseData {
	columns := append([]string{}, rows[0].keys...)
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(columns))
		for j, col := range columns {
			if v, ok := row.get(col); ok {
				cells[j] = v
			}
		}
		out[i] = cells
	}
	return models.NewTable(columns, out)
}

// renderRows writes one "key: value, key: value" line per row, cut to limit
// runes when limit > 0.
func renderRows(rows []*object, limit int) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		parts := make([]string, len(row.keys))
		for j, k := range row.keys {
			parts[j] = k + ": " + cellText(row.values[k])
		}
		lines[i] = strings.Join(parts, ", ")
	}

	text := strings.Join(lines, "\n")
	if limit > 0 && utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit])
	}
	return text
}

func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// classify maps oracle failures onto the error taxonomy and tags them with
// the stage that failed. Errors already in the taxonomy keep their code.
func classify(err error, stage string) error {
	var stdErr *apperrors.StandardError
	switch {
	case errors.As(err, &stdErr):
	case errors.Is(err, oracle.ErrLLMTimeout), errors.Is(err, context.DeadlineExceeded):
		stdErr = apperrors.NewLLMTimeoutError(err)
	case errors.Is(err, oracle.ErrUnsafeSQL):
		stdErr = apperrors.NewUnsafeSQLError(err.Error())
	case errors.Is(err, oracle.ErrQueryExecution):
		stdErr = apperrors.NewQueryExecutionFailedError(err)
	default:
		stdErr = apperrors.NewOracleError(err)
	}
	return stdErr.WithMetadata("stage", stage)
}
