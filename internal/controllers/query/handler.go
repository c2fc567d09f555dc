// internal/controllers/query/handler.go
package query

import (
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "human1-sdk/internal/common/errors"
	"human1-sdk/internal/common/logger"
	"human1-sdk/internal/common/metrics"
	"human1-sdk/internal/common/observability"
	"human1-sdk/internal/common/validation"
	"human1-sdk/internal/models"
)

const (
	MsgQueryRequired  = "Query is required"
	MsgInvalidRequest = "Invalid request"
	MsgHello          = "Hello from Human1 SDK!"
)

// Translator turns a question into response data.
type Translator interface {
	Translate(ctx context.Context, query string, format models.ResponseFormat) (*models.ResponseData, error)
}

type Deps struct {
	Translator    Translator
	History       *HistoryStore                // a new store when nil
	Observability *observability.Observability // optional
}

type Handler struct {
	config     *Config
	translator Translator
	history    *HistoryStore
	obs        *observability.Observability
	logger     logger.Logger

	mu            sync.RWMutex
	defaultFormat models.ResponseFormat
}

func NewHandler(config *Config, deps Deps, log logger.Logger) *Handler {
	history := deps.History
	if history == nil {
		history = NewHistoryStore()
	}
	format := config.DefaultFormat
	if format == "" {
		format = models.DefaultFormat
	}
	return &Handler{
		config:        config,
		translator:    deps.Translator,
		history:       history,
		obs:           deps.Observability,
		logger:        log.WithFields(map[string]interface{}{"component": "query-executor"}),
		defaultFormat: format,
	}
}

// Execute validates the request, translates the query and records the
// answer in history. Translation failures come back as a 500 envelope whose
// payload matches the requested format.
func (h *Handler) Execute(ctx context.Context, req models.RequestData) models.Envelope {
	validationResult := validation.ValidateQueryRequest(req)
	if !validationResult.Valid {
		if validationResult.HasField(models.FieldQuery) {
			return models.BadRequest(MsgQueryRequired, "")
		}
		return models.BadRequest(MsgInvalidRequest, validationResult.Message())
	}

	format, ok := req.ResponseFormat()
	if !ok {
		format = h.DefaultFormat()
	}
	query := req.Query()

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := h.translator.Translate(ctx, query, format)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.QueriesTotal.WithLabelValues(string(format), status).Inc()
	metrics.QueryDuration.WithLabelValues(string(format)).Observe(duration.Seconds())
	h.obs.RecordQueryProcessed(ctx, string(format), status)
	h.obs.RecordQueryDuration(ctx, duration, string(format), status)

	if err != nil {
		fields := apperrors.LogFields(err)
		fields["query"] = query
		fields["format"] = string(format)
		h.logger.Error("query failed", fields)
		return models.Envelope{
			Status: http.StatusInternalServerError,
			Data:   errorPayload(format, apperrors.UserMessage(err)),
		}
	}

	entry := h.history.Append(query, result)
	metrics.HistoryEntries.Set(float64(h.history.Len()))

	h.logger.Info("query answered", map[string]interface{}{
		"historyId":  entry.ID,
		"format":     string(format),
		"resultType": string(result.Type),
		"durationMs": duration.Milliseconds(),
	})
	return models.OK(result)
}

// errorPayload keeps error responses renderable by the same component that
// renders successes.
func errorPayload(format models.ResponseFormat, message string) interface{} {
	if format == models.FormatParagraph {
		return models.TextBody{Text: "Error: " + message}
	}
	return models.NewTable([]string{"Error"}, [][]interface{}{{message}})
}

func (h *Handler) History(_ context.Context, _ models.RequestData) models.Envelope {
	return models.OK(h.history.List())
}

func (h *Handler) Hello(_ context.Context, _ models.RequestData) models.Envelope {
	return models.OK(map[string]string{"message": MsgHello})
}

func (h *Handler) HistoryStore() *HistoryStore {
	return h.history
}

func (h *Handler) DefaultFormat() models.ResponseFormat {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.defaultFormat
}

func (h *Handler) SetDefaultFormat(format models.ResponseFormat) error {
	if _, ok := models.ParseResponseFormat(string(format)); !ok {
		return apperrors.NewValidationError("unsupported response format " + string(format))
	}
	h.mu.Lock()
	h.defaultFormat = format
	h.mu.Unlock()
	return nil
}
