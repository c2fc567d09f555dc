package observability

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"human1-sdk/internal/common/logger"
)

// Observability owns the OpenTelemetry meter provider. All methods are safe
// on a nil receiver so callers can run without it.
type Observability struct {
	meterProvider *metric.MeterProvider
	owned         bool
	meter         otelmetric.Meter
	queryCounter  otelmetric.Int64Counter
	queryDuration otelmetric.Float64Histogram
}

// The default Prometheus registry accepts one exporter per process, so every
// New shares a single provider bound to it.
var (
	defaultOnce     sync.Once
	defaultProvider *metric.MeterProvider
	defaultErr      error
)

// New returns query metrics exported through the default Prometheus registry.
// It can be called any number of times. When the exporter cannot be created
// the failure is logged and the returned value records nothing.
func New(serviceName string, log logger.Logger) *Observability {
	defaultOnce.Do(func() {
		exporter, err := prometheus.New()
		if err != nil {
			defaultErr = err
			return
		}
		defaultProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(defaultProvider)
	})
	if defaultErr != nil {
		log.Error("Failed to create Prometheus exporter", map[string]interface{}{
			"error": defaultErr.Error(),
		})
		return &Observability{}
	}
	return newWithProvider(defaultProvider, serviceName)
}

// NewWithRegisterer exports query metrics through reg with a provider owned by
// the returned value.
func NewWithRegisterer(serviceName string, reg prom.Registerer, log logger.Logger) *Observability {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Error("Failed to create Prometheus exporter", map[string]interface{}{
			"error": err.Error(),
		})
		return &Observability{}
	}
	o := newWithProvider(metric.NewMeterProvider(metric.WithReader(exporter)), serviceName)
	o.owned = true
	return o
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	queryCounter, _ := meter.Int64Counter(
		"queries.processed",
		otelmetric.WithDescription("Number of natural-language queries processed"),
	)

	queryDuration, _ := meter.Float64Histogram(
		"queries.duration",
		otelmetric.WithDescription("Query processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		queryCounter:  queryCounter,
		queryDuration: queryDuration,
	}
}

func (o *Observability) RecordQueryProcessed(ctx context.Context, format, status string) {
	if o == nil || o.queryCounter == nil {
		return
	}
	o.queryCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordQueryDuration(ctx context.Context, duration time.Duration, format, status string) {
	if o == nil || o.queryDuration == nil {
		return
	}
	o.queryDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status),
	))
}

// Shutdown flushes and stops a provider this value owns. The shared default
// provider stays up for other callers.
func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil || !o.owned {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
