package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"human1-sdk/internal/common/config"
	"human1-sdk/internal/common/logger"
)

func processedTotal(t *testing.T, g prom.Gatherer) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "queries_processed") {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestObservability_RecordsQueryMetrics(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	obs := newWithProvider(provider, "human1-test")
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordQueryProcessed(ctx, "table", "success")
	obs.RecordQueryProcessed(ctx, "table", "success")
	obs.RecordQueryDuration(ctx, 120*time.Millisecond, "table", "success")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	counter, ok := byName["queries.processed"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(2), counter.DataPoints[0].Value)

	hist, ok := byName["queries.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordQueryProcessed(context.Background(), "table", "error")
		obs.RecordQueryDuration(context.Background(), time.Second, "table", "error")
		obs.Shutdown()
	})
}

func TestNew_SharesDefaultExporter(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	log := logger.NewZapAdapter(zap.New(core))

	first := New("human1-test", log)
	second := New("human1-test", log)
	defer first.Shutdown()
	defer second.Shutdown()

	before := processedTotal(t, prom.DefaultGatherer)
	first.RecordQueryProcessed(context.Background(), "table", "success")
	second.RecordQueryProcessed(context.Background(), "table", "success")

	assert.Equal(t, before+2, processedTotal(t, prom.DefaultGatherer))
	assert.Zero(t, logs.Len())
}

func TestNewWithRegisterer(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	log := logger.NewZapAdapter(zap.New(core))
	regA, regB := prom.NewRegistry(), prom.NewRegistry()

	a := NewWithRegisterer("human1-test", regA, log)
	b := NewWithRegisterer("human1-test", regB, log)
	defer a.Shutdown()
	defer b.Shutdown()

	a.RecordQueryProcessed(context.Background(), "json", "success")
	b.RecordQueryProcessed(context.Background(), "json", "success")
	b.RecordQueryProcessed(context.Background(), "json", "error")

	assert.Equal(t, float64(1), processedTotal(t, regA))
	assert.Equal(t, float64(2), processedTotal(t, regB))
	assert.Zero(t, logs.Len())
}

func TestNewTracerProvider(t *testing.T) {
	assert.Nil(t, NewTracerProvider("human1-test", config.TracingConfig{Enabled: false}))

	recorder := tracetest.NewSpanRecorder()
	tp := NewTracerProvider("human1-test", config.TracingConfig{Enabled: true, SampleRatio: 1}, recorder)
	require.NotNil(t, tp)
	defer ShutdownTracer(tp)

	_, span := tp.Tracer("test").Start(context.Background(), "work")
	EndSpan(span, errors.New("boom"))

	_, okSpan := Tracer("test").Start(context.Background(), "fine")
	EndSpan(okSpan, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "work", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, codes.Ok, ended[1].Status().Code)
}
