package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records merge pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordGenome records one genome's outcome: record count, sequence
	// bytes, processing latency, and error status.
	RecordGenome(ctx context.Context, sample string, records int, bytes int64, duration time.Duration, err error)

	// RecordRun records a whole-batch run completion.
	RecordRun(ctx context.Context, success bool, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	genomeExecutions metric.Int64Counter
	genomeLatency    metric.Float64Histogram
	genomeErrors     metric.Int64Counter
	recordsWritten   metric.Int64Counter
	outputBytes      metric.Int64Counter
	runs             metric.Int64Counter
	runLatency       metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("panmerge")

	genomeExecutions, err := meter.Int64Counter("panmerge.genome.executions",
		metric.WithDescription("Number of genome merge attempts"),
	)
	if err != nil {
		return nil, err
	}

	genomeLatency, err := meter.Float64Histogram("panmerge.genome.latency_ms",
		metric.WithDescription("Genome merge latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	genomeErrors, err := meter.Int64Counter("panmerge.genome.errors",
		metric.WithDescription("Number of failed genome merges"),
	)
	if err != nil {
		return nil, err
	}

	recordsWritten, err := meter.Int64Counter("panmerge.records.written",
		metric.WithDescription("Number of sequence records written to the merged stream"),
	)
	if err != nil {
		return nil, err
	}

	outputBytes, err := meter.Int64Counter("panmerge.output.bytes",
		metric.WithDescription("Sequence bytes written to the merged stream"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter("panmerge.run.runs",
		metric.WithDescription("Number of merge runs"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("panmerge.run.latency_ms",
		metric.WithDescription("Merge run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		genomeExecutions: genomeExecutions,
		genomeLatency:    genomeLatency,
		genomeErrors:     genomeErrors,
		recordsWritten:   recordsWritten,
		outputBytes:      outputBytes,
		runs:             runs,
		runLatency:       runLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordGenome records one genome's outcome.
func (m *otelMetrics) RecordGenome(ctx context.Context, sample string, records int, bytes int64, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("sample", sample),
	}

	m.genomeExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.genomeLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.genomeErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
		return
	}

	m.recordsWritten.Add(ctx, int64(records), metric.WithAttributes(attrs...))
	m.outputBytes.Add(ctx, bytes, metric.WithAttributes(attrs...))
}

// RecordRun records a merge run.
func (m *otelMetrics) RecordRun(ctx context.Context, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
