package merge

import (
	"log/slog"

	"github.com/randalmurphal/panmerge/pkg/panmerge/observability"
)

// runConfig holds configuration for a merge run.
type runConfig struct {
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	journal        RunJournal
	progress       ProgressFunc
	runID          string
}

// defaultRunConfig returns the default run configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// RunOption configures run behavior.
type RunOption func(*runConfig)

// WithLogger sets the structured logger for run and per-genome events.
// Default: no logging.
//
// Example:
//
//	sum, err := orch.Run(ctx, items, out, maps, merge.WithLogger(slog.Default()))
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for genome and run metrics.
// Default: NoopMetrics.
func WithMetrics(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans for the run and each genome.
// Default: disabled.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if !enabled {
			return
		}
		if _, noop := c.spans.(observability.NoopSpanManager); noop {
			c.spans = observability.NewSpanManager()
		}
	}
}

// WithSpanManager sets a custom span manager and enables tracing.
func WithSpanManager(sm observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if sm != nil {
			c.spans = sm
			c.tracingEnabled = true
		}
	}
}

// WithRunID sets the run identifier used in logs, spans and the journal.
// Default: a random UUID per run.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		if id != "" {
			c.runID = id
		}
	}
}

// WithJournal records run and genome outcomes to j.
// Default: no journal.
func WithJournal(j RunJournal) RunOption {
	return func(c *runConfig) {
		c.journal = j
	}
}

// WithProgress invokes fn after each genome outcome, success or failure.
// Default: no callback.
func WithProgress(fn ProgressFunc) RunOption {
	return func(c *runConfig) {
		c.progress = fn
	}
}
