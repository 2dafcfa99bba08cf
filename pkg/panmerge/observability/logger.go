// Package observability provides structured logging, metrics, and
// tracing for merge runs.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// LogRunStart logs the start of a merge run.
func LogRunStart(logger *slog.Logger, runID string, total, remaining int) {
	if logger == nil {
		return
	}
	logger.Info("merge run starting",
		slog.String("run_id", runID),
		slog.Int("genomes", total),
		slog.Int("remaining", remaining),
	)
}

// LogRunComplete logs the end of a merge run, successful or not.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, processed, skipped, failed int) {
	if logger == nil {
		return
	}
	logger.Info("merge run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("processed", processed),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
	)
}

// LogRunError logs a run that stopped on a fatal error.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("merge run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogGenomeStart logs the start of one genome.
func LogGenomeStart(logger *slog.Logger, sample, source string) {
	if logger == nil {
		return
	}
	logger.Info("genome starting",
		slog.String("sample", sample),
		slog.String("source", source),
	)
}

// LogGenomeComplete logs a successfully merged genome.
func LogGenomeComplete(logger *slog.Logger, sample string, records int, bytes int64, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("genome merged",
		slog.String("sample", sample),
		slog.Int("records", records),
		slog.String("sequence", humanize.IBytes(uint64(bytes))),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogGenomeError logs a failed genome. The run continues.
func LogGenomeError(logger *slog.Logger, sample, source string, err error) {
	if logger == nil {
		return
	}
	logger.Error("genome failed",
		slog.String("sample", sample),
		slog.String("source", source),
		slog.String("error", err.Error()),
	)
}

// LogGenomeSkipped logs a genome excluded by the checkpoint set.
func LogGenomeSkipped(logger *slog.Logger, sample string) {
	if logger == nil {
		return
	}
	logger.Debug("genome already merged, skipping",
		slog.String("sample", sample),
	)
}

// LogCheckpoint logs a completion record reaching stable storage.
func LogCheckpoint(logger *slog.Logger, sample string) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint appended",
		slog.String("sample", sample),
	)
}

// LogErrorLogFailure logs a failure of the error log itself (non-fatal).
func LogErrorLogFailure(logger *slog.Logger, sample string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("error log append failed",
		slog.String("sample", sample),
		slog.String("error", err.Error()),
	)
}

// LogWorklist logs the parsed work list, including malformed lines
// that were skipped.
func LogWorklist(logger *slog.Logger, path string, entries, skipped int) {
	if logger == nil {
		return
	}
	logger.Debug("work list loaded",
		slog.String("path", path),
		slog.Int("entries", entries),
		slog.Int("skipped_lines", skipped),
	)
}

// LogReset logs a checkpoint reset requested by the operator.
func LogReset(logger *slog.Logger, checkpoint, output string) {
	if logger == nil {
		return
	}
	logger.Info("checkpoint reset, merging from scratch",
		slog.String("checkpoint", checkpoint),
		slog.String("output", output),
	)
}

// LogJournalError logs a failed journal write (non-fatal).
func LogJournalError(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("run journal write failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogFinalizeStart logs the start of archive compression.
func LogFinalizeStart(logger *slog.Logger, path string) {
	if logger == nil {
		return
	}
	logger.Info("finalizing archive",
		slog.String("path", path),
	)
}

// LogFinalizeSkipped logs a run that ended with no plain stream to
// compress (everything was already merged and archived).
func LogFinalizeSkipped(logger *slog.Logger, path string) {
	if logger == nil {
		return
	}
	logger.Debug("nothing to finalize",
		slog.String("path", path),
	)
}

// LogFinalizeComplete logs the published archive.
func LogFinalizeComplete(logger *slog.Logger, archive string, sizeBytes int64, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("archive finalized",
		slog.String("archive", archive),
		slog.String("size", humanize.IBytes(uint64(sizeBytes))),
		slog.Float64("duration_ms", durationMs),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
