package merge

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/panmerge/pkg/panmerge/checkpoint"
	"github.com/randalmurphal/panmerge/pkg/panmerge/fasta"
	"github.com/randalmurphal/panmerge/pkg/panmerge/observability"
	"github.com/randalmurphal/panmerge/pkg/panmerge/worklist"
)

// outputBufferSize is the write buffer in front of the merged stream.
const outputBufferSize = 1 << 20

// Orchestrator runs a work list through a GenomeProcessor, one genome
// at a time, skipping samples already recorded in the checkpoint store.
type Orchestrator struct {
	processor GenomeProcessor
	store     checkpoint.Store
	failures  FailureLog
}

// NewOrchestrator wires a processor to a checkpoint store and a failure
// log. failures may be nil.
func NewOrchestrator(processor GenomeProcessor, store checkpoint.Store, failures FailureLog) *Orchestrator {
	return &Orchestrator{
		processor: processor,
		store:     store,
		failures:  failures,
	}
}

// Run merges every item not yet checkpointed into output, publishing
// scaffold maps under mapDir. Returns the run summary and any fatal
// error.
//
// Per-genome failures are not fatal: they are logged, appended to the
// failure log, counted in Summary.Failed, and the loop continues. The
// failed sample stays out of the checkpoint store and is retried on the
// next invocation. Fatal errors (checkpoint store I/O, output stream
// I/O, cancellation) stop the run where it stands; everything already
// checkpointed stays durable.
//
// When every item is already checkpointed, Run returns without creating
// or touching the output file.
//
// Example:
//
//	orch := merge.NewOrchestrator(processor, store, failureLog)
//	sum, err := orch.Run(ctx, items, "all.fasta", "maps",
//	    merge.WithLogger(logger))
//	if err != nil {
//	    // fatal: resume by running again
//	}
//	if sum.Failed > 0 {
//	    // recoverable failures: see the failure log
//	}
func (o *Orchestrator) Run(ctx context.Context, items []worklist.Item, output, mapDir string, opts ...RunOption) (sum Summary, runErr error) {
	if ctx == nil {
		return sum, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}
	sum.RunID = cfg.runID
	sum.Total = len(items)

	done, err := o.store.Load()
	if err != nil {
		return sum, &CheckpointError{Op: "load", Err: err}
	}
	remaining := 0
	for _, it := range items {
		if _, ok := done[it.Sample]; !ok {
			remaining++
		}
	}

	start := time.Now()
	observability.LogRunStart(cfg.logger, cfg.runID, len(items), remaining)

	if cfg.journal != nil {
		if err := cfg.journal.BeginRun(cfg.runID, len(items)); err != nil {
			observability.LogJournalError(cfg.logger, "begin_run", err)
		}
	}

	// Nothing to do: report and leave the output untouched, so a rerun
	// after finalization does not resurrect an empty plain stream.
	if remaining == 0 {
		sum.Skipped = len(items)
		return o.finishRun(ctx, &cfg, sum, start, nil)
	}

	execCtx := ctx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		execCtx, runSpan = cfg.spans.StartRunSpan(ctx, cfg.runID, len(items))
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	runErr = o.mergeItems(execCtx, items, output, mapDir, done, &cfg, &sum)
	return o.finishRun(ctx, &cfg, sum, start, runErr)
}

// mergeItems owns the output stream and the per-genome loop.
func (o *Orchestrator) mergeItems(ctx context.Context, items []worklist.Item, output, mapDir string, done map[string]struct{}, cfg *runConfig, sum *Summary) error {
	if err := os.MkdirAll(mapDir, 0o755); err != nil {
		return fmt.Errorf("create map dir %s: %w", mapDir, err)
	}

	out, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output %s: %w", output, err)
	}
	defer out.Close()

	bw := bufio.NewWriterSize(out, outputBufferSize)
	fw := fasta.NewWriter(bw, fasta.DefaultWidth)

	for _, it := range items {
		if _, ok := done[it.Sample]; ok {
			sum.Skipped++
			observability.LogGenomeSkipped(cfg.logger, it.Sample)
			continue
		}

		// Cancellation is observed between genomes only.
		select {
		case <-ctx.Done():
			return &CancellationError{Sample: it.Sample, Cause: ctx.Err()}
		default:
		}

		observability.LogGenomeStart(cfg.logger, it.Sample, it.Path)

		genomeCtx := ctx
		var genomeSpan trace.Span
		if cfg.tracingEnabled {
			genomeCtx, genomeSpan = cfg.spans.StartGenomeSpan(ctx, it.Sample)
		}

		genomeStart := time.Now()
		res, procErr := o.processor.Process(genomeCtx, it, fw, mapDir)
		res.Sample, res.Source = it.Sample, it.Path
		res.Duration = time.Since(genomeStart)

		cfg.metrics.RecordGenome(genomeCtx, it.Sample, res.Records, res.Bytes, res.Duration, procErr)
		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(genomeSpan, procErr)
		}

		if procErr != nil {
			sum.Failed++
			observability.LogGenomeError(cfg.logger, it.Sample, it.Path, procErr)
			if o.failures != nil {
				if logErr := o.failures.Append(it.Sample, it.Path, procErr); logErr != nil {
					observability.LogErrorLogFailure(cfg.logger, it.Sample, logErr)
				}
			}
			o.journalGenome(cfg, res, procErr)
			if cfg.progress != nil {
				cfg.progress(res, procErr)
			}
			continue
		}

		// Completion order matters: records must be durable in the
		// stream before the checkpoint says they are.
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("flush output %s: %w", output, err)
		}
		if err := out.Sync(); err != nil {
			return fmt.Errorf("sync output %s: %w", output, err)
		}
		if err := o.store.Append(it.Sample); err != nil {
			return &CheckpointError{Sample: it.Sample, Op: "append", Err: err}
		}
		done[it.Sample] = struct{}{}
		sum.Processed++

		observability.LogGenomeComplete(cfg.logger, it.Sample, res.Records, res.Bytes, float64(res.Duration.Milliseconds()))
		observability.LogCheckpoint(cfg.logger, it.Sample)
		o.journalGenome(cfg, res, nil)
		if cfg.progress != nil {
			cfg.progress(res, nil)
		}
	}

	// No flush at loop exit: bytes still buffered here can only belong
	// to a genome that failed mid-stream, and they stay out of the file.
	return nil
}

// finishRun records run-level metrics, logs and journal entries.
func (o *Orchestrator) finishRun(ctx context.Context, cfg *runConfig, sum Summary, start time.Time, runErr error) (Summary, error) {
	sum.Duration = time.Since(start)
	durationMs := float64(sum.Duration.Milliseconds())

	cfg.metrics.RecordRun(ctx, runErr == nil && sum.Failed == 0, sum.Duration)

	if runErr != nil {
		observability.LogRunError(cfg.logger, cfg.runID, runErr, durationMs)
		return sum, runErr
	}

	observability.LogRunComplete(cfg.logger, cfg.runID, durationMs, sum.Processed, sum.Skipped, sum.Failed)
	if cfg.journal != nil {
		if err := cfg.journal.FinishRun(cfg.runID, sum); err != nil {
			observability.LogJournalError(cfg.logger, "finish_run", err)
		}
	}
	return sum, nil
}

func (o *Orchestrator) journalGenome(cfg *runConfig, res Result, procErr error) {
	if cfg.journal == nil {
		return
	}
	if err := cfg.journal.RecordGenome(cfg.runID, res, procErr); err != nil {
		observability.LogJournalError(cfg.logger, "record_genome", err)
	}
}
