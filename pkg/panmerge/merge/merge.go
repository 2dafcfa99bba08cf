package merge

import (
	"context"
	"time"

	"github.com/biogo/biogo/seq/linear"

	"github.com/randalmurphal/panmerge/pkg/panmerge/worklist"
)

// RecordWriter consumes rewritten FASTA records.
// *fasta.Writer satisfies it.
type RecordWriter interface {
	Write(sq *linear.Seq) error
}

// FailureLog records per-genome failures for later triage.
// *errlog.Log satisfies it. A nil FailureLog disables failure recording.
type FailureLog interface {
	Append(sample, source string, cause error) error
}

// RunJournal persists run and per-genome outcomes on the side.
// All calls are best-effort from the orchestrator's perspective: a
// journal error is logged and never interrupts the run.
type RunJournal interface {
	BeginRun(runID string, total int) error
	RecordGenome(runID string, res Result, procErr error) error
	FinishRun(runID string, sum Summary) error
}

// GenomeProcessor merges one genome into the shared output.
type GenomeProcessor interface {
	// Process reads every record from item.Path, rewrites its id,
	// writes it to out and publishes the scaffold map under mapDir.
	// It fills MapPath, Records and Bytes of the Result; the
	// orchestrator stamps Sample, Source and Duration.
	Process(ctx context.Context, item worklist.Item, out RecordWriter, mapDir string) (Result, error)
}

// ProgressFunc receives each genome outcome as the run advances.
// Genomes skipped via the checkpoint set are not reported.
type ProgressFunc func(res Result, err error)

// Result describes the outcome of processing one genome.
type Result struct {
	// Sample is the sample name from the work list.
	Sample string
	// Source is the input FASTA path.
	Source string
	// MapPath is the published scaffold map. Empty when processing failed.
	MapPath string
	// Records is the number of records written to the output.
	Records int
	// Bytes is the total sequence payload written, one byte per base.
	Bytes int64
	// Duration is the wall-clock processing time.
	Duration time.Duration
}

// Summary aggregates the outcome of a whole run.
type Summary struct {
	// RunID identifies the run in logs, spans and the journal.
	RunID string
	// Total is the number of work-list entries.
	Total int
	// Skipped counts entries already present in the checkpoint set.
	Skipped int
	// Processed counts genomes merged and checkpointed by this run.
	Processed int
	// Failed counts genomes that errored. They stay uncheckpointed and
	// are retried on the next invocation.
	Failed int
	// Duration is the wall-clock run time.
	Duration time.Duration
}
