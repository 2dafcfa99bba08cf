// Package app assembles the merge pipeline from its parts: work list,
// checkpoint store, error log, orchestrator, optional run journal, and
// archive finalizer. The command-line front end is a thin shell over
// Run.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/randalmurphal/panmerge/pkg/panmerge/archive"
	"github.com/randalmurphal/panmerge/pkg/panmerge/checkpoint"
	"github.com/randalmurphal/panmerge/pkg/panmerge/config"
	"github.com/randalmurphal/panmerge/pkg/panmerge/errlog"
	"github.com/randalmurphal/panmerge/pkg/panmerge/journal"
	"github.com/randalmurphal/panmerge/pkg/panmerge/merge"
	"github.com/randalmurphal/panmerge/pkg/panmerge/naming"
	"github.com/randalmurphal/panmerge/pkg/panmerge/observability"
	"github.com/randalmurphal/panmerge/pkg/panmerge/worklist"
)

// Options configures one pipeline invocation.
type Options struct {
	// Config carries the run parameters. Blank Checkpoint and ErrorLog
	// fields are derived from the output path.
	Config config.Config

	// Reset discards the checkpoint store and the plain merged stream
	// before running, forcing a from-scratch merge.
	Reset bool

	// Logger receives run progress. nil silences the pipeline.
	Logger *slog.Logger

	// RunID overrides the generated run id.
	RunID string
}

// Run executes the whole pipeline: load the work list, merge every
// uncheckpointed genome into the plain stream, then compress the stream
// into the final archive. The returned count is the number of genomes
// that failed; err is non-nil only for fatal conditions (configuration,
// checkpoint store, finalization).
func Run(ctx context.Context, opts Options) (int, error) {
	cfg := opts.Config
	if cfg.Threads <= 0 {
		cfg.Threads = config.DefaultThreads
	}
	if err := validate(cfg); err != nil {
		return 0, err
	}

	plain := strings.TrimSuffix(cfg.Output, archive.Suffix)
	checkpointPath := cfg.Checkpoint
	if checkpointPath == "" {
		checkpointPath = plain + ".checkpoint"
	}

	store := checkpoint.NewFileStore(checkpointPath)
	defer store.Close()

	if opts.Reset {
		observability.LogReset(opts.Logger, checkpointPath, plain)
		if err := store.Reset(); err != nil {
			return 0, fmt.Errorf("reset checkpoint: %w", err)
		}
		if err := os.Remove(plain); err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("reset merged stream: %w", err)
		}
	}

	items, skipped, err := worklist.Load(cfg.GenomeList)
	if err != nil {
		return 0, &ConfigurationError{Field: "genome_list", Reason: "unreadable work list", Err: err}
	}
	observability.LogWorklist(opts.Logger, cfg.GenomeList, len(items), skipped)

	if err := guardFinalized(store, items, plain); err != nil {
		return 0, err
	}

	orch := merge.NewOrchestrator(
		merge.NewProcessor(naming.Scheme{Delimiter: cfg.Delimiter, Haplotype: cfg.Haplotype}, cfg.MapExt),
		store,
		errlog.New(ErrorLogPath(cfg)),
	)

	runOpts := []merge.RunOption{
		merge.WithLogger(opts.Logger),
		merge.WithMetrics(observability.NewMetricsRecorder()),
		merge.WithTracing(true),
	}
	if opts.RunID != "" {
		runOpts = append(runOpts, merge.WithRunID(opts.RunID))
	}
	if cfg.Journal != "" {
		jnl, jerr := journal.Open(cfg.Journal)
		if jerr != nil {
			observability.LogJournalError(opts.Logger, "open", jerr)
		} else {
			defer jnl.Close()
			runOpts = append(runOpts, merge.WithJournal(jnl))
		}
	}

	sum, err := orch.Run(ctx, items, plain, cfg.MapDir, runOpts...)
	if err != nil {
		return sum.Failed, err
	}

	if err := finalize(ctx, cfg, plain, opts.Logger); err != nil {
		return sum.Failed, err
	}
	return sum.Failed, nil
}

// ErrorLogPath returns the effective error log location for cfg: the
// explicit path when set, otherwise derived from the output path.
func ErrorLogPath(cfg config.Config) string {
	if cfg.ErrorLog != "" {
		return cfg.ErrorLog
	}
	return strings.TrimSuffix(cfg.Output, archive.Suffix) + ".errors.jsonl"
}

func validate(cfg config.Config) error {
	if cfg.GenomeList == "" {
		return &ConfigurationError{Field: "genome_list", Reason: "required"}
	}
	if cfg.MapDir == "" {
		return &ConfigurationError{Field: "map_dir", Reason: "required"}
	}
	if !strings.HasSuffix(cfg.Output, archive.Suffix) {
		return &ConfigurationError{Field: "output", Reason: fmt.Sprintf("%q must end in %q", cfg.Output, archive.Suffix)}
	}
	if strings.TrimSuffix(cfg.Output, archive.Suffix) == "" {
		return &ConfigurationError{Field: "output", Reason: "no file name before " + archive.Suffix}
	}
	return nil
}

// guardFinalized refuses to resume into a missing plain stream. Once
// the archive is finalized the plain file is gone; appending the
// remaining genomes to a fresh file and compressing that would publish
// an archive missing every checkpointed genome.
func guardFinalized(store checkpoint.Store, items []worklist.Item, plain string) error {
	done, err := store.Load()
	if err != nil {
		return &merge.CheckpointError{Op: "load", Err: err}
	}
	if len(done) == 0 {
		return nil
	}
	remaining := 0
	for _, it := range items {
		if _, ok := done[it.Sample]; !ok {
			remaining++
		}
	}
	if remaining == 0 {
		return nil
	}
	if _, err := os.Stat(plain); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat merged stream: %w", err)
	}
	return &ConfigurationError{
		Field: "output",
		Reason: fmt.Sprintf("%d genomes are checkpointed but %s is gone (archive already finalized); rerun with --reset to merge from scratch",
			len(done), plain),
	}
}

// finalize compresses the plain stream into the final archive. A run
// where everything was already checkpointed leaves no plain stream and
// nothing to compress.
func finalize(ctx context.Context, cfg config.Config, plain string, logger *slog.Logger) error {
	if _, err := os.Stat(plain); err != nil {
		if os.IsNotExist(err) {
			observability.LogFinalizeSkipped(logger, plain)
			return nil
		}
		return fmt.Errorf("stat merged stream: %w", err)
	}

	var fin archive.Finalizer = archive.BGZF{Threads: cfg.Threads}
	if cfg.Bgzip != "" {
		fin = archive.Exec{Bgzip: cfg.Bgzip, Threads: cfg.Threads}
	}

	observability.LogFinalizeStart(logger, plain)
	elapsed := observability.TimedOperation()
	if err := fin.Finalize(ctx, plain); err != nil {
		return err
	}
	var size int64
	if fi, err := os.Stat(cfg.Output); err == nil {
		size = fi.Size()
	}
	observability.LogFinalizeComplete(logger, cfg.Output, size, elapsed())
	return nil
}
