// Package cli implements the panmerge command line interface, a thin
// shell over the app package.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/panmerge/pkg/panmerge/app"
	"github.com/randalmurphal/panmerge/pkg/panmerge/config"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// rootCommand holds the flag state of one invocation.
type rootCommand struct {
	configPath string
	delimiter  string
	haplotype  string
	mapExt     string
	threads    int
	checkpoint string
	errorLog   string
	journal    string
	bgzip      string
	reset      bool
	logJSON    bool
	verbose    bool
	quiet      bool
}

// NewRootCommand builds the panmerge command.
func NewRootCommand() *cobra.Command {
	rc := &rootCommand{}

	cmd := &cobra.Command{
		Use:   "panmerge <genome-list> <output.fasta.gz> <map-dir>",
		Short: "Merge per-genome FASTA files into one bgzipped pangenome archive",
		Long: `panmerge concatenates per-genome FASTA files into a single archive,
rewriting every sequence id to sample#haplotype#original and writing a
per-genome scaffold map. Completed genomes are checkpointed, so an
interrupted batch resumes where it stopped.`,
		Args:          cobra.ExactArgs(3),
		RunE:          rc.run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defs := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&rc.configPath, "config", "", "Config file (YAML or JSON); flags override file values")
	flags.StringVar(&rc.delimiter, "delimiter", defs.Delimiter, "Separator between sample, haplotype and original id")
	flags.StringVar(&rc.haplotype, "haplotype", defs.Haplotype, "Haplotype id embedded in every rewritten header")
	flags.StringVar(&rc.mapExt, "map-ext", defs.MapExt, "Scaffold map file extension")
	flags.IntVar(&rc.threads, "threads", defs.Threads, "Compression worker threads")
	flags.StringVar(&rc.checkpoint, "checkpoint", "", "Checkpoint file (default: derived from the output path)")
	flags.StringVar(&rc.errorLog, "error-log", "", "Error log file (default: derived from the output path)")
	flags.StringVar(&rc.journal, "journal", "", "Record run outcomes to this SQLite database")
	flags.StringVar(&rc.bgzip, "bgzip", "", "Compress with this external bgzip binary instead of in-process BGZF")
	flags.BoolVar(&rc.reset, "reset", false, "Discard the checkpoint and merged stream, start from scratch")
	flags.BoolVar(&rc.logJSON, "log-json", false, "Log as JSON lines")
	flags.BoolVarP(&rc.verbose, "verbose", "v", false, "Log debug detail")
	flags.BoolVarP(&rc.quiet, "quiet", "q", false, "Log errors only")

	cmd.AddCommand(versionCmd())

	return cmd
}

// Execute runs the CLI with ctx controlling cancellation.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (rc *rootCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := rc.buildConfig(cmd, args)
	if err != nil {
		return err
	}

	failed, err := app.Run(cmd.Context(), app.Options{
		Config: cfg,
		Reset:  rc.reset,
		Logger: rc.newLogger(cmd.ErrOrStderr()),
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("failed genomes: %d (see %s)", failed, app.ErrorLogPath(cfg))
	}
	return nil
}

// buildConfig layers defaults, then the config file, then explicit
// flags, then the positional arguments.
func (rc *rootCommand) buildConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if rc.configPath != "" {
		loaded, err := config.FromFile(rc.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("delimiter") {
		cfg.Delimiter = rc.delimiter
	}
	if flags.Changed("haplotype") {
		cfg.Haplotype = rc.haplotype
	}
	if flags.Changed("map-ext") {
		cfg.MapExt = rc.mapExt
	}
	if flags.Changed("threads") {
		cfg.Threads = rc.threads
	}
	if flags.Changed("checkpoint") {
		cfg.Checkpoint = rc.checkpoint
	}
	if flags.Changed("error-log") {
		cfg.ErrorLog = rc.errorLog
	}
	if flags.Changed("journal") {
		cfg.Journal = rc.journal
	}
	if flags.Changed("bgzip") {
		cfg.Bgzip = rc.bgzip
	}

	cfg.GenomeList = args[0]
	cfg.Output = args[1]
	cfg.MapDir = args[2]
	return cfg, nil
}

// newLogger builds the run logger from the verbosity flags. Quiet wins
// over verbose when both are set.
func (rc *rootCommand) newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if rc.verbose {
		level = slog.LevelDebug
	}
	if rc.quiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if rc.logJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "panmerge %s\n", Version)
		},
	}
}
