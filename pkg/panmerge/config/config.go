package config

import (
	"github.com/randalmurphal/panmerge/pkg/panmerge/naming"
)

// DefaultThreads is the compression worker count used when none is
// configured.
const DefaultThreads = 4

// Config holds every runtime knob of a merge run. File values override
// defaults; command-line flags override file values.
type Config struct {
	// GenomeList is the work-list path, one "sample path" pair per line.
	GenomeList string `yaml:"genome_list" json:"genome_list"`
	// Output is the final archive path. Must end in ".gz".
	Output string `yaml:"output" json:"output"`
	// MapDir receives one scaffold map per genome.
	MapDir string `yaml:"map_dir" json:"map_dir"`

	// Delimiter joins sample name, haplotype and original id.
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	// Haplotype is the haplotype tag spliced into every rewritten id.
	Haplotype string `yaml:"haplotype" json:"haplotype"`
	// MapExt is the scaffold map file extension, without the dot.
	MapExt string `yaml:"map_ext" json:"map_ext"`
	// Threads bounds the compression workers.
	Threads int `yaml:"threads" json:"threads"`

	// Checkpoint overrides the checkpoint path derived from Output.
	Checkpoint string `yaml:"checkpoint" json:"checkpoint"`
	// ErrorLog overrides the error log path derived from Output.
	ErrorLog string `yaml:"error_log" json:"error_log"`
	// Journal enables the run journal at the given SQLite path.
	Journal string `yaml:"journal" json:"journal"`
	// Bgzip switches finalization to the named external bgzip binary.
	Bgzip string `yaml:"bgzip" json:"bgzip"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Delimiter: naming.DefaultDelimiter,
		Haplotype: naming.DefaultHaplotype,
		MapExt:    naming.DefaultMapExt,
		Threads:   DefaultThreads,
	}
}
