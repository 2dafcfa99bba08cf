// Package naming composes rewritten sequence identifiers and derives
// scaffold-map file names from genome source paths.
package naming

import (
	"path/filepath"
	"strings"
)

// Defaults for identifier composition and map file naming.
const (
	DefaultDelimiter = "#"
	DefaultHaplotype = "1"
	DefaultMapExt    = "txt"
)

// fastaSuffixes are the sequence-file extensions stripped when deriving
// a scaffold-map base name. Checked after any ".gz" suffix is removed.
var fastaSuffixes = []string{".fasta", ".fa", ".fna"}

// Scheme composes the rewritten identifier for every record of a genome.
// The rewritten form is sample, haplotype, and original identifier joined
// by Delimiter, which keeps identifiers from different genomes distinct
// as long as sample names are distinct.
type Scheme struct {
	// Delimiter separates the identifier components.
	Delimiter string
	// Haplotype is embedded between the sample name and the original
	// identifier. It is configured per run, never derived from input.
	Haplotype string
}

// DefaultScheme returns a Scheme with the conventional "#" delimiter
// and haplotype "1".
func DefaultScheme() Scheme {
	return Scheme{Delimiter: DefaultDelimiter, Haplotype: DefaultHaplotype}
}

// Rewrite returns the composite identifier for a record.
func (s Scheme) Rewrite(sample, id string) string {
	return sample + s.Delimiter + s.Haplotype + s.Delimiter + id
}

// MapBase derives the scaffold-map base name from a genome source path:
// the file name with one trailing ".gz" removed, then one trailing
// FASTA suffix removed. "hg38.fasta.gz" and "hg38.fasta" both map to
// "hg38".
func MapBase(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	for _, ext := range fastaSuffixes {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
