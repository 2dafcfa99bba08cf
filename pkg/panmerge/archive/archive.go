// Package archive compresses the merged FASTA stream into its final
// bgzip-compatible form.
//
// Finalization runs exactly once per invocation, after all genomes have
// been processed, and runs regardless of how many of them failed: the
// archive of the successful genomes is still the run's product. The
// default implementation compresses in process with BGZF; an external
// bgzip binary can be substituted when byte-identical htslib output is
// required.
package archive

import (
	"context"
	"fmt"
)

// Suffix is appended to the plain stream path to form the archive path.
const Suffix = ".gz"

// Finalizer compresses the file at path into path+Suffix and removes
// the plain file.
type Finalizer interface {
	Finalize(ctx context.Context, path string) error
}

// FinalizeError wraps a failed compression. Finalization failures are
// fatal to the run.
type FinalizeError struct {
	// Path is the plain stream that could not be compressed.
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FinalizeError) Error() string {
	return fmt.Sprintf("finalize %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FinalizeError) Unwrap() error {
	return e.Err
}
