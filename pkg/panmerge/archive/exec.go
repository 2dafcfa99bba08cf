package archive

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Exec compresses by running an external bgzip binary. Use this when
// the archive must come from htslib itself; the in-process BGZF
// finalizer is otherwise equivalent.
type Exec struct {
	// Bgzip is the binary to run. Empty means "bgzip" on PATH.
	Bgzip string
	// Threads is passed to bgzip's -@ flag. Values below one are
	// treated as one.
	Threads int
}

// Compile-time interface check.
var _ Finalizer = Exec{}

// Finalize implements Finalizer. bgzip -f replaces the plain file with
// path+Suffix itself; a non-zero exit is fatal and includes the tail of
// stderr.
func (e Exec) Finalize(ctx context.Context, path string) error {
	bin := e.Bgzip
	if bin == "" {
		bin = "bgzip"
	}

	cmd := exec.CommandContext(ctx, bin, e.args(path)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return &FinalizeError{Path: path, Err: fmt.Errorf("run %s: %w", bin, err)}
	}
	return nil
}

// args builds the bgzip argument list for a target file.
func (e Exec) args(path string) []string {
	workers := e.Threads
	if workers < 1 {
		workers = 1
	}
	return []string{"-f", "-@", strconv.Itoa(workers), path}
}
