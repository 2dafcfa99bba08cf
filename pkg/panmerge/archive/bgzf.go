package archive

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
)

// BGZF compresses in process using the blocked gzip format produced by
// htslib's bgzip. The output is an ordinary multi-member gzip stream,
// so stdlib gzip readers and faidx/tabix style indexers both accept it.
type BGZF struct {
	// Threads is the number of concurrent block compressors.
	// Values below one are treated as one.
	Threads int
}

// Compile-time interface check.
var _ Finalizer = BGZF{}

// Finalize implements Finalizer. The archive is staged next to the
// target and renamed into place once complete, then the plain file is
// removed. On failure the staged file is cleaned up and the plain file
// is left untouched, so a rerun can finalize again.
func (b BGZF) Finalize(ctx context.Context, path string) error {
	if err := b.finalize(ctx, path); err != nil {
		return &FinalizeError{Path: path, Err: err}
	}
	return nil
}

func (b BGZF) finalize(ctx context.Context, path string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	workers := b.Threads
	if workers < 1 {
		workers = 1
	}

	tmp := path + Suffix + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(tmp)
		}
	}()

	zw := bgzf.NewWriter(out, workers)
	if _, err = io.Copy(zw, in); err != nil {
		zw.Close()
		return fmt.Errorf("compress: %w", err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}
	if err = out.Sync(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	if err = os.Rename(tmp, path+Suffix); err != nil {
		return err
	}
	if err = os.Remove(path); err != nil {
		return fmt.Errorf("remove plain stream: %w", err)
	}
	return nil
}
