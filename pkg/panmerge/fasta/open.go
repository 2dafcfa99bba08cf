package fasta

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// gzipMagic is the two-byte signature of a gzip stream.
var gzipMagic = [2]byte{0x1f, 0x8b}

// gzipReadCloser closes both the gzip stream and the underlying file.
type gzipReadCloser struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if cerr := g.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// openReader opens path for reading, transparently decompressing gzip
// input. Compression is detected by the stream signature or a ".gz"
// suffix, so mislabeled files are handled either way.
func openReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var sig [2]byte
	n, _ := io.ReadFull(f, sig[:])
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	if (n == 2 && sig == gzipMagic) || strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &gzipReadCloser{Reader: zr, file: f}, nil
	}

	return f, nil
}
