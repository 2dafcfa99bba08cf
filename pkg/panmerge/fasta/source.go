// Package fasta reads and writes FASTA sequence data for the merge
// pipeline. Parsing and formatting are delegated to biogo; this package
// adds transparent gzip input and a pull-based record contract.
package fasta

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	bfasta "github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Source yields the records of one genome file in input order.
type Source struct {
	path string
	rc   io.ReadCloser
	sc   *seqio.Scanner
}

// Open opens a FASTA file, plain or gzip-compressed.
func Open(path string) (*Source, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	r := bfasta.NewReader(rc, linear.NewSeq("", nil, alphabet.DNA))
	return &Source{path: path, rc: rc, sc: seqio.NewScanner(r)}, nil
}

// Next returns the next record, io.EOF after the last one, or a parse
// error for malformed input. The identifier is the first whitespace
// separated token of the header line; the remainder is the
// description. Each call returns a fresh sequence, so callers may
// mutate or retain it.
func (s *Source) Next() (*linear.Seq, error) {
	if s.sc.Next() {
		sq, ok := s.sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("read %s: unexpected sequence type %T", s.path, s.sc.Seq())
		}
		return sq, nil
	}

	if err := s.sc.Error(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return nil, io.EOF
}

// Close releases the underlying file.
func (s *Source) Close() error {
	return s.rc.Close()
}
