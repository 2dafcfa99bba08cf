package fasta

import (
	"fmt"
	"io"

	bfasta "github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// DefaultWidth is the sequence line width of merged output.
const DefaultWidth = 60

// Writer emits FASTA records with sequence lines wrapped at a fixed
// width. A record with an empty description gets a bare ">ID" header.
type Writer struct {
	fw *bfasta.Writer
}

// NewWriter returns a Writer emitting to w. A non-positive width falls
// back to DefaultWidth.
func NewWriter(w io.Writer, width int) *Writer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Writer{fw: bfasta.NewWriter(w, width)}
}

// Write emits one record.
func (w *Writer) Write(sq *linear.Seq) error {
	if _, err := w.fw.Write(sq); err != nil {
		return fmt.Errorf("write record %s: %w", sq.ID, err)
	}
	return nil
}
