package merge

import (
	"bufio"
	"context"
	"io"
	"path/filepath"

	"github.com/randalmurphal/panmerge/pkg/panmerge/atomicfile"
	"github.com/randalmurphal/panmerge/pkg/panmerge/fasta"
	"github.com/randalmurphal/panmerge/pkg/panmerge/naming"
	"github.com/randalmurphal/panmerge/pkg/panmerge/worklist"
)

// Processor is the production GenomeProcessor. It streams records from
// one FASTA source into the shared output, rewriting ids on the way, and
// publishes the per-genome scaffold map atomically.
type Processor struct {
	scheme naming.Scheme
	mapExt string
}

var _ GenomeProcessor = (*Processor)(nil)

// NewProcessor returns a Processor using the given id scheme and map
// file extension. Empty scheme fields and an empty extension fall back
// to the defaults.
func NewProcessor(scheme naming.Scheme, mapExt string) *Processor {
	if scheme.Delimiter == "" {
		scheme.Delimiter = naming.DefaultDelimiter
	}
	if scheme.Haplotype == "" {
		scheme.Haplotype = naming.DefaultHaplotype
	}
	if mapExt == "" {
		mapExt = naming.DefaultMapExt
	}
	return &Processor{scheme: scheme, mapExt: mapExt}
}

// MapPath returns the scaffold map location for a source path.
func (p *Processor) MapPath(mapDir, source string) string {
	return filepath.Join(mapDir, naming.MapBase(source)+"."+p.mapExt)
}

// Process implements GenomeProcessor.
//
// The scaffold map is staged next to its final path and renamed into
// place only after every record has been written, so a crash or error
// mid-genome never leaves a partial map under the final name. The
// records already written to out before a failure stay there; the
// sample stays uncheckpointed, and the next run rewrites it in full.
func (p *Processor) Process(ctx context.Context, item worklist.Item, out RecordWriter, mapDir string) (Result, error) {
	var res Result

	src, err := fasta.Open(item.Path)
	if err != nil {
		return res, processingError(item, "open", err)
	}
	defer src.Close()

	mapPath := p.MapPath(mapDir, item.Path)
	mf, err := atomicfile.Create(mapPath)
	if err != nil {
		return res, processingError(item, "map", err)
	}
	defer mf.Close()
	mw := bufio.NewWriter(mf)

	for {
		sq, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, processingError(item, "read", err)
		}

		orig := sq.ID
		sq.ID = p.scheme.Rewrite(item.Sample, orig)
		sq.Desc = ""

		if err := out.Write(sq); err != nil {
			return res, processingError(item, "write", err)
		}
		if _, err := mw.WriteString(orig + "\t" + sq.ID + "\n"); err != nil {
			return res, processingError(item, "map", err)
		}
		res.Records++
		res.Bytes += int64(sq.Len())
	}

	if err := mw.Flush(); err != nil {
		return res, processingError(item, "map", err)
	}
	if err := mf.Commit(); err != nil {
		return res, processingError(item, "publish", err)
	}

	res.MapPath = mapPath
	return res, nil
}

func processingError(item worklist.Item, op string, err error) *ProcessingError {
	return &ProcessingError{Sample: item.Sample, Source: item.Path, Op: op, Err: err}
}
