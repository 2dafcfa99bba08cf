// Package worklist parses the genome list that defines a merge batch.
//
// The list is plain text with one genome per line: a sample name, a run
// of whitespace, then the path to the genome's FASTA file. The path is
// the remainder of the line, so it may itself contain spaces. Lines
// that do not split into two fields, including blank lines, are
// skipped.
package worklist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Item is one genome in the batch: a logical sample name and the path
// of its sequence file. Sample is the key used for checkpointing and
// identifier rewriting.
type Item struct {
	Sample string
	Path   string
}

// Load reads a work list from a file.
// Returns the items in input order and the number of skipped lines.
func Load(path string) ([]Item, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open work list: %w", err)
	}
	defer f.Close()

	items, skipped, err := Parse(f)
	if err != nil {
		return nil, 0, fmt.Errorf("read work list %s: %w", path, err)
	}
	return items, skipped, nil
}

// Parse reads a work list from r.
// Returns the items in input order and the number of skipped lines.
func Parse(r io.Reader) ([]Item, int, error) {
	var (
		items   []Item
		skipped int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		// Split at the first whitespace run; the rest is the path.
		cut := strings.IndexFunc(line, unicode.IsSpace)
		if cut < 0 {
			skipped++
			continue
		}
		path := strings.TrimSpace(line[cut:])
		if path == "" {
			skipped++
			continue
		}

		items = append(items, Item{Sample: line[:cut], Path: path})
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}

	return items, skipped, nil
}
