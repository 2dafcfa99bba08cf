package merge_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/panmerge/pkg/panmerge/atomicfile"
	"github.com/randalmurphal/panmerge/pkg/panmerge/fasta"
	"github.com/randalmurphal/panmerge/pkg/panmerge/merge"
	"github.com/randalmurphal/panmerge/pkg/panmerge/naming"
	"github.com/randalmurphal/panmerge/pkg/panmerge/worklist"
)

const hg002FASTA = ">chr1 contig one\nACGTACGTAC\n>chr2\nGGGGCC\n"

// record is a parsed FASTA record for assertions.
type record struct {
	id   string
	desc string
	seq  string
}

// readRecords parses a FASTA file back into records.
func readRecords(t *testing.T, path string) []record {
	t.Helper()

	src, err := fasta.Open(path)
	require.NoError(t, err)
	defer src.Close()

	var recs []record
	for {
		sq, err := src.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		recs = append(recs, record{
			id:   sq.ID,
			desc: sq.Desc,
			seq:  string(alphabet.LettersToBytes(sq.Seq)),
		})
	}
	return recs
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func mustWriteGzip(t *testing.T, path, content string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// bufferWriter adapts a fasta.Writer over a bytes.Buffer to RecordWriter.
func bufferWriter() (*bytes.Buffer, merge.RecordWriter) {
	var buf bytes.Buffer
	return &buf, fasta.NewWriter(&buf, fasta.DefaultWidth)
}

// failingWriter errors after allowing a fixed number of writes.
type failingWriter struct {
	allow int
	err   error
}

func (w *failingWriter) Write(_ *linear.Seq) error {
	if w.allow > 0 {
		w.allow--
		return nil
	}
	return w.err
}

func TestProcessor_Process(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "hg002.fasta")
	mustWriteFile(t, source, hg002FASTA)
	mapDir := filepath.Join(dir, "maps")
	require.NoError(t, os.MkdirAll(mapDir, 0o755))

	buf, out := bufferWriter()
	p := merge.NewProcessor(naming.DefaultScheme(), "")

	res, err := p.Process(context.Background(), worklist.Item{Sample: "HG002", Path: source}, out, mapDir)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Records)
	assert.Equal(t, int64(16), res.Bytes)
	assert.Equal(t, filepath.Join(mapDir, "hg002.txt"), res.MapPath)

	// Rewritten ids, descriptions dropped.
	outPath := filepath.Join(dir, "merged.fasta")
	mustWriteFile(t, outPath, buf.String())
	recs := readRecords(t, outPath)
	require.Len(t, recs, 2)
	assert.Equal(t, "HG002#1#chr1", recs[0].id)
	assert.Empty(t, recs[0].desc)
	assert.Equal(t, "ACGTACGTAC", recs[0].seq)
	assert.Equal(t, "HG002#1#chr2", recs[1].id)
	assert.Equal(t, "GGGGCC", recs[1].seq)

	// Scaffold map published under its final name, staging file gone.
	data, err := os.ReadFile(res.MapPath)
	require.NoError(t, err)
	assert.Equal(t, "chr1\tHG002#1#chr1\nchr2\tHG002#1#chr2\n", string(data))
	assert.NoFileExists(t, res.MapPath+atomicfile.TempSuffix)
}

func TestProcessor_Process_GzipInput(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "hg005.fasta.gz")
	mustWriteGzip(t, source, ">chrX\nTTTT\n")

	buf, out := bufferWriter()
	p := merge.NewProcessor(naming.Scheme{Delimiter: "#", Haplotype: "2"}, "map")

	res, err := p.Process(context.Background(), worklist.Item{Sample: "HG005", Path: source}, out, dir)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Records)
	assert.Equal(t, int64(4), res.Bytes)
	assert.Equal(t, filepath.Join(dir, "hg005.map"), res.MapPath)
	assert.Contains(t, buf.String(), "HG005#2#chrX")

	data, err := os.ReadFile(res.MapPath)
	require.NoError(t, err)
	assert.Equal(t, "chrX\tHG005#2#chrX\n", string(data))
}

func TestProcessor_Process_OpenError(t *testing.T) {
	dir := t.TempDir()
	_, out := bufferWriter()
	p := merge.NewProcessor(naming.DefaultScheme(), "")

	item := worklist.Item{Sample: "HG002", Path: filepath.Join(dir, "missing.fasta")}
	res, err := p.Process(context.Background(), item, out, dir)

	var perr *merge.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "HG002", perr.Sample)
	assert.Equal(t, item.Path, perr.Source)
	assert.Equal(t, "open", perr.Op)
	assert.True(t, os.IsNotExist(perr.Err) || errors.Is(perr.Err, os.ErrNotExist))
	assert.Zero(t, res.Records)

	// No map file of any kind for a genome that never opened.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessor_Process_MalformedInput(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "broken.fasta")
	mustWriteFile(t, source, "not fasta at all\n>chr1\nACGT\n")
	mapDir := filepath.Join(dir, "maps")
	require.NoError(t, os.MkdirAll(mapDir, 0o755))

	_, out := bufferWriter()
	p := merge.NewProcessor(naming.DefaultScheme(), "")

	_, err := p.Process(context.Background(), worklist.Item{Sample: "BAD", Path: source}, out, mapDir)

	var perr *merge.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "read", perr.Op)

	// The staging file is left behind; the final map name never appears.
	mapPath := filepath.Join(mapDir, "broken.txt")
	assert.NoFileExists(t, mapPath)
	assert.FileExists(t, mapPath+atomicfile.TempSuffix)
}

func TestProcessor_Process_WriteError(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "hg002.fasta")
	mustWriteFile(t, source, hg002FASTA)

	out := &failingWriter{allow: 1, err: errors.New("stream full")}
	p := merge.NewProcessor(naming.DefaultScheme(), "")

	res, err := p.Process(context.Background(), worklist.Item{Sample: "HG002", Path: source}, out, dir)

	var perr *merge.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "write", perr.Op)
	assert.EqualError(t, perr.Err, "stream full")
	assert.Equal(t, 1, res.Records, "first record was accepted before the failure")

	mapPath := filepath.Join(dir, "hg002.txt")
	assert.NoFileExists(t, mapPath)
	assert.FileExists(t, mapPath+atomicfile.TempSuffix)
}

func TestProcessor_Process_EmptyInput(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "empty.fasta")
	mustWriteFile(t, source, "")

	buf, out := bufferWriter()
	p := merge.NewProcessor(naming.DefaultScheme(), "")

	res, err := p.Process(context.Background(), worklist.Item{Sample: "EMPTY", Path: source}, out, dir)
	require.NoError(t, err)

	assert.Zero(t, res.Records)
	assert.Zero(t, res.Bytes)
	assert.Empty(t, buf.String())

	// An empty genome still publishes its (empty) scaffold map.
	data, err := os.ReadFile(filepath.Join(dir, "empty.txt"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestProcessor_MapPath(t *testing.T) {
	tests := []struct {
		name   string
		ext    string
		source string
		want   string
	}{
		{name: "plain fasta", ext: "", source: "/data/hg002.fasta", want: "maps/hg002.txt"},
		{name: "gzipped", ext: "", source: "/data/chm13.fasta.gz", want: "maps/chm13.txt"},
		{name: "fa suffix", ext: "", source: "hg005.fa", want: "maps/hg005.txt"},
		{name: "custom extension", ext: "tsv", source: "hg002.fasta", want: "maps/hg002.tsv"},
		{name: "no fasta suffix", ext: "", source: "/data/assembly", want: "maps/assembly.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := merge.NewProcessor(naming.DefaultScheme(), tt.ext)
			assert.Equal(t, filepath.FromSlash(tt.want), p.MapPath("maps", tt.source))
		})
	}
}

func TestNewProcessor_Defaults(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "s.fasta")
	mustWriteFile(t, source, ">c1\nAC\n")

	buf, out := bufferWriter()
	p := merge.NewProcessor(naming.Scheme{}, "")

	res, err := p.Process(context.Background(), worklist.Item{Sample: "S", Path: source}, out, dir)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "S#1#c1")
	assert.Equal(t, filepath.Join(dir, "s.txt"), res.MapPath)
}
