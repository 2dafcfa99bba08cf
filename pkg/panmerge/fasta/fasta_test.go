package fasta

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFasta = ">chr1 assembled contig\nACGTACGTAC\nGTACGT\n>chr2\nTTTTGGGG\n"

// writeFile writes data to a file under dir and returns its path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// gzipBytes compresses data in memory.
func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// drain collects all records from a source.
func drain(t *testing.T, src *Source) []*linear.Seq {
	t.Helper()
	var records []*linear.Seq
	for {
		sq, err := src.Next()
		if err == io.EOF {
			return records
		}
		require.NoError(t, err)
		records = append(records, sq)
	}
}

// TestSource_Plain verifies record iteration over uncompressed input,
// including multi-line sequences and header description splitting.
func TestSource_Plain(t *testing.T) {
	path := writeFile(t, t.TempDir(), "genome.fasta", []byte(sampleFasta))

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	records := drain(t, src)
	require.Len(t, records, 2)

	assert.Equal(t, "chr1", records[0].ID)
	assert.Equal(t, "assembled contig", records[0].Desc)
	assert.Equal(t, "ACGTACGTACGTACGT", string(alphabet.LettersToBytes(records[0].Seq)))

	assert.Equal(t, "chr2", records[1].ID)
	assert.Empty(t, records[1].Desc)
	assert.Equal(t, "TTTTGGGG", string(alphabet.LettersToBytes(records[1].Seq)))
}

// TestSource_GzipSuffix verifies transparent decompression of .gz input.
func TestSource_GzipSuffix(t *testing.T) {
	path := writeFile(t, t.TempDir(), "genome.fasta.gz", gzipBytes(t, []byte(sampleFasta)))

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	records := drain(t, src)
	require.Len(t, records, 2)
	assert.Equal(t, "chr1", records[0].ID)
}

// TestSource_GzipByMagic verifies compression is detected from the
// stream signature when the file name gives no hint.
func TestSource_GzipByMagic(t *testing.T) {
	path := writeFile(t, t.TempDir(), "genome.fasta", gzipBytes(t, []byte(sampleFasta)))

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	records := drain(t, src)
	require.Len(t, records, 2)
}

// TestSource_Malformed verifies sequence data before any header
// surfaces as a parse error.
func TestSource_Malformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.fasta", []byte("ACGT without header\n"))

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "broken.fasta")
}

// TestSource_Empty verifies an empty file yields io.EOF immediately.
func TestSource_Empty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.fasta", nil)

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

// TestOpen_Missing verifies the error names the path.
func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.fasta"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.fasta")
}

// TestWriter_Wrap verifies header layout and line wrapping by writing
// and re-reading a record.
func TestWriter_Wrap(t *testing.T) {
	seq := strings.Repeat("ACGTA", 5) // 25 letters
	sq := linear.NewSeq("HG002#1#chr1", alphabet.BytesToLetters([]byte(seq)), alphabet.DNA)

	var buf bytes.Buffer
	w := NewWriter(&buf, 10)
	require.NoError(t, w.Write(sq))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, ">HG002#1#chr1", lines[0])
	for _, line := range lines[1:] {
		assert.LessOrEqual(t, len(line), 10)
	}
	assert.Equal(t, seq, strings.Join(lines[1:], ""))

	// Round-trip through the reader.
	path := writeFile(t, t.TempDir(), "out.fasta", buf.Bytes())
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	records := drain(t, src)
	require.Len(t, records, 1)
	assert.Equal(t, "HG002#1#chr1", records[0].ID)
	assert.Equal(t, seq, string(alphabet.LettersToBytes(records[0].Seq)))
}

// TestWriter_DescriptionHeader verifies a non-empty description is
// emitted after the identifier.
func TestWriter_DescriptionHeader(t *testing.T) {
	sq := linear.NewSeq("chr1", alphabet.BytesToLetters([]byte("ACGT")), alphabet.DNA)
	sq.Desc = "assembled contig"

	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultWidth)
	require.NoError(t, w.Write(sq))

	lines := strings.Split(buf.String(), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, ">chr1 assembled contig", lines[0])
}
