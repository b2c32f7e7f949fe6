package bat

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	gzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T, gzipped bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer, err := NewWriter(&buf, []string{"f1", "f2", "f3"}, []string{"s1", "s2"}, "test", gzipped)
	require.NoError(t, err)
	require.NoError(t, writer.WriteColumn("s1", []float64{1, 2.5, 0}))
	require.NoError(t, writer.WriteColumn("s2", []float64{0, 4, 8.25}))
	require.NoError(t, writer.Flush())
	return buf.Bytes()
}

func TestWriteRead(t *testing.T) {
	for _, gzipped := range []bool{false, true} {
		data := buildTable(t, gzipped)

		reader, err := NewReader(bytes.NewReader(data))
		require.NoError(t, err)
		require.Equal(t, Version, reader.Version)
		require.Equal(t, TableType, reader.TableType)
		require.Equal(t, "test", reader.GeneratedBy)
		require.Equal(t, gzipped, reader.Gzipped)
		require.Equal(t, []string{"f1", "f2", "f3"}, reader.Features)
		require.Equal(t, []string{"s1", "s2"}, reader.Samples)
		require.Contains(t, reader.Header.String(), TableType)

		sample, values, err := reader.ReadColumn()
		require.NoError(t, err)
		require.Equal(t, "s1", sample)
		require.Equal(t, []float64{1, 2.5, 0}, values)

		sample, values, err = reader.ReadColumn()
		require.NoError(t, err)
		require.Equal(t, "s2", sample)
		require.Equal(t, []float64{0, 4, 8.25}, values)

		_, _, err = reader.ReadColumn()
		require.Equal(t, io.EOF, err)
	}
}

func TestReadAll(t *testing.T) {
	reader, err := NewReader(bytes.NewReader(buildTable(t, true)))
	require.NoError(t, err)

	columns, err := reader.ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 2.5, 0}, {0, 4, 8.25}}, columns)
}

func TestWriterErrors(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewWriter(&buf, []string{"bad\nid"}, nil, "test", false)
	require.Equal(t, ErrInvalidIdentifier, err)

	writer, err := NewWriter(&buf, []string{"f1"}, []string{"s1", "s2"}, "test", false)
	require.NoError(t, err)

	require.Equal(t, ErrWrongWriteDataSize, writer.WriteColumn("s1", []float64{1, 2}))
	require.Equal(t, ErrColumnOrderMismatch, writer.WriteColumn("s2", []float64{1}))
	require.Equal(t, ErrUnfishedWrite, writer.Flush())

	require.NoError(t, writer.WriteColumn("s1", []float64{1}))
	require.NoError(t, writer.WriteColumn("s2", []float64{2}))
	require.Equal(t, ErrColumnOrderMismatch, writer.WriteColumn("s3", []float64{3}))
	require.NoError(t, writer.Flush())
	require.NoError(t, writer.Flush())
}

func TestReaderErrors(t *testing.T) {
	data := buildTable(t, false)

	bad := append([]byte{}, data...)
	bad[0] = 'x'
	_, err := NewReader(bytes.NewReader(bad))
	require.Equal(t, ErrInvalidFileFormat, err)

	bad = append([]byte{}, data...)
	bad[8] = Version + 1
	_, err = NewReader(bytes.NewReader(bad))
	require.Equal(t, ErrVersionMismatch, err)

	// corrupted identifier block
	bad = append([]byte{}, data...)
	k := bytes.Index(bad, []byte("f1\nf2\nf3\n"))
	require.GreaterOrEqual(t, k, 0)
	bad[k] = 'x'
	_, err = NewReader(bytes.NewReader(bad))
	require.Equal(t, ErrChecksumMismatch, err)

	// truncated cell data
	reader, err := NewReader(bytes.NewReader(data[:len(data)-4]))
	require.NoError(t, err)
	_, _, err = reader.ReadColumn()
	require.NoError(t, err)
	_, _, err = reader.ReadColumn()
	require.Equal(t, ErrTruncateFile, err)

	// a flipped cell byte fails the data checksum after the last column
	bad = append([]byte{}, data...)
	bad[len(bad)-1] ^= 0xff
	reader, err = NewReader(bytes.NewReader(bad))
	require.NoError(t, err)
	_, _, err = reader.ReadColumn()
	require.NoError(t, err)
	_, _, err = reader.ReadColumn()
	require.NoError(t, err)
	_, _, err = reader.ReadColumn()
	require.Equal(t, ErrChecksumMismatch, err)
}

func TestReadTableFile(t *testing.T) {
	dir := t.TempDir()
	data := buildTable(t, true)

	file := filepath.Join(dir, "t.bat")
	require.NoError(t, os.WriteFile(file, data, 0644))

	header, columns, err := ReadTableFile(file)
	require.NoError(t, err)
	require.Equal(t, uint64(3), header.NumFeatures)
	require.Equal(t, uint64(2), header.NumSamples)
	require.Equal(t, [][]float64{{1, 2.5, 0}, {0, 4, 8.25}}, columns)

	// the whole file additionally gzipped
	fgz := filepath.Join(dir, "t.bat.gz")
	fh, err := os.Create(fgz)
	require.NoError(t, err)
	gw := gzip.NewWriter(fh)
	_, err = gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, fh.Close())

	_, columns, err = ReadTableFile(fgz)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 2.5, 0}, {0, 4, 8.25}}, columns)

	header, err = ReadHeaderFile(fgz)
	require.NoError(t, err)
	require.Equal(t, []string{"s1", "s2"}, header.Samples)
	require.Equal(t, "test", header.GeneratedBy)

	header2, err := ReadHeaderFile(file)
	require.NoError(t, err)
	require.True(t, header.Compatible(*header2))
}
