package taxtab

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTSVRoundTrip(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddSample("s1", map[string]float64{"a": 1.5, "b": 2}))
	require.NoError(t, tbl.AddSample("s2", map[string]float64{"b": 0.25, "c": 1e6}))

	dir := t.TempDir()
	for _, name := range []string{"table.tsv", "table.tsv.gz"} {
		file := filepath.Join(dir, name)
		require.NoError(t, tbl.WriteTSV(file))

		loaded, err := ReadTSV(file)
		require.NoError(t, err)
		require.Equal(t, tbl.Features(), loaded.Features())
		require.Equal(t, tbl.Samples(), loaded.Samples())
		for _, feature := range tbl.Features() {
			for _, sample := range tbl.Samples() {
				require.Equal(t, tbl.Value(feature, sample), loaded.Value(feature, sample))
			}
		}
	}
}

func TestTSVRoundTripEmpty(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "zero.tsv")
	require.NoError(t, NewTable().WriteTSV(file))

	loaded, err := ReadTSV(file)
	require.NoError(t, err)
	require.Equal(t, 0, loaded.NumFeatures())
	require.Equal(t, 0, loaded.NumSamples())
}

func TestReadTSVErrors(t *testing.T) {
	dir := t.TempDir()

	empty := writeFile(t, dir, "empty.tsv", "")
	_, err := ReadTSV(empty)
	require.Error(t, err)

	dupSample := writeFile(t, dir, "dups.tsv", "#feature\ts1\ts1\na\t1\t2\n")
	_, err = ReadTSV(dupSample)
	require.ErrorIs(t, err, ErrDuplicatedSample)

	dupFeature := writeFile(t, dir, "dupf.tsv", "#feature\ts1\na\t1\na\t2\n")
	_, err = ReadTSV(dupFeature)
	require.ErrorContains(t, err, "duplicated feature")

	width := writeFile(t, dir, "width.tsv", "#feature\ts1\ts2\na\t1\n")
	_, err = ReadTSV(width)
	require.Error(t, err)

	bad := writeFile(t, dir, "bad.tsv", "#feature\ts1\na\txyz\n")
	_, err = ReadTSV(bad)
	require.Error(t, err)
}
