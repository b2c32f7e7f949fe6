package taxtab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	file := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestAddSample(t *testing.T) {
	tbl := NewTable()

	require.NoError(t, tbl.AddSample("s1", map[string]float64{"tax1": 1, "tax2": 2}))
	require.NoError(t, tbl.AddSample("s2", map[string]float64{"tax2": 3, "tax10": 4}))

	require.Equal(t, 3, tbl.NumFeatures())
	require.Equal(t, 2, tbl.NumSamples())
	require.Equal(t, []string{"tax1", "tax2", "tax10"}, tbl.Features())
	require.Equal(t, []string{"s1", "s2"}, tbl.Samples())

	require.Equal(t, 1.0, tbl.Value("tax1", "s1"))
	require.Equal(t, 0.0, tbl.Value("tax1", "s2"))
	require.Equal(t, 3.0, tbl.Value("tax2", "s2"))
	require.Equal(t, 0.0, tbl.Value("tax10", "s1"))
	require.Equal(t, 0.0, tbl.Value("absent", "s1"))
	require.True(t, tbl.HasFeature("tax10"))
	require.False(t, tbl.HasSample("s3"))

	require.Equal(t, 5.0, tbl.FeatureSum("tax2"))
	require.Equal(t, 3.0, tbl.SampleSum("s1"))
	require.Equal(t, 7.0, tbl.SampleSum("s2"))
}

func TestAddSampleDuplicated(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddSample("s1", map[string]float64{"a": 1}))

	err := tbl.AddSample("s1", map[string]float64{"b": 2})
	require.ErrorIs(t, err, ErrDuplicatedSample)

	require.Error(t, tbl.AddSample("", map[string]float64{"c": 3}))
}

func TestConcat(t *testing.T) {
	t1 := NewTable()
	require.NoError(t, t1.AddSample("s1", map[string]float64{"a": 1, "b": 2}))
	t2 := NewTable()
	require.NoError(t, t2.AddSample("s2", map[string]float64{"b": 3, "c": 4}))

	merged, err := Concat(t1, nil, t2)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, merged.Features())
	require.Equal(t, []string{"s1", "s2"}, merged.Samples())
	require.Equal(t, 0.0, merged.Value("c", "s1"))
	require.Equal(t, 0.0, merged.Value("a", "s2"))
	require.Equal(t, 3.0, merged.Value("b", "s2"))

	_, err = Concat(t1, t1)
	require.ErrorIs(t, err, ErrDuplicatedSample)
}

func TestGroupSum(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddSample("s1", map[string]float64{"a": 1, "b": 2, "c": 4}))
	require.NoError(t, tbl.AddSample("s2", map[string]float64{"a": 8}))

	out := tbl.GroupSum(map[string]string{"a": "x", "b": "x"})
	require.Equal(t, []string{"x"}, out.Features())
	require.Equal(t, []string{"s1", "s2"}, out.Samples())
	require.Equal(t, 3.0, out.Value("x", "s1"))
	require.Equal(t, 8.0, out.Value("x", "s2"))
}

func TestCloneAndNormalize(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddSample("s1", map[string]float64{"a": 1, "b": 3}))
	require.NoError(t, tbl.AddSample("s2", map[string]float64{"a": 0}))

	clone := tbl.Clone()
	require.NoError(t, clone.AddSample("s3", map[string]float64{"c": 5}))
	require.Equal(t, 2, tbl.NumSamples())
	require.False(t, tbl.HasFeature("c"))

	norm := tbl.Normalize()
	require.Equal(t, 0.25, norm.Value("a", "s1"))
	require.Equal(t, 0.75, norm.Value("b", "s1"))
	require.Equal(t, 0.0, norm.Value("a", "s2")) // all-zero column kept
	require.Equal(t, 1.0, tbl.Value("a", "s1"))  // receiver untouched
}

func TestSortRowsByTotal(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddSample("s1", map[string]float64{"a": 1, "b": 9, "c": 5}))

	tbl.SortRowsByTotal()
	require.Equal(t, []string{"b", "c", "a"}, tbl.Features())
	require.Equal(t, 9.0, tbl.Value("b", "s1"))

	// combining again restores the natural order
	require.NoError(t, tbl.AddSample("s2", map[string]float64{"d": 1}))
	require.Equal(t, []string{"a", "b", "c", "d"}, tbl.Features())
}
