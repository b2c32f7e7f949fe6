package taxtab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var krakenReport1 = " 90.00\t180\t0\tD\t2\tBacteria\n" +
	" 50.00\t100\t0\tP\t1224\t  Proteobacteria\n" +
	" 40.00\t80\t2\tS\t562\t    Escherichia coli\n"

var krakenReport2 = " 80.00\t160\t0\tD\t2\tBacteria\n" +
	" 30.00\t60\t1\tS\t563\t    Shigella\n"

func TestCombineKraken(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFile(t, dir, "r1.tsv", krakenReport1)
	f2 := writeFile(t, dir, "r2.tsv", krakenReport2)

	tbl, levels, err := CombineKraken([]string{f1, f2}, []string{"s1", "s2"}, DefaultRankSynonyms(), nil)
	require.NoError(t, err)

	require.Equal(t, []string{"2", "562", "563", "1224"}, tbl.Features())
	require.Equal(t, []string{"s1", "s2"}, tbl.Samples())
	require.Equal(t, 180.0, tbl.Value("2", "s1"))
	require.Equal(t, 160.0, tbl.Value("2", "s2"))
	require.Equal(t, 80.0, tbl.Value("562", "s1"))
	require.Equal(t, 0.0, tbl.Value("562", "s2"))
	require.Equal(t, 0.0, tbl.Value("1224", "s2"))

	// D reported as K, taxids unique and sorted
	require.Equal(t, []string{"2"}, levels.TaxIdsAtRank("K"))
	require.Nil(t, levels.TaxIdsAtRank("D"))
	require.Equal(t, []string{"1224"}, levels.TaxIdsAtRank("P"))
	require.Equal(t, []string{"562", "563"}, levels.TaxIdsAtRank("S"))
}

func TestCombineKrakenSynonyms(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFile(t, dir, "r1.tsv", krakenReport1)

	// nil synonyms keep codes as reported
	_, levels, err := CombineKraken([]string{f1}, []string{"s1"}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"2"}, levels.TaxIdsAtRank("D"))
	require.Nil(t, levels.TaxIdsAtRank("K"))

	_, levels, err = CombineKraken([]string{f1}, []string{"s1"}, RankSynonyms{"D": "SK", "S": "S1"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"2"}, levels.TaxIdsAtRank("SK"))
	require.Equal(t, []string{"562"}, levels.TaxIdsAtRank("S1"))
	require.Equal(t, []string{"1224"}, levels.TaxIdsAtRank("P"))
}

func TestCombineKrakenErrors(t *testing.T) {
	dir := t.TempDir()
	short := writeFile(t, dir, "short.tsv", " 90.00\t180\t0\tD\t2\n")

	_, _, err := CombineKraken([]string{short}, []string{"s1"}, nil, nil)
	require.Error(t, err)
}
