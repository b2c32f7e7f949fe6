package taxtab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var centrifugeHeader = "name\ttaxID\ttaxRank\tgenomeSize\tnumReads\tnumUniqueReads\tabundance\n"

func TestCombineCentrifuge(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFile(t, dir, "r1.tsv", centrifugeHeader+
		"Escherichia coli\t562\tspecies\t5000000\t100\t90\t0.5\n"+
		"Shigella flexneri\t623\tspecies\t4600000\t50\t40\t0.25\n")
	f2 := writeFile(t, dir, "r2.tsv", centrifugeHeader+
		"Escherichia coli\t562\tspecies\t5000000\t30\t28\t1.0\n")

	tbl, err := CombineCentrifuge([]string{f1, f2}, []string{"s1", "s2"}, nil)
	require.NoError(t, err)

	require.Equal(t, []string{"562", "623"}, tbl.Features())
	require.Equal(t, []string{"s1", "s2"}, tbl.Samples())
	require.Equal(t, 100.0, tbl.Value("562", "s1"))
	require.Equal(t, 50.0, tbl.Value("623", "s1"))
	require.Equal(t, 30.0, tbl.Value("562", "s2"))
	require.Equal(t, 0.0, tbl.Value("623", "s2"))
}

func TestCombineCentrifugeErrors(t *testing.T) {
	dir := t.TempDir()
	short := writeFile(t, dir, "short.tsv", centrifugeHeader+
		"Escherichia coli\t562\tspecies\n")

	_, err := CombineCentrifuge([]string{short}, []string{"s1"}, nil)
	require.Error(t, err)
}
