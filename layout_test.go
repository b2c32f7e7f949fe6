package taxtab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayoutMinColumns(t *testing.T) {
	require.Equal(t, 2, ProfileLayout.minColumns())
	require.Equal(t, 6, KrakenLayout.minColumns())
	require.Equal(t, 7, CentrifugeLayout.minColumns())
	require.Equal(t, 2, BrackenLayout.minColumns())
}

func TestTableColumnCounts(t *testing.T) {
	col := &tableColumn{keys: []string{"a", "b", "a"}, values: []float64{1, 2, 3}}
	require.Equal(t, map[string]float64{"a": 3, "b": 2}, col.counts())
}

func TestCheckFilesAndSamples(t *testing.T) {
	require.NoError(t, checkFilesAndSamples([]string{"f"}, []string{"s"}))

	err := checkFilesAndSamples([]string{"f"}, []string{"s1", "s2"})
	require.ErrorIs(t, err, ErrSampleNumberMismatch)
}

func TestStringSplitNByByte(t *testing.T) {
	fields := make([]string, 3)
	stringSplitNByByte("a\tb\tc\td", '\t', 3, &fields)
	require.Equal(t, []string{"a", "b", "c\td"}, fields)

	fields = make([]string, 3)
	stringSplitNByByte("a", '\t', 3, &fields)
	require.Equal(t, []string{"a"}, fields)
}
