// Copyright © 2021-2022 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package taxtab combines taxonomic abundance outputs of metagenomic
// classifiers (Kraken-style reports, Centrifuge reports, Bracken tables,
// and generic two-column profiles) of multiple samples into one table,
// extracts sub-tables of a single taxonomic rank, translates taxon names
// to identifiers, and saves tables as TSV or as a compact binary format.
package taxtab

import (
	"github.com/pkg/errors"
	"github.com/shenwei356/natsort"
	"github.com/twotwotwo/sorts"
)

// ErrDuplicatedSample means a sample identifier occurs more than once.
var ErrDuplicatedSample = errors.New("taxtab: duplicated sample")

// ErrDuplicatedTaxa means two features collapse to the same taxon name.
var ErrDuplicatedTaxa = errors.New("taxtab: duplicated taxa detected")

// ErrSampleNumberMismatch means the numbers of files and sample names differ.
var ErrSampleNumberMismatch = errors.New("taxtab: numbers of files and samples do not match")

// Table is a dense abundance table with rows for features and columns for
// samples. Cells of features absent from a sample are 0.
//
// Combining operations keep rows in natural sort order of the feature
// identifiers, and columns in the order samples were added.
// Sample identifiers are unique within a table.
type Table struct {
	features []string
	samples  []string

	rowIdx map[string]int
	colIdx map[string]int

	data [][]float64 // data[row][column]
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		features: []string{},
		samples:  []string{},
		rowIdx:   make(map[string]int, mapInitSize),
		colIdx:   make(map[string]int, 8),
	}
}

func newTableWithSamples(samples []string) *Table {
	t := NewTable()
	t.samples = make([]string, len(samples))
	copy(t.samples, samples)
	for j, sample := range samples {
		t.colIdx[sample] = j
	}
	return t
}

// NumFeatures returns the number of rows.
func (t *Table) NumFeatures() int {
	return len(t.features)
}

// NumSamples returns the number of columns.
func (t *Table) NumSamples() int {
	return len(t.samples)
}

// Features returns all feature identifiers in row order.
func (t *Table) Features() []string {
	features := make([]string, len(t.features))
	copy(features, t.features)
	return features
}

// Samples returns all sample identifiers in column order.
func (t *Table) Samples() []string {
	samples := make([]string, len(t.samples))
	copy(samples, t.samples)
	return samples
}

// HasFeature tells whether a feature is present.
func (t *Table) HasFeature(feature string) bool {
	_, ok := t.rowIdx[feature]
	return ok
}

// HasSample tells whether a sample is present.
func (t *Table) HasSample(sample string) bool {
	_, ok := t.colIdx[sample]
	return ok
}

// Value returns one cell, or 0 for an unknown feature or sample.
func (t *Table) Value(feature string, sample string) float64 {
	i, ok := t.rowIdx[feature]
	if !ok {
		return 0
	}
	j, ok := t.colIdx[sample]
	if !ok {
		return 0
	}
	return t.data[i][j]
}

// FeatureSum returns the sum of one row.
func (t *Table) FeatureSum(feature string) float64 {
	i, ok := t.rowIdx[feature]
	if !ok {
		return 0
	}
	var sum float64
	for _, v := range t.data[i] {
		sum += v
	}
	return sum
}

// SampleSum returns the sum of one column.
func (t *Table) SampleSum(sample string) float64 {
	j, ok := t.colIdx[sample]
	if !ok {
		return 0
	}
	var sum float64
	for _, row := range t.data {
		sum += row[j]
	}
	return sum
}

// AddSample joins the counts of one sample into the table: the rows become
// the union of known and new features, with cells of missing observations
// filled with 0. Re-adding a known sample identifier returns
// ErrDuplicatedSample.
func (t *Table) AddSample(sample string, counts map[string]float64) error {
	if sample == "" {
		return errors.New("taxtab: blank sample identifier")
	}
	if _, ok := t.colIdx[sample]; ok {
		return errors.Wrap(ErrDuplicatedSample, sample)
	}

	t.colIdx[sample] = len(t.samples)
	t.samples = append(t.samples, sample)
	for i := range t.data {
		t.data[i] = append(t.data[i], 0)
	}

	j := len(t.samples) - 1
	var newRows bool
	for feature, value := range counts {
		i, ok := t.rowIdx[feature]
		if !ok {
			i = len(t.features)
			t.rowIdx[feature] = i
			t.features = append(t.features, feature)
			t.data = append(t.data, make([]float64, len(t.samples)))
			newRows = true
		}
		t.data[i][j] = value
	}

	if newRows {
		t.sortRows()
	}
	return nil
}

// Concat outer-joins the columns of multiple tables into a new table.
// A sample identifier occurring twice returns ErrDuplicatedSample.
func Concat(tables ...*Table) (*Table, error) {
	merged := NewTable()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, sample := range t.samples {
			if err := merged.AddSample(sample, t.column(sample)); err != nil {
				return nil, err
			}
		}
	}
	return merged, nil
}

// column returns one column as a feature-keyed map.
func (t *Table) column(sample string) map[string]float64 {
	j, ok := t.colIdx[sample]
	if !ok {
		return nil
	}
	counts := make(map[string]float64, len(t.features))
	for i, feature := range t.features {
		counts[feature] = t.data[i][j]
	}
	return counts
}

// GroupSum maps feature identifiers through groups and sums rows sharing a
// target identifier. Features missing from groups are dropped.
func (t *Table) GroupSum(groups map[string]string) *Table {
	out := newTableWithSamples(t.samples)
	for i, feature := range t.features {
		target, ok := groups[feature]
		if !ok {
			continue
		}
		ri, ok := out.rowIdx[target]
		if !ok {
			ri = len(out.features)
			out.rowIdx[target] = ri
			out.features = append(out.features, target)
			out.data = append(out.data, make([]float64, len(out.samples)))
		}
		row := out.data[ri]
		for j, v := range t.data[i] {
			row[j] += v
		}
	}
	out.sortRows()
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := newTableWithSamples(t.samples)
	out.features = make([]string, len(t.features))
	copy(out.features, t.features)
	for i, feature := range out.features {
		out.rowIdx[feature] = i
	}
	out.data = make([][]float64, len(t.data))
	for i, row := range t.data {
		out.data[i] = make([]float64, len(row))
		copy(out.data[i], row)
	}
	return out
}

// Normalize returns a copy with every column divided by its sum, i.e.
// relative abundances. All-zero columns are kept as they are.
func (t *Table) Normalize() *Table {
	out := t.Clone()
	for j, sample := range out.samples {
		sum := out.SampleSum(sample)
		if sum == 0 {
			continue
		}
		for i := range out.data {
			out.data[i][j] /= sum
		}
	}
	return out
}

// sortRows restores the natural sort order of rows.
func (t *Table) sortRows() {
	features := make([]string, len(t.features))
	copy(features, t.features)
	natsort.Sort(features)

	data := make([][]float64, len(features))
	for i, feature := range features {
		data[i] = t.data[t.rowIdx[feature]]
	}
	t.features = features
	t.data = data
	for i, feature := range features {
		t.rowIdx[feature] = i
	}
}

// rowsByTotal sorts rows by descending row total, ties by identifier.
type rowsByTotal struct {
	t      *Table
	totals []float64
}

func (r rowsByTotal) Len() int { return len(r.t.features) }

func (r rowsByTotal) Less(i, j int) bool {
	if r.totals[i] == r.totals[j] {
		return r.t.features[i] < r.t.features[j]
	}
	return r.totals[i] > r.totals[j]
}

func (r rowsByTotal) Swap(i, j int) {
	r.t.features[i], r.t.features[j] = r.t.features[j], r.t.features[i]
	r.t.data[i], r.t.data[j] = r.t.data[j], r.t.data[i]
	r.totals[i], r.totals[j] = r.totals[j], r.totals[i]
}

// SortRowsByTotal reorders rows by descending row total, for presenting
// the most abundant taxa first. Later combining operations restore the
// natural order.
func (t *Table) SortRowsByTotal() {
	totals := make([]float64, len(t.data))
	for i, row := range t.data {
		var sum float64
		for _, v := range row {
			sum += v
		}
		totals[i] = sum
	}
	sorts.Quicksort(rowsByTotal{t, totals})
	for i, feature := range t.features {
		t.rowIdx[feature] = i
	}
}
