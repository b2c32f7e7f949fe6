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

package taxtab

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
)

// ColumnLayout describes where the feature key, the cell value, and the
// optional rank code live in one line of a classification output, so that
// no parsing code carries bare column numbers.
type ColumnLayout struct {
	Name string // format name, used in error messages

	Sep     byte
	Comment byte // lines starting with this byte are skipped, 0 disables

	HasHeader bool
	MinFields int

	KeyIndex    int
	ValueIndex  int    // ignored when ValueColumn is set
	ValueColumn string // locate the value column by its header name
	RankIndex   int    // -1 for formats without a rank code column
}

// Layouts of the supported formats.
var (
	// ProfileLayout is a headerless feature<tab>value table, with
	// #-comment lines.
	ProfileLayout = ColumnLayout{
		Name:      "profile",
		Sep:       '\t',
		Comment:   '#',
		MinFields: 2,
		KeyIndex:  0, ValueIndex: 1, RankIndex: -1,
	}

	// KrakenLayout is the six-column report of Kraken and compatible
	// profilers: percentage, clade count, direct count, rank code,
	// taxid, and name.
	KrakenLayout = ColumnLayout{
		Name:      "kraken",
		Sep:       '\t',
		MinFields: 6,
		KeyIndex:  4, ValueIndex: 1, RankIndex: 3,
	}

	// CentrifugeLayout is the seven-column Centrifuge report: name,
	// taxid, rank name, genome size, read count, unique read count,
	// and abundance, below one header line.
	CentrifugeLayout = ColumnLayout{
		Name:      "centrifuge",
		Sep:       '\t',
		HasHeader: true,
		MinFields: 7,
		KeyIndex:  1, ValueIndex: 4, RankIndex: -1,
	}

	// BrackenLayout is the Bracken abundance re-estimation table, with
	// the taxid in the second column and the estimated read counts in
	// the column named new_est_reads, wherever it is.
	BrackenLayout = ColumnLayout{
		Name:      "bracken",
		Sep:       '\t',
		HasHeader: true,
		MinFields: 2,
		KeyIndex:  1, ValueColumn: "new_est_reads", RankIndex: -1,
	}
)

// minColumns returns the number of leading columns a line must provide.
func (layout *ColumnLayout) minColumns() int {
	n := layout.MinFields
	for _, i := range [3]int{layout.KeyIndex, layout.ValueIndex, layout.RankIndex} {
		if i+1 > n {
			n = i + 1
		}
	}
	return n
}

// tableColumn holds the used columns of one parsed file, in file order.
type tableColumn struct {
	keys   []string
	values []float64
	ranks  []string // nil for layouts without a rank code column
}

// counts returns the keyed values. With duplicated keys the last wins.
func (col *tableColumn) counts() map[string]float64 {
	counts := make(map[string]float64, len(col.keys))
	for i, key := range col.keys {
		counts[key] = col.values[i]
	}
	return counts
}

// readTableFile parses one classification output file according to the
// layout. Splitting runs on opt.Threads workers, the records coming back
// in file order.
func readTableFile(file string, layout *ColumnLayout, opt *Options) (*tableColumn, error) {
	minColumns := layout.minColumns()
	numFields := minColumns + 1 // one more field catching the remainder
	sep := string(layout.Sep)
	fullSplit := layout.ValueColumn != ""

	fn := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" || (layout.Comment != 0 && line[0] == layout.Comment) {
			return nil, false, nil
		}

		var fields []string
		if fullSplit {
			fields = strings.Split(line, sep)
		} else {
			fields = make([]string, numFields)
			stringSplitNByByte(line, layout.Sep, numFields, &fields)
		}
		if len(fields) < minColumns {
			return nil, false, fmt.Errorf("taxtab: invalid %s line with %d columns: %s",
				layout.Name, len(fields), line)
		}
		return fields, true, nil
	}

	file, err := expandPath(file)
	if err != nil {
		return nil, err
	}
	reader, err := breader.NewBufferedReader(file, opt.Threads, opt.ChunkSize, fn)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}

	col := &tableColumn{
		keys:   make([]string, 0, mapInitSize),
		values: make([]float64, 0, mapInitSize),
	}
	if layout.RankIndex >= 0 {
		col.ranks = make([]string, 0, mapInitSize)
	}

	valueIndex := layout.ValueIndex
	needHeader := layout.HasHeader

	var fields []string
	var key string
	var value float64
	var data interface{}
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, errors.Wrap(chunk.Err, file)
		}
		for _, data = range chunk.Data {
			fields = data.([]string)

			if needHeader {
				needHeader = false
				if fullSplit {
					valueIndex = -1
					for i, name := range fields {
						if name == layout.ValueColumn {
							valueIndex = i
							break
						}
					}
					if valueIndex < 0 {
						return nil, fmt.Errorf("taxtab: no column %s in %s file: %s",
							layout.ValueColumn, layout.Name, file)
					}
				}
				continue
			}

			if valueIndex >= len(fields) {
				return nil, fmt.Errorf("taxtab: invalid %s line with %d columns in file: %s",
					layout.Name, len(fields), file)
			}

			key = fields[layout.KeyIndex]
			if key == "" {
				return nil, fmt.Errorf("taxtab: blank feature identifier in %s file: %s",
					layout.Name, file)
			}

			value, err = strconv.ParseFloat(strings.TrimSpace(fields[valueIndex]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s value %q in file: %s",
					layout.Name, fields[valueIndex], file)
			}

			col.keys = append(col.keys, key)
			col.values = append(col.values, value)
			if layout.RankIndex >= 0 {
				col.ranks = append(col.ranks, fields[layout.RankIndex])
			}
		}
	}

	return col, nil
}

func checkFilesAndSamples(files []string, samples []string) error {
	if len(files) != len(samples) {
		return errors.Wrapf(ErrSampleNumberMismatch,
			"%d files but %d samples", len(files), len(samples))
	}
	return nil
}
