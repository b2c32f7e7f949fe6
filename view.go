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
	"github.com/dustin/go-humanize"
	"github.com/tatsushid/go-prettytable"
)

// Head renders the first n rows as an aligned text table with per-row
// totals, for eyeballing and logging. n <= 0 renders all rows.
func (t *Table) Head(n int) string {
	if n <= 0 || n > t.NumFeatures() {
		n = t.NumFeatures()
	}

	columns := make([]prettytable.Column, 0, len(t.samples)+2)
	columns = append(columns, prettytable.Column{Header: "feature"})
	for _, sample := range t.samples {
		columns = append(columns, prettytable.Column{Header: sample, AlignRight: true})
	}
	columns = append(columns, prettytable.Column{Header: "total", AlignRight: true})

	tbl, err := prettytable.NewTable(columns...)
	if err != nil {
		return ""
	}
	tbl.Separator = "  "

	for i := 0; i < n; i++ {
		row := make([]interface{}, 0, len(t.samples)+2)
		row = append(row, t.features[i])
		var sum float64
		for _, value := range t.data[i] {
			row = append(row, humanize.Commaf(value))
			sum += value
		}
		row = append(row, humanize.Commaf(sum))
		tbl.AddRow(row...)
	}

	return tbl.String()
}
